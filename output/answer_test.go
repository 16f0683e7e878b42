package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/askdata/agent"
	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/schema"
)

func session(t *testing.T) *agent.Session {
	t.Helper()
	rows := make([]dataset.Row, 0, 15)
	for i := 0; i < 15; i++ {
		state := "TX"
		if i%3 == 0 {
			state = "LA"
		}
		rows = append(rows, dataset.Row{"state_abb": state, "scheduled_quantity": float64(10 * (i + 1))})
	}
	table := dataset.NewTable([]string{"state_abb", "scheduled_quantity"}, rows)
	s, err := schema.Infer(table, schema.DefaultInferOptions())
	require.NoError(t, err)
	sess, err := agent.NewSession(table, s)
	require.NoError(t, err)
	return sess
}

func TestAnswerFormatter_Result(t *testing.T) {
	ans := session(t).Ask("sum scheduled_quantity by state_abb where scheduled_quantity > 20")
	require.NoError(t, ans.Err)

	var buf bytes.Buffer
	require.NoError(t, NewAnswerFormatter(&buf).Write(ans))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Answer: returned 2 rows x 3 columns.\n"), out)
	assert.Contains(t, out, "Evidence:\n")
	assert.Contains(t, out, "  - Plan: "+ans.Plan.String()+"\n")
	assert.Contains(t, out, "  - Method: "+ans.Result.Method+"\n")
	assert.Contains(t, out, "  - Rows: 13 of 15 matched the filters\n")
	assert.Contains(t, out, "  - Preview:\n")
	assert.Contains(t, out, "sum(scheduled_quantity)")
	assert.NotContains(t, out, "\x1b[", "colors are off by default")
}

func TestAnswerFormatter_PreviewTruncates(t *testing.T) {
	ans := session(t).Ask("show first 15 rows")
	require.NoError(t, ans.Err)

	var buf bytes.Buffer
	require.NoError(t, NewAnswerFormatter(&buf, WithPreviewRows(4)).Write(ans))
	assert.Contains(t, buf.String(), "... 11 more rows\n")
}

func TestAnswerFormatter_Error(t *testing.T) {
	ans := session(t).Ask("sum nonexistent_col by state_abb")
	require.Error(t, ans.Err)

	var buf bytes.Buffer
	require.NoError(t, NewAnswerFormatter(&buf).Write(ans))
	assert.True(t, strings.HasPrefix(buf.String(), "Error: "), buf.String())

	buf.Reset()
	require.NoError(t, NewAnswerFormatter(&buf).Write(&agent.Answer{Err: errors.New("boom")}))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestWriteAnswerJSON(t *testing.T) {
	sess := session(t)

	var buf bytes.Buffer
	require.NoError(t, WriteAnswerJSON(&buf, sess.Ask("sum scheduled_quantity by state_abb")))
	require.NoError(t, WriteAnswerJSON(&buf, sess.Ask("hello there")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ok struct {
		Plan   string `json:"plan"`
		Result struct {
			Columns []string        `json:"columns"`
			Rows    [][]interface{} `json:"rows"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	assert.NotEmpty(t, ok.Plan)
	assert.Equal(t, []string{"state_abb", "sum(scheduled_quantity)", "n"}, ok.Result.Columns)
	assert.Len(t, ok.Result.Rows, 2)

	var bad struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &bad))
	assert.Equal(t, "NoMatch", bad.Error.Kind)
}

func TestNew(t *testing.T) {
	for _, name := range Formats {
		f, err := New(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := New("xml", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTableFormatter(t *testing.T) {
	table := dataset.NewTable([]string{"state_abb", "total"}, []dataset.Row{
		{"state_abb": "TX", "total": 775.0},
		{"state_abb": "LA", "total": dataset.Undefined},
	})

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(table))
	out := buf.String()
	for _, want := range []string{"state_abb", "total", "TX", "775", "undefined"} {
		assert.Contains(t, out, want)
	}
}
