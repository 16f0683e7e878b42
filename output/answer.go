package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/vegasq/askdata/agent"
	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// AnswerFormatter writes answers as a text block: a one-line summary, then
// the evidence (plan, method, row counts, warnings) and a preview of the
// result table.
type AnswerFormatter struct {
	writer  io.Writer
	preview int

	heading *color.Color
	warning *color.Color
	failure *color.Color
}

// AnswerOption configures an AnswerFormatter.
type AnswerOption func(*AnswerFormatter)

// WithPreviewRows sets how many result rows are shown.
func WithPreviewRows(n int) AnswerOption {
	return func(f *AnswerFormatter) {
		f.preview = n
	}
}

// WithColor turns ANSI colors on or off.
func WithColor(enabled bool) AnswerOption {
	return func(f *AnswerFormatter) {
		for _, c := range []*color.Color{f.heading, f.warning, f.failure} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewAnswerFormatter creates an answer formatter. Colors are off unless
// WithColor enables them.
func NewAnswerFormatter(w io.Writer, opts ...AnswerOption) *AnswerFormatter {
	f := &AnswerFormatter{
		writer:  w,
		preview: DefaultPreviewRows,
		heading: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
	}
	WithColor(false)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetOutput sets the output writer
func (f *AnswerFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Write renders one answer.
func (f *AnswerFormatter) Write(ans *agent.Answer) error {
	if ans.Err != nil {
		return f.writeError(ans.Err)
	}

	res := ans.Result
	var b strings.Builder
	fmt.Fprintf(&b, "%s returned %s rows x %d columns.\n",
		f.heading.Sprint("Answer:"), humanize.Comma(int64(res.Table.Len())), res.Table.Width())
	b.WriteString("Evidence:\n")
	fmt.Fprintf(&b, "  - Plan: %s\n", ans.Plan)
	fmt.Fprintf(&b, "  - Method: %s\n", res.Method)
	if len(ans.Plan.Filters()) > 0 {
		fmt.Fprintf(&b, "  - Rows: %s of %s matched the filters\n",
			humanize.Comma(int64(res.RowCountAfter)), humanize.Comma(int64(res.RowCountBefore)))
	}
	if res.Degraded {
		fmt.Fprintf(&b, "  - %s\n", f.warning.Sprint("Degraded: the requested method was unavailable"))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "  - %s %s\n", f.warning.Sprint("Warning:"), w)
	}
	b.WriteString("  - Preview:\n")
	if _, err := io.WriteString(f.writer, b.String()); err != nil {
		return err
	}

	tf := NewTableFormatter(f.writer)
	tf.SetMaxRows(f.preview)
	return tf.Format(res.Table)
}

func (f *AnswerFormatter) writeError(err error) error {
	var qerr *query.Error
	if !errors.As(err, &qerr) {
		_, werr := fmt.Fprintf(f.writer, "%s %v\n", f.failure.Sprint("Error:"), err)
		return werr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", f.failure.Sprint("Error:"), qerr.Kind, qerr.Detail)
	if qerr.Expected != "" {
		fmt.Fprintf(&b, "  Expected: %s\n", qerr.Expected)
	}
	if len(qerr.Alternatives) > 0 {
		fmt.Fprintf(&b, "  Did you mean: %s\n", strings.Join(qerr.Alternatives, ", "))
	}
	_, werr := io.WriteString(f.writer, b.String())
	return werr
}

type answerJSON struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Plan       string         `json:"plan,omitempty"`
	Method     string         `json:"method,omitempty"`
	RowsBefore int            `json:"rows_before"`
	RowsAfter  int            `json:"rows_after"`
	Degraded   bool           `json:"degraded"`
	Warnings   []string       `json:"warnings,omitempty"`
	Result     *dataset.Table `json:"result,omitempty"`
	Error      *errorJSON     `json:"error,omitempty"`
	ElapsedMS  float64        `json:"elapsed_ms"`
}

type errorJSON struct {
	Kind         string   `json:"kind"`
	Message      string   `json:"message"`
	Token        string   `json:"token,omitempty"`
	Column       string   `json:"column,omitempty"`
	Expected     string   `json:"expected,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// WriteAnswerJSON writes the answer as a single JSON line. The result
// table keeps its column order.
func WriteAnswerJSON(w io.Writer, ans *agent.Answer) error {
	out := answerJSON{
		ID:        ans.ID,
		Question:  ans.Question,
		ElapsedMS: float64(ans.Elapsed.Microseconds()) / 1000,
	}
	if ans.Plan != nil {
		out.Plan = ans.Plan.String()
	}
	if res := ans.Result; res != nil {
		out.Method = res.Method
		out.RowsBefore = res.RowCountBefore
		out.RowsAfter = res.RowCountAfter
		out.Degraded = res.Degraded
		out.Warnings = res.Warnings
		out.Result = res.Table
	}
	if ans.Err != nil {
		out.Error = &errorJSON{Kind: "error", Message: ans.Err.Error()}
		var qerr *query.Error
		if errors.As(ans.Err, &qerr) {
			out.Error.Kind = qerr.Kind.String()
			out.Error.Token = qerr.Token
			out.Error.Column = qerr.Column
			out.Error.Expected = qerr.Expected
			out.Error.Alternatives = qerr.Alternatives
		}
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("failed to encode answer %s: %w", ans.ID, err)
	}
	return nil
}
