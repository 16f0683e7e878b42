package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/askdata/agent"
	"github.com/vegasq/askdata/schema"
)

const prompt = "askdata> "

// maxQuestionBytes bounds one input line.
const maxQuestionBytes = 64 * 1024

var exitWords = map[string]bool{"exit": true, "quit": true, `\q`: true}

// repl answers questions line by line until exit, quit or end of input.
// Unanswered questions are reported and the loop continues.
func (o *options) repl(in io.Reader, out, errOut io.Writer, sess *agent.Session) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxQuestionBytes)

	fmt.Fprintln(out, `Type a question, "help" for examples, or "exit" to quit.`)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case exitWords[strings.ToLower(line)]:
			return nil
		case strings.EqualFold(line, "help"):
			printHelp(out, sess.Schema())
			continue
		}

		if err := o.answer(out, errOut, sess, line); err != nil && !errors.Is(err, errUnanswered) {
			return err
		}
		fmt.Fprintln(out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// examples builds help questions from the session's own columns.
func examples(s *schema.Schema) []string {
	out := []string{"columns", "describe", "how many rows", "missing values"}
	numeric := s.OfType(schema.Numeric)
	categorical := s.OfType(schema.Categorical)

	if len(numeric) > 0 && len(categorical) > 0 {
		out = append(out, fmt.Sprintf("sum %s by %s", numeric[0], categorical[0]))
	}
	if len(categorical) > 0 {
		out = append(out, "value counts of "+categorical[0])
	}
	if len(numeric) > 0 {
		n := numeric[0]
		if len(s.OfType(schema.Datetime)) > 0 {
			out = append(out, "trend of "+n)
		}
		q := "top 10 rows by " + n
		if len(categorical) > 0 {
			q += " where " + categorical[0] + " = <value>"
		}
		out = append(out, q, "outliers in "+n)
	}
	if len(numeric) > 1 {
		out = append(out,
			fmt.Sprintf("correlation between %s and %s", numeric[0], numeric[1]),
			fmt.Sprintf("multivariate anomalies across %s and %s", numeric[0], numeric[1]))
	}
	return out
}

func printHelp(out io.Writer, s *schema.Schema) {
	fmt.Fprintln(out, "Example questions:")
	for _, e := range examples(s) {
		fmt.Fprintf(out, "  %s\n", e)
	}
}
