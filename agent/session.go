// Package agent answers questions about one loaded table.
//
// A Session holds the read-only table and its schema. Ask runs a question
// through matching, validation and execution and always returns an Answer:
// diagnostics land in Answer.Err rather than escaping as panics.
//
// Example usage:
//
//	sess, err := agent.NewSession(table, s, agent.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	ans := sess.Ask("sum scheduled_quantity by state_abb")
//	if ans.Err != nil {
//	    fmt.Println(ans.Err)
//	}
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/engine"
	"github.com/vegasq/askdata/query"
	"github.com/vegasq/askdata/schema"
)

var (
	// ErrNoTable is returned by NewSession without a table
	ErrNoTable = errors.New("session needs a table")

	// ErrNoSchema is returned by NewSession without a schema
	ErrNoSchema = errors.New("session needs a schema")
)

// Answer is the outcome of one question. Exactly one of Result and Err is
// set.
type Answer struct {
	ID       string
	Question string
	Plan     *query.ValidPlan
	Result   *engine.Result
	Err      error
	Elapsed  time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Every log line carries the
// question's query_id.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithEngine replaces the default engine.
func WithEngine(e *engine.Engine) Option {
	return func(s *Session) {
		s.engine = e
	}
}

// WithQueryOptions sets the matcher options, such as the date column.
func WithQueryOptions(opts ...query.Option) Option {
	return func(s *Session) {
		s.queryOpts = append(s.queryOpts, opts...)
	}
}

// Session answers questions about one table. It does not modify the table
// and keeps no state between questions.
type Session struct {
	table     *dataset.Table
	schema    *schema.Schema
	engine    *engine.Engine
	queryOpts []query.Option
	logger    log.Logger
}

// NewSession creates a session over t described by s. Every schema column
// must be a table column.
func NewSession(t *dataset.Table, s *schema.Schema, opts ...Option) (*Session, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	if s == nil {
		return nil, ErrNoSchema
	}
	for _, name := range s.Names() {
		if !t.HasColumn(name) {
			return nil, fmt.Errorf("schema column %q is not in the table", name)
		}
	}

	sess := &Session{
		table:  t,
		schema: s,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(sess)
	}
	if sess.engine == nil {
		sess.engine = engine.New(engine.WithLogger(sess.logger))
	}
	return sess, nil
}

// Table returns the session's table.
func (s *Session) Table() *dataset.Table { return s.table }

// Schema returns the session's schema.
func (s *Session) Schema() *schema.Schema { return s.schema }

// Ask answers one question.
func (s *Session) Ask(text string) (ans *Answer) {
	start := time.Now()
	ans = &Answer{ID: uuid.NewString(), Question: text}
	logger := log.With(s.logger, "query_id", ans.ID)

	defer func() {
		if r := recover(); r != nil {
			ans.Result = nil
			ans.Err = fmt.Errorf("internal error answering %q: %v", text, r)
			level.Error(logger).Log("msg", "panic while answering", "err", ans.Err)
		}
		ans.Elapsed = time.Since(start)
	}()

	level.Debug(logger).Log("msg", "question received", "question", text)

	plan, err := query.Match(text, s.schema, s.queryOpts...)
	if err != nil {
		return s.fail(logger, ans, "match", err)
	}
	level.Debug(logger).Log("msg", "plan matched", "plan", plan.String())

	vp, err := query.Validate(plan, s.schema)
	if err != nil {
		return s.fail(logger, ans, "validate", err)
	}
	ans.Plan = vp
	for _, w := range vp.Warnings() {
		level.Warn(logger).Log("msg", "plan warning", "warning", w)
	}

	res, err := s.engine.Execute(vp, s.table)
	if err != nil {
		return s.fail(logger, ans, "execute", err)
	}
	ans.Result = res

	level.Info(logger).Log("msg", "question answered", "plan", vp.String(),
		"rows_before", res.RowCountBefore, "rows_after", res.RowCountAfter,
		"result_rows", res.Table.Len(), "degraded", res.Degraded, "duration", time.Since(start))
	return ans
}

func (s *Session) fail(logger log.Logger, ans *Answer, stage string, err error) *Answer {
	ans.Err = err
	kind := "error"
	if k, ok := query.KindOf(err); ok {
		kind = k.String()
	}
	level.Info(logger).Log("msg", "question not answered", "stage", stage, "kind", kind, "err", err)
	return ans
}
