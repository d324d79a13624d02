package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/session"
	"github.com/roach88/nestedjson/internal/testutil"
)

// Error codes for session failures that carry no doc.ErrorCode.
const (
	CodeMassRemoval = "MASS_REMOVAL"
	CodeReadOnly    = "READ_ONLY"
	CodeNotLoaded   = "NOT_LOADED"
	CodeUnknown     = "ERROR"
)

// ErrorCode names err the way scenarios spell expect_error.
func ErrorCode(err error) string {
	if code := doc.CodeOf(err); code != "" {
		return string(code)
	}
	switch {
	case errors.Is(err, session.ErrMassRemoval):
		return CodeMassRemoval
	case errors.Is(err, session.ErrReadOnly):
		return CodeReadOnly
	case errors.Is(err, session.ErrNotLoaded):
		return CodeNotLoaded
	}
	return CodeUnknown
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh dispatcher and an in-memory document
// for isolation.
//
// Execution flow:
// 1. Start a dispatcher with sequential correlation ids
// 2. Open the scenario document in a session
// 3. Execute steps, checking each against its expect_error
// 4. Evaluate assertions against the final state
//
// A step whose outcome differs from its expectation is recorded as an error
// and execution continues. Run itself only fails when the scenario cannot be
// started, e.g. the document does not parse.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	runner := testutil.StartRunner()
	defer runner.Stop()

	indent := codec.DefaultIndent
	if scenario.Indent != nil {
		indent = *scenario.Indent
	}

	mem := testutil.NewMemoryDocument(scenario.Document)
	sess := session.New(runner.Caller,
		session.WithIndent(indent),
		session.WithLogger(testutil.DiscardLogger()),
	)
	if err := sess.Open(ctx, scenario.Name, mem); err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		event := executeStep(ctx, sess, step)
		event.Seq = i + 1
		result.Trace = append(result.Trace, event)

		want := step.ExpectError
		if want == "" {
			want = OutcomeOK
		}
		if event.Outcome != want {
			result.AddError(fmt.Sprintf("steps[%d] %s: outcome %s, want %s", i, event.Step, event.Outcome, want))
		}
	}

	view, err := sess.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze final state: %w", err)
	}
	text, err := sess.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize final state: %w", err)
	}

	result.Text = text
	result.Stats = view.Stats
	result.Leaves = paths(view.Leaves)
	if !view.Saved {
		result.Pending = paths(view.Pending)
	} else {
		result.Pending = []string{}
	}
	result.Writes = len(mem.Writes())

	actx := &AssertionContext{Current: sess.Current().Root}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func executeStep(ctx context.Context, sess *session.Session, step Step) TraceEvent {
	event := TraceEvent{Step: step.Kind()}

	var err error
	switch event.Step {
	case StepAdd:
		event.Value = step.Value
		var path string
		path, err = sess.Add(ctx, step.Add, step.Value, step.Overwrite)
		if err == nil {
			event.Path = path
		} else {
			event.Path = step.Add
		}
	case StepReset:
		err = sess.Reset()
	case StepSave:
		err = sess.Save(ctx, step.Force)
	}

	event.Outcome = OutcomeOK
	if err != nil {
		event.Outcome = ErrorCode(err)
	}
	return event
}

func paths(leaves []flatten.Leaf) []string {
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = l.Path
	}
	return out
}
