package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
)

// Snapshot renders the parts of a result that golden files pin down: the
// trace, the final text and the final stats. Key order is fixed, so equal
// results always render byte-identical snapshots.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(doc.Sequence, len(result.Trace))
	for i, event := range result.Trace {
		entries := []doc.Entry{
			doc.E("seq", doc.NumberFromInt(int64(event.Seq))),
			doc.E("step", doc.String(event.Step)),
		}
		if event.Path != "" {
			entries = append(entries, doc.E("path", doc.String(event.Path)))
		}
		if event.Value != "" {
			entries = append(entries, doc.E("value", doc.String(event.Value)))
		}
		entries = append(entries, doc.E("outcome", doc.String(event.Outcome)))
		trace[i] = doc.NewMapping(entries...)
	}

	changed := make(doc.Sequence, len(result.Stats.Changed))
	for i, p := range result.Stats.Changed {
		changed[i] = doc.String(p)
	}

	snapshot := doc.NewMapping(
		doc.E("scenario_name", doc.String(scenarioName)),
		doc.E("trace", trace),
		doc.E("stats", doc.NewMapping(
			doc.E("added", doc.NumberFromInt(int64(result.Stats.Added))),
			doc.E("modified", doc.NumberFromInt(int64(result.Stats.Modified))),
			doc.E("removed", doc.NumberFromInt(int64(result.Stats.Removed))),
			doc.E("changed", changed),
		)),
		doc.E("writes", doc.NumberFromInt(int64(result.Writes))),
		doc.E("text", doc.String(result.Text)),
	)

	text, err := codec.Serialize(snapshot, 2)
	if err != nil {
		return nil, err
	}
	return []byte(text + "\n"), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
