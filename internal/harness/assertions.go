package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Step, event.Path, event.Outcome)
		}
	}

	return buf.String()
}

// AssertionContext carries what assertions inspect beyond the Result.
type AssertionContext struct {
	// Current is the final current root.
	Current doc.Node
}

// EvaluateAssertions checks every assertion and returns one message per
// failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertStats:
		return assertStats(result, a)
	case AssertChanged:
		return assertPaths(AssertChanged, result.Stats.Changed, a.Paths, result.Trace)
	case AssertLeaves:
		return assertPaths(AssertLeaves, result.Leaves, a.Paths, result.Trace)
	case AssertPending:
		return assertPaths(AssertPending, result.Pending, a.Paths, result.Trace)
	case AssertValue:
		return assertValue(actx.Current, a, result.Trace)
	case AssertAbsent:
		return assertAbsent(actx.Current, a, result.Trace)
	case AssertWrites:
		if result.Writes != *a.Count {
			return &AssertionError{
				Type:     AssertWrites,
				Expected: fmt.Sprintf("%d save(s)", *a.Count),
				Actual:   fmt.Sprintf("%d save(s)", result.Writes),
				Trace:    result.Trace,
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

func assertStats(result *Result, a Assertion) error {
	var mismatches []string
	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			mismatches = append(mismatches, fmt.Sprintf("%s=%d (want %d)", name, got, *want))
		}
	}
	check("added", a.Added, result.Stats.Added)
	check("modified", a.Modified, result.Stats.Modified)
	check("removed", a.Removed, result.Stats.Removed)

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertStats,
			Expected: formatCounts(a),
			Actual:   strings.Join(mismatches, ", "),
			Trace:    result.Trace,
		}
	}
	return nil
}

func formatCounts(a Assertion) string {
	var parts []string
	if a.Added != nil {
		parts = append(parts, fmt.Sprintf("added=%d", *a.Added))
	}
	if a.Modified != nil {
		parts = append(parts, fmt.Sprintf("modified=%d", *a.Modified))
	}
	if a.Removed != nil {
		parts = append(parts, fmt.Sprintf("removed=%d", *a.Removed))
	}
	return strings.Join(parts, ", ")
}

// assertPaths requires got and want to hold the same paths in the same order.
func assertPaths(kind string, got, want []string, trace []TraceEvent) error {
	if len(got) == len(want) {
		same := true
		for i := range got {
			if got[i] != want[i] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", got),
		Trace:    trace,
	}
}

func assertValue(root doc.Node, a Assertion, trace []TraceEvent) error {
	segs, err := pathfmt.ParseAuto(a.Path)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	want, err := codec.Parse(a.Equals)
	if err != nil {
		return fmt.Errorf("value: equals: %w", err)
	}

	got, ok := doc.Lookup(root, segs)
	if !ok {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s = %s", pathfmt.Canonical(segs), a.Equals),
			Actual:   "no value at path",
			Trace:    trace,
		}
	}
	if !canonicalEqual(got, want) {
		text, _ := codec.Serialize(got, 0)
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s = %s", pathfmt.Canonical(segs), a.Equals),
			Actual:   fmt.Sprintf("%s = %s", pathfmt.Canonical(segs), text),
			Trace:    trace,
		}
	}
	return nil
}

func assertAbsent(root doc.Node, a Assertion, trace []TraceEvent) error {
	segs, err := pathfmt.ParseAuto(a.Path)
	if err != nil {
		return fmt.Errorf("absent: %w", err)
	}
	if got, ok := doc.Lookup(root, segs); ok {
		text, _ := codec.Serialize(got, 0)
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("nothing at %s", pathfmt.Canonical(segs)),
			Actual:   text,
			Trace:    trace,
		}
	}
	return nil
}

// canonicalEqual ignores key order and number spelling.
func canonicalEqual(a, b doc.Node) bool {
	ca, err := doc.Canonical(a)
	if err != nil {
		return false
	}
	cb, err := doc.Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}
