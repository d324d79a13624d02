package session

import (
	"context"

	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/flatten"
)

// FileStats describes the loaded document.
type FileStats struct {
	OriginalSize int `json:"originalSize"`
	CurrentSize  int `json:"currentSize"`
	NodeCount    int `json:"nodeCount"`
	LeafCount    int `json:"leafCount"`
}

// View is everything a presentation layer needs to render the session.
type View struct {
	Name     string         `json:"name"`
	ReadOnly bool           `json:"readOnly"`
	Leaves   []flatten.Leaf `json:"leaves"`
	Stats    diff.Stats     `json:"stats"`
	File     FileStats      `json:"file"`

	// Pending lists the edited leaves not yet saved or, right after a save,
	// the leaves that save wrote (Saved is then true).
	Pending []flatten.Leaf `json:"pending"`
	Saved   bool           `json:"saved"`
}

// View analyses the current snapshot against the baseline.
func (s *Session) View(ctx context.Context) (View, error) {
	st := s.st.Load()
	if st == nil {
		return View{}, ErrNotLoaded
	}

	analysis, err := s.caller.Analyze(ctx, st.baseline.Root, st.current.Root)
	if err != nil {
		return View{}, err
	}
	text, err := s.caller.Serialize(ctx, st.current.Root, s.indent)
	if err != nil {
		return View{}, err
	}

	v := View{
		Name:     st.current.Name,
		ReadOnly: st.source == nil,
		Leaves:   analysis.Leaves,
		Stats:    analysis.Stats,
		File: FileStats{
			OriginalSize: st.originalSize,
			CurrentSize:  len(text),
			NodeCount:    analysis.NodeCount,
			LeafCount:    len(analysis.Leaves),
		},
	}
	if st.saved != nil {
		v.Pending, v.Saved = st.saved, true
	} else {
		v.Pending = pending(analysis.Leaves, st.unsaved)
	}
	return v, nil
}
