// Package session is the interactive layer over the dispatcher. It holds the
// only long-lived document references, the current and baseline snapshots,
// and swaps them wholesale as responses arrive. It never walks a tree itself;
// parsing, flattening, diffing, editing and serializing all run on the
// dispatcher's worker.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/diff"
	"github.com/roach88/nestedjson/internal/dispatch"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/flatten"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

var (
	// ErrNotLoaded is returned by operations that need a document.
	ErrNotLoaded = errors.New("no document loaded")

	// ErrReadOnly is returned by Save when the document has no persistence.
	ErrReadOnly = errors.New("document is read-only: no persistence attached")

	// ErrMassRemoval is returned by Save when more than half of the baseline
	// leaves would be removed and the save was not forced.
	ErrMassRemoval = errors.New("more than 50% of the keys were removed")
)

// Persistence reads and writes document text. The session never inspects
// what is behind it: a file, a database row, or a download.
type Persistence interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// state is an immutable snapshot of everything the session holds. It is
// replaced wholesale on every transition.
type state struct {
	source       Persistence
	current      *doc.Document
	baseline     *doc.Document
	originalSize int
	unsaved      []string // leaf ids in edit order
	saved        []flatten.Leaf
}

// Session tracks one document at a time.
type Session struct {
	caller *dispatch.Caller
	indent int
	logger *slog.Logger

	st atomic.Pointer[state]
	mu sync.Mutex // serialises transitions; reads are lock-free
}

// Option configures a Session.
type Option func(*Session)

// WithIndent sets the indent width used when saving.
func WithIndent(n int) Option {
	return func(s *Session) { s.indent = n }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session that runs its work through caller.
func New(caller *dispatch.Caller, opts ...Option) *Session {
	s := &Session{
		caller: caller,
		indent: codec.DefaultIndent,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open reads text from p and loads it as name. A later Save writes back to p.
func (s *Session) Open(ctx context.Context, name string, p Persistence) error {
	text, err := p.Read(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return s.load(ctx, name, text, p)
}

// Load parses text as a read-only document.
func (s *Session) Load(ctx context.Context, name, text string) error {
	return s.load(ctx, name, text, nil)
}

func (s *Session) load(ctx context.Context, name, text string, p Persistence) error {
	parsed, err := s.caller.Parse(ctx, text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := doc.NewDocument(parsed.Root, doc.RoleCurrent, name)
	s.st.Store(&state{
		source:       p,
		current:      cur,
		baseline:     cur.As(doc.RoleBaseline),
		originalSize: len(text),
	})
	s.logger.Info("document loaded", "name", name, "bytes", len(text), "leaves", len(parsed.Leaves))
	return nil
}

// Loaded reports whether a document is loaded.
func (s *Session) Loaded() bool {
	return s.st.Load() != nil
}

// Current returns the live snapshot, or nil.
func (s *Session) Current() *doc.Document {
	if st := s.st.Load(); st != nil {
		return st.current
	}
	return nil
}

// Baseline returns the last loaded or saved snapshot, or nil.
func (s *Session) Baseline() *doc.Document {
	if st := s.st.Load(); st != nil {
		return st.baseline
	}
	return nil
}

// ReadOnly reports whether Save has nowhere to write.
func (s *Session) ReadOnly() bool {
	st := s.st.Load()
	return st == nil || st.source == nil
}

// Add parses pathText in whatever notation it is written in, infers a typed
// value from valueText, and stores it. It returns the canonical path.
func (s *Session) Add(ctx context.Context, pathText, valueText string, overwrite bool) (string, error) {
	segs, err := pathfmt.ParseAuto(pathText)
	if err != nil {
		return "", err
	}
	return s.Set(ctx, segs, codec.InferValue(valueText), overwrite)
}

// Set stores value at segments and adopts the result as the current snapshot.
// The path is recorded as unsaved. It returns the canonical path.
func (s *Session) Set(ctx context.Context, segments []string, value doc.Node, overwrite bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st.Load()
	if st == nil {
		return "", ErrNotLoaded
	}
	res, err := s.caller.AddOrUpdate(ctx, st.current.Root, segments, value, overwrite)
	if err != nil {
		return "", err
	}

	next := *st
	next.current = st.current.WithRoot(res.Root)
	next.unsaved = appendUnique(st.unsaved, flatten.ID(segments))
	next.saved = nil
	s.st.Store(&next)

	s.logger.Debug("value set", "path", res.Path, "overwrite", overwrite)
	return res.Path, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// Reset discards every edit since the last load or save.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st.Load()
	if st == nil {
		return ErrNotLoaded
	}
	next := *st
	next.current = st.baseline.As(doc.RoleCurrent)
	next.unsaved = nil
	next.saved = nil
	s.st.Store(&next)
	s.logger.Info("changes discarded", "name", st.current.Name)
	return nil
}

// Text serializes the current snapshot with the session indent.
func (s *Session) Text(ctx context.Context) (string, error) {
	st := s.st.Load()
	if st == nil {
		return "", ErrNotLoaded
	}
	return s.caller.Serialize(ctx, st.current.Root, s.indent)
}

// Save writes the current snapshot through the attached persistence and
// makes it the new baseline. Unless force is set, a save that removes more
// than half of the baseline leaves fails with ErrMassRemoval.
func (s *Session) Save(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st.Load()
	if st == nil {
		return ErrNotLoaded
	}
	if st.source == nil {
		return ErrReadOnly
	}

	analysis, err := s.caller.Analyze(ctx, st.baseline.Root, st.current.Root)
	if err != nil {
		return err
	}
	if !force && diff.MassRemoval(analysis.Stats) {
		return fmt.Errorf("%w (removed %d of %d)", ErrMassRemoval, analysis.Stats.Removed, analysis.Stats.Baseline)
	}

	text, err := s.caller.Serialize(ctx, st.current.Root, s.indent)
	if err != nil {
		return err
	}
	if err := st.source.Write(ctx, text); err != nil {
		return fmt.Errorf("write %s: %w", st.current.Name, err)
	}

	next := *st
	next.baseline = st.current.As(doc.RoleBaseline)
	next.originalSize = len(text)
	next.saved = pending(analysis.Leaves, st.unsaved)
	next.unsaved = nil
	s.st.Store(&next)

	s.logger.Info("document saved",
		"name", st.current.Name,
		"bytes", len(text),
		"added", analysis.Stats.Added,
		"modified", analysis.Stats.Modified,
		"removed", analysis.Stats.Removed,
	)
	return nil
}

// DismissSaved clears the list of leaves written by the last save.
func (s *Session) DismissSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.st.Load(); st != nil && st.saved != nil {
		next := *st
		next.saved = nil
		s.st.Store(&next)
	}
}

// pending returns the leaves whose ids are in ids, in leaf order.
func pending(leaves []flatten.Leaf, ids []string) []flatten.Leaf {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []flatten.Leaf
	for _, l := range leaves {
		if _, ok := want[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}
