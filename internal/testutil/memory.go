// Package testutil holds deterministic helpers shared by tests and the
// scenario harness: an in-memory document store, a dispatcher runner with a
// fixed id sequence, and generators for large documents.
package testutil

import (
	"context"
	"sync"
)

// MemoryDocument keeps document text in memory. It satisfies
// session.Persistence.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryDocument struct {
	mu     sync.Mutex
	text   string
	writes []string
	fail   error
}

// NewMemoryDocument returns a document holding text.
func NewMemoryDocument(text string) *MemoryDocument {
	return &MemoryDocument{text: text}
}

// Read returns the current text.
func (m *MemoryDocument) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Write replaces the text, or fails with the error set by FailWrites.
func (m *MemoryDocument) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.text = text
	m.writes = append(m.writes, text)
	return nil
}

// Text returns the current text without a context.
func (m *MemoryDocument) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns every successfully written text, oldest first.
func (m *MemoryDocument) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// FailWrites makes every later Write return err. nil restores writes.
func (m *MemoryDocument) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}
