package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nestedjson/internal/doc"
)

// ErrNotFound is returned when a document has no revisions.
var ErrNotFound = errors.New("store: document not found")

// Revision is one saved version of a named document.
type Revision struct {
	Name    string `json:"name"`
	Seq     int64  `json:"seq"`
	Digest  string `json:"digest"`
	Size    int64  `json:"size"`
	Content string `json:"-"`
}

// WriteRevision appends content as the next revision of name.
//
// If the latest revision already has the same digest nothing is written
// and that revision is returned with written=false.
func (s *Store) WriteRevision(ctx context.Context, name, content string) (rev Revision, written bool, err error) {
	if name == "" {
		return Revision{}, false, fmt.Errorf("write revision: empty document name")
	}
	digest := doc.ContentDigest([]byte(content))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (name) VALUES (?)`, name); err != nil {
		return Revision{}, false, fmt.Errorf("insert document %q: %w", name, err)
	}

	latest, err := scanRevision(tx.QueryRowContext(ctx, `
		SELECT name, seq, digest, size, content
		FROM revisions
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		latest = Revision{Name: name}
	case err != nil:
		return Revision{}, false, fmt.Errorf("query latest revision of %q: %w", name, err)
	case latest.Digest == digest:
		return latest, false, nil
	}

	rev = Revision{
		Name:    name,
		Seq:     latest.Seq + 1,
		Digest:  digest,
		Size:    int64(len(content)),
		Content: content,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (name, seq, digest, content, size)
		VALUES (?, ?, ?, ?, ?)
	`, rev.Name, rev.Seq, rev.Digest, rev.Content, rev.Size); err != nil {
		return Revision{}, false, fmt.Errorf("insert revision %s@%d: %w", name, rev.Seq, err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("commit revision: %w", err)
	}
	return rev, true, nil
}

// LatestRevision returns the newest revision of name, or ErrNotFound.
func (s *Store) LatestRevision(ctx context.Context, name string) (Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, `
		SELECT name, seq, digest, size, content
		FROM revisions
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("query latest revision of %q: %w", name, err)
	}
	return rev, nil
}

// Revision returns revision seq of name, or ErrNotFound.
func (s *Store) Revision(ctx context.Context, name string, seq int64) (Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, `
		SELECT name, seq, digest, size, content
		FROM revisions
		WHERE name = ? AND seq = ?
	`, name, seq))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("%w: %s@%d", ErrNotFound, name, seq)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("query revision %s@%d: %w", name, seq, err)
	}
	return rev, nil
}

// ListRevisions returns every revision of name in seq order, without content.
func (s *Store) ListRevisions(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, seq, digest, size
		FROM revisions
		WHERE name = ?
		ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query revisions of %q: %w", name, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.Name, &rev.Seq, &rev.Digest, &rev.Size); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revs, nil
}

// Names returns every document name in the store, sorted.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name ASC COLLATE BINARY`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanRevision(row *sql.Row) (Revision, error) {
	var rev Revision
	err := row.Scan(&rev.Name, &rev.Seq, &rev.Digest, &rev.Size, &rev.Content)
	return rev, err
}

// Document is a session.Persistence backed by the revision log of one name.
type Document struct {
	store *Store
	name  string
}

// Document returns a handle reading and writing the named document.
func (s *Store) Document(name string) *Document {
	return &Document{store: s, name: name}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Read returns the content of the latest revision.
func (d *Document) Read(ctx context.Context) (string, error) {
	rev, err := d.store.LatestRevision(ctx, d.name)
	if err != nil {
		return "", err
	}
	return rev.Content, nil
}

// Write appends text as a new revision unless it is unchanged.
func (d *Document) Write(ctx context.Context, text string) error {
	_, _, err := d.store.WriteRevision(ctx, d.name, text)
	return err
}
