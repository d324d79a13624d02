// Package store provides the persistence collaborators a session saves to.
//
// Two backends implement session.Persistence:
//   - File: a plain JSON file, written with temp-file + rename so a crash
//     never leaves a half-written document behind
//   - Store: a SQLite database holding an append-only revision log per
//     document name; the latest revision is the document's content
//
// # Revision log
//
// Revisions are keyed by (name, seq). seq starts at 1 per name and only
// grows. Each row carries the content digest (see doc.ContentDigest), and
// a write whose digest equals the latest revision's is skipped, so saving
// an unchanged document does not grow the log.
//
// All listing queries order by seq ASC so results are deterministic.
//
// # Connection
//
// Open passes the SQLite settings in the DSN so every connection gets them:
// WAL journaling, synchronous=NORMAL, a 5s busy timeout and enforced foreign
// keys. Schema upgrades are tracked in PRAGMA user_version.
package store
