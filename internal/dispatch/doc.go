// Package dispatch runs document operations on a single background worker.
//
// Callers submit a Request carrying an operation, its full input, and a
// correlation id. The worker drains an unbounded FIFO queue one request at a
// time and emits exactly one Response per request, tagged with the same
// correlation id. The worker keeps no document between requests; every
// request carries what it needs.
//
// Thread-safety model:
//   - Submit(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Caller: safe from any goroutine; routes responses by correlation id
//
// Every engine failure is returned inside the Response envelope, never as a
// panic across the boundary. A failed request is logged and the worker moves
// on to the next one; nothing is retried.
package dispatch
