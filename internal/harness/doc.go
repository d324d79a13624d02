// Package harness replays scripted edit sessions and checks their outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	document: '{"server": {"port": 8080}}'   # or file: input.json
//	indent: 2
//	steps:
//	  - add: "server:tls->enabled"
//	    value: "true"
//	  - add: server.port
//	    value: "9090"
//	    expect_error: DUPLICATE_KEY
//	  - add: server.port
//	    value: "9090"
//	    overwrite: true
//	  - save: true
//	assertions:
//	  - type: stats
//	    added: 1
//	    modified: 1
//	  - type: value
//	    path: "server:port"
//	    equals: "9090"
//
// Step values go through value inference exactly as typed input does:
// "9090" becomes a number, "true" a boolean, '{"a":1}' a mapping.
//
// # Assertion Types
//
//   - stats: added/modified/removed counts against the baseline
//   - changed: canonical paths of the changes, in diff order
//   - leaves: canonical paths of every leaf, in document order
//   - value: the leaf at path equals the given JSON text (canonically)
//   - absent: nothing is stored at path
//   - pending: canonical paths edited and not yet saved
//   - writes: number of successful saves
//
// Assertions run against the state after the last step, so after a save
// stats and changed compare against the saved baseline.
//
// # Deterministic Testing
//
// Every run uses a fresh dispatcher with sequential correlation ids and an
// in-memory document, so a scenario always produces the same trace and
// text. RunWithGolden compares that snapshot against
// testdata/golden/{name}.golden.
package harness
