// Package harness runs scripted scenarios against a document store.
//
// A scenario is a YAML file that drives a store through its command surface
// and checks the outcome of every step and the final state. The same
// scenario runs unchanged against every backend, so one file covers the
// SQLite, JSON, archive and in-memory stores.
//
// # Scenario Format
//
//	name: todo_lock_cycle
//	description: "Lock and unlock one document"
//	backends: [sqlite, json, archive]   # optional, default: all plus memory
//	flow:
//	  - invoke: saveDocument
//	    args: { docName: todo, text: buy milk }
//	  - invoke: crypt
//	    args: { password: secret, locking: true }
//	  - invoke: findDocument
//	    args: { docName: todo }
//	    expect:
//	      error: LOCKED
//	  - invoke: reopen          # close the store and open it again
//	assertions:
//	  - type: final_state
//	    state: locked
//	  - type: trace_count
//	    command: crypt
//	    count: 1
//
// Flow steps use the JSON wire names of the commands, and args are the wire
// fields. A step without expect must succeed.
//
// # Assertion Types
//
//   - final_state: the store's lock state after the flow
//   - names: the exact set of names listed after the flow
//   - document: a document's text after the flow
//   - absent: a document is not found after the flow
//   - trace_count: how many steps ran a command, optionally with one outcome
//
// # Deterministic Testing
//
// Every operation id is fixed to the scenario name and traces hold no row
// ids or timestamps, so the trace of a scenario is identical across runs
// and backends and can be compared against a golden file.
package harness
