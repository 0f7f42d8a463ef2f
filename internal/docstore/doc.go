// Package docstore is the document store facade used by the command layer.
//
// A Store binds one storage backend, one encryption engine and an in-memory
// name index, and drives the Locked/Unlocked state machine:
//
//	          Lock(password)
//	Unlocked ───────────────▶ Locked
//	    ▲                        │
//	    └────────────────────────┘
//	          Unlock(password)
//
// While Locked the backend artifacts hold ciphertext, so every save, find and
// delete fails fast without touching the backend. Names can still be listed
// from the last index snapshot.
//
// # Lock Sequence
//
//  1. Seal the backend (archive backends flush every document into the archive)
//  2. Encrypt every artifact in place
//  3. Transition to Locked
//
// On failure at step 2 the backend is unsealed again and the store stays
// Unlocked. Unlock runs the reverse: decrypt, transition to Unlocked, unseal,
// and rebuild the name index.
//
// # Errors
//
// Every error returned by a Store is an *Error carrying an ErrorCode. Backend
// and engine errors are wrapped, never returned raw. NewUserError maps any
// error to the message shown to the user.
//
// # Concurrency
//
// Each operation holds the store mutex for its whole duration, so calls from
// several goroutines are serialized. Lock and Unlock are not cancellable once
// the engine has started.
package docstore
