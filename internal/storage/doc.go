// Package storage provides the persistence strategies behind a document store.
//
// Every strategy implements Backend over exactly one physical artifact:
//
//   - SQLiteBackend: a single-table SQLite database (or an in-memory database)
//   - JSONBackend: a flat JSON file mapping names to documents
//   - ArchiveBackend: a zip archive with one entry per document, a side index
//     of names, and a working directory of loose documents used for reads
//
// # Persisted Layouts
//
// SQLite (schema.sql):
//
//	documents(id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, text TEXT NOT NULL)
//
// JSON:
//
//	{"<name>": {"documentName": "<name>", "text": "<text>"}, ...}
//
// Archive:
//
//	<path>              zip, entry name = document name, entry body = text
//	<path>.index.json   JSON array of document names
//	<path>.d/           loose documents, file name = base64url(name)
//
// # Sealing
//
// Seal prepares the artifacts for whole-file encryption: it flushes pending
// state into the artifacts listed by Artifacts and releases open handles.
// Unseal reverses it after decryption. Backends never see ciphertext between
// a Seal and the matching Unseal.
//
// Names passed to a Backend are already normalized by package document;
// backends compare them byte-for-byte.
package storage
