// Package crypt implements whole-file encryption for store artifacts.
//
// Engine is the contract the document store consumes. FileEngine is the
// default implementation: every file is replaced in place by a header followed
// by an XChaCha20-Poly1305 ciphertext whose key is derived from the password
// with scrypt.
//
// # File Format
//
//	offset  size  field
//	0       8     magic "PYRO\x00ENC"
//	8       1     format version (1)
//	9       1     scrypt log2(N)
//	10      4     scrypt r (big endian)
//	14      4     scrypt p (big endian)
//	18      16    salt
//	34      24    nonce
//	58      ...   ciphertext (header is bound as additional data)
//
// The magic prefix is what HeaderPresent checks; it can be read without the
// password.
package crypt
