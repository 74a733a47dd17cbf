// Package search implements the blind index over encrypted journal entries.
//
// Plaintext is tokenized, every token is replaced by its HMAC-SHA256 digest
// under the session's search key, and only digests reach the row store. A
// query is answered by intersecting the entry sets of its digests, so the
// store can match terms without ever seeing them.
package search
