// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EntryField is one encrypted entry field: the nonce and the AEAD
// ciphertext (tag included) produced under the session encryption key.
type EntryField struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// IsZero reports whether the field carries no ciphertext.
func (f EntryField) IsZero() bool {
	return len(f.Nonce) == 0 && len(f.Ciphertext) == 0
}

// Entry is a journal record as persisted by the row store. Only ciphertext
// and nonces are kept; the plaintext view is [DecipheredEntry].
type Entry struct {
	// ID is the row identifier. IDs grow monotonically, so ordering by ID
	// descending lists newest entries first.
	ID int64 `json:"id"`

	// UserID is the owner of the entry.
	UserID int64 `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title EntryField `json:"title"`
	Body  EntryField `json:"body"`

	// Aux is the optional auxiliary payload (for example a rendered preview
	// produced by the host). Nil when the entry has none.
	Aux *EntryField `json:"aux,omitempty"`

	// AuxFormat is a caller-defined tag describing the Aux payload. It is
	// stored in clear.
	AuxFormat string `json:"aux_format,omitempty"`
}

// TableName returns the name of the database table
// associated with the Entry model.
func (e Entry) TableName() string {
	return "entries"
}

// AuxPayload is the plaintext auxiliary payload attached to an entry.
type AuxPayload struct {
	Format string
	Data   []byte
}

// IsEmpty reports whether p carries neither a format nor data. Passing an
// empty payload to an update removes the stored one.
func (p *AuxPayload) IsEmpty() bool {
	return p == nil || (p.Format == "" && len(p.Data) == 0)
}

// DecipheredEntry is the plaintext view of an [Entry].
type DecipheredEntry struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string
	Body      string
	Aux       *AuxPayload
}

// EntryHeader is the listing view of an entry: id, creation time and the
// decrypted title.
type EntryHeader struct {
	ID        int64
	CreatedAt time.Time
	Title     string
}
