// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Session holds the keys of one authenticated user session: the unwrapped
// DEK and the two subkeys derived from it. It lives only in memory, is never
// persisted and must be destroyed on logout.
//
// Key fields are unexported so the struct cannot be marshalled or printed
// with its secrets; [Session.String] and [Session.MarshalZerologObject]
// expose only the owner identity.
type Session struct {
	UserID   int64
	Username string

	keyEpoch  []byte
	dek       []byte
	encKey    []byte
	searchKey []byte
}

// NewSession binds the given key material to a user. keyEpoch is the wrap
// nonce of the credential set dek was opened from; writes are refused once
// the stored nonce differs. The session takes ownership of the slices;
// callers must not retain or modify them.
func NewSession(userID int64, username string, keyEpoch, dek, encKey, searchKey []byte) *Session {
	return &Session{
		UserID:    userID,
		Username:  username,
		keyEpoch:  keyEpoch,
		dek:       dek,
		encKey:    encKey,
		searchKey: searchKey,
	}
}

// EncKey returns the key that encrypts entry fields.
func (s *Session) EncKey() []byte { return s.encKey }

// SearchKey returns the key that produces blind-index digests.
func (s *Session) SearchKey() []byte { return s.searchKey }

// KeyEpoch returns the wrap nonce the session was opened under.
func (s *Session) KeyEpoch() []byte { return s.keyEpoch }

// DEK returns the data-encryption key the subkeys were derived from.
func (s *Session) DEK() []byte { return s.dek }

// AAD returns the associated data that binds ciphertexts to the owner.
func (s *Session) AAD() []byte { return []byte(s.Username) }

// Active reports whether the session still holds key material.
func (s *Session) Active() bool {
	return s != nil && len(s.encKey) > 0 && len(s.searchKey) > 0
}

// Destroy zeroes every key held by the session. It is safe to call more
// than once and on a nil session.
func (s *Session) Destroy() {
	if s == nil {
		return
	}
	clear(s.dek)
	clear(s.encKey)
	clear(s.searchKey)
	s.dek, s.encKey, s.searchKey = nil, nil, nil
}

// String implements fmt.Stringer without revealing key material.
func (s *Session) String() string {
	if s == nil {
		return "session(<nil>)"
	}
	return fmt.Sprintf("session(user_id=%d, username=%q)", s.UserID, s.Username)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler. Only the
// owner identity is logged.
func (s *Session) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("user_id", s.UserID).Str("username", s.Username)
}
