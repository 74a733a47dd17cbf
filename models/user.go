// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User is the identity record of a journal owner. It holds only verification
// hashes and the wrapped data-encryption key; no plaintext secret and no raw
// key ever reaches this struct.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"user_id"`

	// Username is the unique login name. Its bytes are used as associated
	// data when wrapping the DEK and when encrypting entry fields.
	Username string `json:"username"`

	// PasswordHash is the argon2id encoded verification hash of the password.
	PasswordHash string `json:"-"`

	// KEKSalt is the 16-byte random salt fed to the password KDF.
	KEKSalt []byte `json:"-"`

	// WrappedDEK is the AEAD ciphertext of the data-encryption key.
	WrappedDEK []byte `json:"-"`

	// WrapNonce is the 12-byte nonce used to wrap the DEK.
	WrapNonce []byte `json:"-"`

	// KDFVersion selects the cost parameters used to derive the KEK.
	KDFVersion int `json:"kdf_version"`

	// SecurityQuestion is the plain question shown during password reset.
	SecurityQuestion string `json:"security_question"`

	// SecurityAnswerHash is the argon2id encoded verification hash of the
	// security answer.
	SecurityAnswerHash string `json:"-"`

	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Credentials returns the credential set of u, the part of the record that
// password change and password reset replace as a unit.
func (u User) Credentials() UserCredentials {
	return UserCredentials{
		PasswordHash: u.PasswordHash,
		KEKSalt:      u.KEKSalt,
		WrappedDEK:   u.WrappedDEK,
		WrapNonce:    u.WrapNonce,
		KDFVersion:   u.KDFVersion,
	}
}

// WithCredentials returns a copy of u with every credential field taken from c.
func (u User) WithCredentials(c UserCredentials) User {
	u.PasswordHash = c.PasswordHash
	u.KEKSalt = c.KEKSalt
	u.WrappedDEK = c.WrappedDEK
	u.WrapNonce = c.WrapNonce
	u.KDFVersion = c.KDFVersion
	return u
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// UserCredentials groups the user fields that are written together whenever
// the key epoch changes.
type UserCredentials struct {
	PasswordHash string
	KEKSalt      []byte
	WrappedDEK   []byte
	WrapNonce    []byte
	KDFVersion   int
}
