// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the
// journal command line.
//
// All Msg* constants are human-readable message strings printed to the
// terminal to describe the outcome of an operation. Keeping them in one
// place keeps the wording consistent across commands.
package app

const (
	// MsgInvalidDataProvided is printed when required input is missing or
	// blank.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is printed when the username/password pair
	// does not unlock an account.
	MsgInvalidLoginPassword = "invalid username/password"

	// MsgInvalidSecurityAnswer is printed when the security answer given for
	// a password reset is wrong.
	MsgInvalidSecurityAnswer = "invalid security answer"

	// MsgUserNotFound is printed when no account has the given username.
	MsgUserNotFound = "user not found"

	// MsgLoginAlreadyExists is printed when registration is rejected
	// because the username is taken.
	MsgLoginAlreadyExists = "username already exists"

	// MsgEntryNotFound is printed when the entry does not exist or belongs
	// to another user.
	MsgEntryNotFound = "entry not found"

	// MsgDecryptionFailed is printed when stored ciphertext fails
	// authentication: the data was corrupted or tampered with.
	MsgDecryptionFailed = "entry could not be decrypted, the data may be corrupted"

	// MsgBackupFailed is printed when the backup taken before a password
	// change or reset could not be written. Nothing was modified.
	MsgBackupFailed = "backup failed, nothing was changed"

	// MsgPasswordNotChanged is printed when re-encryption failed and the
	// password change was rolled back.
	MsgPasswordNotChanged = "password change failed, the old password is still valid"

	// MsgPasswordsDoNotMatch is printed when the confirmation of a new
	// password differs from the first input.
	MsgPasswordsDoNotMatch = "passwords do not match"

	// MsgAborted is printed when the user declines a confirmation prompt.
	MsgAborted = "aborted"
)
