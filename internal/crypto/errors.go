package crypto

import "errors"

var (
	// ErrAuthenticationFailure covers a wrong password, a wrong security
	// answer and a DEK that fails to unwrap. The causes are not
	// distinguished.
	ErrAuthenticationFailure = errors.New("authentication failure")
	// ErrDecryptionFailure is the only error a field decryption reports.
	ErrDecryptionFailure = errors.New("decryption failure")

	ErrUnknownKDFVersion = errors.New("unknown kdf version")
	ErrInvalidKeyLength  = errors.New("invalid key length")
	ErrMalformedHash     = errors.New("malformed secret hash")
)
