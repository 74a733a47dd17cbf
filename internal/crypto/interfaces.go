package crypto

import "github.com/MKhiriev/go-journal-keeper/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService owns the key hierarchy of a journal account. It knows
// nothing about storage or users; its only job is to derive, wrap and
// separate keys.
//
// Hierarchy:
//
//	salt, DEK        = GenerateKEKSalt() + GenerateDEK()
//	KEK              = DeriveKEK(password, salt, version)   scrypt
//	wrapKey          = HKDF(KEK, "wrap-key")
//	nonce, wrapped   = AES-GCM(wrapKey, DEK, aad=username)
//	encKey, srchKey  = HKDF(DEK, "enc-key"), HKDF(DEK, "search-key")
type KeyChainService interface {
	// GenerateKEKSalt returns 16 random bytes. The salt is not secret and
	// is stored next to the wrapped DEK.
	GenerateKEKSalt() ([]byte, error)

	// GenerateDEK returns a fresh random 32-byte data-encryption key.
	GenerateDEK() ([]byte, error)

	// CurrentKDFVersion is the KDF cost version applied to new credentials.
	CurrentKDFVersion() int

	// DeriveKEK stretches password with scrypt using the cost parameters
	// of the given version. Identical inputs always produce identical
	// output. Unknown versions fail with [ErrUnknownKDFVersion].
	DeriveKEK(password string, salt []byte, version int) ([]byte, error)

	// WrapDEK encrypts dek under a subkey of kek. aad binds the result to
	// the owning account.
	WrapDEK(kek, dek, aad []byte) (nonce, ciphertext []byte, err error)

	// UnwrapDEK reverses WrapDEK. Any mismatch of key, nonce, ciphertext or
	// aad fails with [ErrAuthenticationFailure].
	UnwrapDEK(kek, nonce, ciphertext, aad []byte) ([]byte, error)

	// DeriveSessionKeys splits dek into two independent purpose-bound keys.
	DeriveSessionKeys(dek []byte) (encKey, searchKey []byte, err error)

	// HashSecret produces a self-describing argon2id verification hash.
	HashSecret(secret string) (string, error)

	// VerifySecret checks secret against an encoded hash and returns
	// [ErrAuthenticationFailure] on mismatch.
	VerifySecret(encoded, secret string) error
}

// FieldCodec encrypts and decrypts single entry fields. It performs no I/O.
type FieldCodec interface {
	// EncryptField seals plaintext under key with a fresh random nonce.
	EncryptField(key, plaintext, aad []byte) (models.EntryField, error)

	// DecryptField opens field. Every failure is reported as
	// [ErrDecryptionFailure].
	DecryptField(key []byte, field models.EntryField, aad []byte) ([]byte, error)
}
