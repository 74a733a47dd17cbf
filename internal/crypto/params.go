// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

const (
	// KeySize is the length of every derived key and of the DEK.
	KeySize = 32
	// SaltSize is the length of the per-user KEK salt.
	SaltSize = 16
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12

	// KDFv1 is scrypt N=2^14, r=8, p=1.
	KDFv1 = 1

	labelWrapKey   = "go-journal-keeper/wrap-key"
	labelEncKey    = "go-journal-keeper/enc-key"
	labelSearchKey = "go-journal-keeper/search-key"
)

// ScryptParams are the cost parameters of one KDF version.
type ScryptParams struct {
	N int
	R int
	P int
}

// Argon2Params tune the secret verification hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// versions are fixed forever once released: stored credentials record the
// version they were derived with.
func defaultKDFVersions() map[int]ScryptParams {
	return map[int]ScryptParams{
		KDFv1: {N: 1 << 14, R: 8, P: 1},
	}
}

// defaultArgon2Params follow the OWASP recommendation for argon2id.
func defaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Upper bounds on the argon2id costs accepted from a stored hash. Anything
// above them is reported as [ErrMalformedHash] before any work is done.
const (
	maxArgon2Memory  = 256 * 1024 // KiB
	maxArgon2Time    = 16
	maxArgon2Threads = 64
	maxArgon2KeyLen  = 64
)

// Option customises a key chain built by [NewKeyChainService].
type Option func(*keyChainService)

// WithScryptParams overrides the cost parameters of a KDF version.
// Intended for tests; changing a released version makes existing
// credentials unreadable.
func WithScryptParams(version int, p ScryptParams) Option {
	return func(k *keyChainService) {
		k.kdfVersions[version] = p
	}
}

// WithArgon2Params overrides the parameters used by HashSecret. Hashes are
// self-describing, so old hashes keep verifying.
func WithArgon2Params(p Argon2Params) Option {
	return func(k *keyChainService) {
		k.argon = p
	}
}
