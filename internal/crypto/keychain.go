// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/scrypt"
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	kdfVersions    map[int]ScryptParams
	currentVersion int
	argon          Argon2Params
}

// NewKeyChainService constructs a [KeyChainService] deriving KEKs with
// scrypt ([KDFv1]) and hashing secrets with argon2id using the OWASP
// parameters (1 iteration, 64 MiB, 4 threads).
func NewKeyChainService(opts ...Option) KeyChainService {
	k := &keyChainService{
		kdfVersions:    defaultKDFVersions(),
		currentVersion: KDFv1,
		argon:          defaultArgon2Params(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateKEKSalt implements [KeyChainService].
func (k *keyChainService) GenerateKEKSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// GenerateDEK implements [KeyChainService].
func (k *keyChainService) GenerateDEK() ([]byte, error) {
	return randomBytes(KeySize)
}

// CurrentKDFVersion implements [KeyChainService].
func (k *keyChainService) CurrentKDFVersion() int {
	return k.currentVersion
}

// DeriveKEK implements [KeyChainService]. The KEK exists only in memory and
// is wiped by the caller once the DEK is wrapped or unwrapped.
func (k *keyChainService) DeriveKEK(password string, salt []byte, version int) ([]byte, error) {
	p, ok := k.kdfVersions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKDFVersion, version)
	}

	kek, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive kek: %w", err)
	}
	return kek, nil
}

// WrapDEK implements [KeyChainService]. The KEK never encrypts the DEK
// directly: a wrap key is expanded from it first.
func (k *keyChainService) WrapDEK(kek, dek, aad []byte) ([]byte, []byte, error) {
	wrapKey, err := expand(kek, labelWrapKey)
	if err != nil {
		return nil, nil, err
	}
	defer Wipe(wrapKey)

	nonce, ciphertext, err := seal(wrapKey, dek, aad)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap dek: %w", err)
	}
	return nonce, ciphertext, nil
}

// UnwrapDEK implements [KeyChainService].
func (k *keyChainService) UnwrapDEK(kek, nonce, ciphertext, aad []byte) ([]byte, error) {
	wrapKey, err := expand(kek, labelWrapKey)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	defer Wipe(wrapKey)

	return open(wrapKey, nonce, ciphertext, aad, ErrAuthenticationFailure)
}

// DeriveSessionKeys implements [KeyChainService].
func (k *keyChainService) DeriveSessionKeys(dek []byte) ([]byte, []byte, error) {
	encKey, err := expand(dek, labelEncKey)
	if err != nil {
		return nil, nil, err
	}
	searchKey, err := expand(dek, labelSearchKey)
	if err != nil {
		Wipe(encKey)
		return nil, nil, err
	}
	return encKey, searchKey, nil
}

// expand derives a KeySize subkey of secret bound to label.
func expand(secret []byte, label string) ([]byte, error) {
	if len(secret) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeyLength, len(secret), KeySize)
	}

	out := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(label))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand %q: %w", label, err)
	}
	return out, nil
}
