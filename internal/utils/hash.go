package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"sync"
)

// Hasher computes keyed HMAC-SHA256 digests under one key.
//
// HMAC instances are pooled per Hasher, so hashing many tokens under the
// same key avoids re-running the key schedule for each of them. Every
// Hasher owns its pool; there is no process-wide key.
//
// Example usage:
//
//	h := utils.NewHasher(searchKey)
//	digest := h.Sum([]byte("storm"))
type Hasher struct {
	pool sync.Pool
}

// NewHasher builds a Hasher for key. The key is copied, so the caller may
// wipe its own slice once the Hasher is no longer needed.
func NewHasher(key []byte) *Hasher {
	k := append([]byte(nil), key...)
	h := &Hasher{}
	h.pool.New = func() any {
		return hmac.New(sha256.New, k)
	}
	return h
}

// Sum returns HMAC-SHA256(key, data).
//
// Behavior:
//   - Retrieves a hash.Hash instance from the pool
//   - Resets it, writes the data, computes the sum
//   - Resets again and returns it to the pool
func (h *Hasher) Sum(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write(data)
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return sum
}
