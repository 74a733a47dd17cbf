// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"sync"
	"testing"
)

func TestHasher_MatchesHMAC(t *testing.T) {
	key := []byte("search-key-0123456789abcdef01234")
	h := NewHasher(key)

	data := []byte("storm")

	sum1 := h.Sum(data)
	sum2 := h.Sum(data)

	if len(sum1) != sha256.Size {
		t.Fatalf("digest length = %d, want %d", len(sum1), sha256.Size)
	}
	if !bytes.Equal(sum1, sum2) {
		t.Fatal("hash must be deterministic for the same input")
	}

	// verify against direct HMAC computation
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	expected := mac.Sum(nil)

	if !bytes.Equal(sum1, expected) {
		t.Fatalf("unexpected hash value\nwant: %x\ngot:  %x", expected, sum1)
	}
}

func TestHasher_KeysAreIndependent(t *testing.T) {
	a := NewHasher([]byte("key-a"))
	b := NewHasher([]byte("key-b"))

	if bytes.Equal(a.Sum([]byte("rain")), b.Sum([]byte("rain"))) {
		t.Fatal("different keys must produce different digests")
	}
}

func TestHasher_CopiesKey(t *testing.T) {
	key := []byte("mutable-key")
	h := NewHasher(key)
	before := h.Sum([]byte("x"))

	clear(key)

	if !bytes.Equal(before, h.Sum([]byte("x"))) {
		t.Fatal("wiping the caller's key must not affect the hasher")
	}
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := NewHasher([]byte("concurrent"))
	want := h.Sum([]byte("token"))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if !bytes.Equal(h.Sum([]byte("token")), want) {
					t.Error("digest mismatch under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()
}
