package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/MKhiriev/go-journal-keeper/models"
)

func TestFieldCodec_RoundTrip(t *testing.T) {
	codec := NewFieldCodec()
	key := bytes.Repeat([]byte{0x42}, KeySize)
	aad := []byte("alice")

	for _, msg := range []string{"", "It rained.", "Ünïcödé ☂ body\nwith lines"} {
		field, err := codec.EncryptField(key, []byte(msg), aad)
		if err != nil {
			t.Fatalf("EncryptField(%q) error: %v", msg, err)
		}
		if len(field.Nonce) != NonceSize {
			t.Fatalf("nonce length = %d, want %d", len(field.Nonce), NonceSize)
		}

		got, err := codec.DecryptField(key, field, aad)
		if err != nil {
			t.Fatalf("DecryptField(%q) error: %v", msg, err)
		}
		if string(got) != msg {
			t.Fatalf("round trip = %q, want %q", got, msg)
		}
	}
}

func TestFieldCodec_FreshNonces(t *testing.T) {
	codec := NewFieldCodec()
	key := bytes.Repeat([]byte{0x42}, KeySize)

	seen := make(map[string]struct{})
	for range 64 {
		f, err := codec.EncryptField(key, []byte("same"), []byte("alice"))
		if err != nil {
			t.Fatalf("EncryptField error: %v", err)
		}
		if _, dup := seen[string(f.Nonce)]; dup {
			t.Fatalf("nonce reused")
		}
		seen[string(f.Nonce)] = struct{}{}
	}
}

func TestFieldCodec_FlippedByteFails(t *testing.T) {
	codec := NewFieldCodec()
	key := bytes.Repeat([]byte{0x42}, KeySize)
	aad := []byte("alice")

	field, err := codec.EncryptField(key, []byte("Night Storm"), aad)
	if err != nil {
		t.Fatalf("EncryptField error: %v", err)
	}

	for i := range field.Ciphertext {
		tampered := models.EntryField{Nonce: field.Nonce, Ciphertext: bytes.Clone(field.Ciphertext)}
		tampered.Ciphertext[i] ^= 0x80

		if _, err := codec.DecryptField(key, tampered, aad); !errors.Is(err, ErrDecryptionFailure) {
			t.Fatalf("byte %d: err = %v, want ErrDecryptionFailure", i, err)
		}
	}
}

func TestFieldCodec_UniformFailure(t *testing.T) {
	codec := NewFieldCodec()
	key := bytes.Repeat([]byte{0x42}, KeySize)
	aad := []byte("alice")

	field, _ := codec.EncryptField(key, []byte("secret"), aad)
	wrongKey := bytes.Repeat([]byte{0x43}, KeySize)

	tests := []struct {
		name  string
		key   []byte
		field models.EntryField
		aad   []byte
	}{
		{"wrong key", wrongKey, field, aad},
		{"aad mismatch", key, field, []byte("bob")},
		{"malformed nonce", key, models.EntryField{Nonce: field.Nonce[:4], Ciphertext: field.Ciphertext}, aad},
		{"empty field", key, models.EntryField{}, aad},
		{"bad key length", key[:10], field, aad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.DecryptField(tt.key, tt.field, tt.aad)
			if err != ErrDecryptionFailure {
				t.Fatalf("err = %v, want bare ErrDecryptionFailure", err)
			}
		})
	}
}
