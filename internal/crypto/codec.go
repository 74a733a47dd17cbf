package crypto

import (
	"fmt"

	"github.com/MKhiriev/go-journal-keeper/models"
)

type fieldCodec struct{}

// NewFieldCodec returns the AES-256-GCM [FieldCodec].
func NewFieldCodec() FieldCodec {
	return fieldCodec{}
}

func (fieldCodec) EncryptField(key, plaintext, aad []byte) (models.EntryField, error) {
	nonce, ciphertext, err := seal(key, plaintext, aad)
	if err != nil {
		return models.EntryField{}, fmt.Errorf("encrypt field: %w", err)
	}
	return models.EntryField{Nonce: nonce, Ciphertext: ciphertext}, nil
}

func (fieldCodec) DecryptField(key []byte, field models.EntryField, aad []byte) ([]byte, error) {
	return open(key, field.Nonce, field.Ciphertext, aad, ErrDecryptionFailure)
}
