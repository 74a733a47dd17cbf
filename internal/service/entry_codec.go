package service

import (
	"fmt"

	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// sealEntry encrypts title, body and aux under the session key. Each field
// gets its own fresh nonce. An empty aux is not stored.
func sealEntry(codec crypto.FieldCodec, s *models.Session, title, body string, aux *models.AuxPayload) (models.Entry, error) {
	key, aad := s.EncKey(), s.AAD()

	titleField, err := codec.EncryptField(key, []byte(title), aad)
	if err != nil {
		return models.Entry{}, fmt.Errorf("encrypt title: %w", err)
	}
	bodyField, err := codec.EncryptField(key, []byte(body), aad)
	if err != nil {
		return models.Entry{}, fmt.Errorf("encrypt body: %w", err)
	}

	entry := models.Entry{
		UserID: s.UserID,
		Title:  titleField,
		Body:   bodyField,
	}

	if !aux.IsEmpty() {
		auxField, err := codec.EncryptField(key, aux.Data, aad)
		if err != nil {
			return models.Entry{}, fmt.Errorf("encrypt aux: %w", err)
		}
		entry.Aux = &auxField
		entry.AuxFormat = aux.Format
	}

	return entry, nil
}

func openHeader(codec crypto.FieldCodec, s *models.Session, e models.Entry) (models.EntryHeader, error) {
	title, err := codec.DecryptField(s.EncKey(), e.Title, s.AAD())
	if err != nil {
		return models.EntryHeader{}, fmt.Errorf("decrypt title of entry %d: %w", e.ID, err)
	}
	return models.EntryHeader{ID: e.ID, CreatedAt: e.CreatedAt, Title: string(title)}, nil
}

// openEntry decrypts every field of e. Any failure is a DecryptionFailure;
// no partial plaintext is returned.
func openEntry(codec crypto.FieldCodec, s *models.Session, e models.Entry) (models.DecipheredEntry, error) {
	key, aad := s.EncKey(), s.AAD()

	title, err := codec.DecryptField(key, e.Title, aad)
	if err != nil {
		return models.DecipheredEntry{}, fmt.Errorf("decrypt title of entry %d: %w", e.ID, err)
	}
	body, err := codec.DecryptField(key, e.Body, aad)
	if err != nil {
		return models.DecipheredEntry{}, fmt.Errorf("decrypt body of entry %d: %w", e.ID, err)
	}

	out := models.DecipheredEntry{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Title:     string(title),
		Body:      string(body),
	}

	if e.Aux != nil {
		data, err := codec.DecryptField(key, *e.Aux, aad)
		if err != nil {
			return models.DecipheredEntry{}, fmt.Errorf("decrypt aux of entry %d: %w", e.ID, err)
		}
		out.Aux = &models.AuxPayload{Format: e.AuxFormat, Data: data}
	}

	return out, nil
}

// resealEntry decrypts e under from and encrypts it again under to. The
// returned entry keeps id and timestamps of e.
func resealEntry(codec crypto.FieldCodec, from, to *models.Session, e models.Entry) (models.Entry, models.DecipheredEntry, error) {
	plain, err := openEntry(codec, from, e)
	if err != nil {
		return models.Entry{}, models.DecipheredEntry{}, err
	}

	sealed, err := sealEntry(codec, to, plain.Title, plain.Body, plain.Aux)
	if err != nil {
		return models.Entry{}, models.DecipheredEntry{}, err
	}
	sealed.ID = e.ID
	sealed.UserID = e.UserID
	sealed.CreatedAt = e.CreatedAt
	sealed.UpdatedAt = e.UpdatedAt

	return sealed, plain, nil
}
