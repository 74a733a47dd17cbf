// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/search"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
	"github.com/MKhiriev/go-journal-keeper/models"
)

type journalService struct {
	entries store.EntryRepository
	terms   store.TermRepository
	tx      store.Transactor
	codec   crypto.FieldCodec
	locker  *UserLocker
	logger  *logger.Logger
}

// NewJournalService wires a JournalService. Writers of one user are
// serialised through locker, which must be shared with the AuthService so
// entry writes never interleave with a password change.
func NewJournalService(
	entries store.EntryRepository,
	terms store.TermRepository,
	tx store.Transactor,
	codec crypto.FieldCodec,
	locker *UserLocker,
	log *logger.Logger,
) JournalService {
	if log == nil {
		log = logger.Nop()
	}
	return &journalService{
		entries: entries,
		terms:   terms,
		tx:      tx,
		codec:   codec,
		locker:  locker,
		logger:  log,
	}
}

// AddEntry seals the entry and writes it together with its index terms.
func (j *journalService) AddEntry(ctx context.Context, s *models.Session, title, body string, aux *models.AuxPayload) (int64, error) {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.AddEntry")

	if !s.Active() {
		return 0, ErrInvalidSession
	}

	unlock := j.locker.Lock(s.UserID)
	defer unlock()

	entry, err := sealEntry(j.codec, s, title, body, aux)
	if err != nil {
		log.Err(err).Object("session", s).Msg("error sealing entry")
		return 0, err
	}

	var id int64
	err = j.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Users.LockKeyEpoch(ctx, s.UserID, s.KeyEpoch()); err != nil {
			return err
		}

		var err error
		if id, err = repos.Entries.CreateEntry(ctx, entry); err != nil {
			return err
		}
		return search.RebuildIndex(ctx, repos.Terms, s, id, title, body)
	})
	if err != nil {
		log.Err(err).Object("session", s).Msg("error adding entry")
		return 0, fmt.Errorf("add entry: %w", mapStoreError(err))
	}

	log.Debug().Object("session", s).Int64("entry_id", id).Msg("entry added")
	return id, nil
}

// UpdateEntry reseals title, body and aux with fresh nonces and rebuilds the
// index in the same transaction. With a nil aux the stored payload is
// decrypted and sealed again; an empty one removes it.
func (j *journalService) UpdateEntry(ctx context.Context, s *models.Session, entryID int64, title, body string, aux *models.AuxPayload) error {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.UpdateEntry")

	if !s.Active() {
		return ErrInvalidSession
	}

	unlock := j.locker.Lock(s.UserID)
	defer unlock()

	err := j.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Users.LockKeyEpoch(ctx, s.UserID, s.KeyEpoch()); err != nil {
			return err
		}

		current, err := repos.Entries.GetEntry(ctx, s.UserID, entryID)
		if err != nil {
			return err
		}

		if aux == nil && current.Aux != nil {
			data, err := j.codec.DecryptField(s.EncKey(), *current.Aux, s.AAD())
			if err != nil {
				return fmt.Errorf("decrypt aux of entry %d: %w", entryID, err)
			}
			aux = &models.AuxPayload{Format: current.AuxFormat, Data: data}
		}

		sealed, err := sealEntry(j.codec, s, title, body, aux)
		if err != nil {
			return err
		}
		sealed.ID = current.ID
		sealed.CreatedAt = current.CreatedAt

		if err := repos.Entries.UpdateEntry(ctx, sealed); err != nil {
			return err
		}
		return search.RebuildIndex(ctx, repos.Terms, s, entryID, title, body)
	})
	if err != nil {
		log.Err(err).Object("session", s).Int64("entry_id", entryID).Msg("error updating entry")
		return fmt.Errorf("update entry: %w", mapStoreError(err))
	}

	log.Debug().Object("session", s).Int64("entry_id", entryID).Msg("entry updated")
	return nil
}

// DeleteEntry removes an entry of the session owner and its index terms.
func (j *journalService) DeleteEntry(ctx context.Context, s *models.Session, entryID int64) error {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.DeleteEntry")

	if !s.Active() {
		return ErrInvalidSession
	}

	unlock := j.locker.Lock(s.UserID)
	defer unlock()

	err := j.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Users.LockKeyEpoch(ctx, s.UserID, s.KeyEpoch()); err != nil {
			return err
		}
		// ownership is checked by the scoped delete; terms go only after it
		if err := repos.Entries.DeleteEntry(ctx, s.UserID, entryID); err != nil {
			return err
		}
		return repos.Terms.DeleteForEntry(ctx, entryID)
	})
	if err != nil {
		log.Err(err).Object("session", s).Int64("entry_id", entryID).Msg("error deleting entry")
		return fmt.Errorf("delete entry: %w", mapStoreError(err))
	}

	log.Debug().Object("session", s).Int64("entry_id", entryID).Msg("entry deleted")
	return nil
}

func (j *journalService) ListEntries(ctx context.Context, s *models.Session) ([]models.EntryHeader, error) {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.ListEntries")

	if !s.Active() {
		return nil, ErrInvalidSession
	}

	entries, err := j.entries.ListEntries(ctx, s.UserID)
	if err != nil {
		log.Err(err).Object("session", s).Msg("error listing entries")
		return nil, fmt.Errorf("list entries: %w", mapStoreError(err))
	}

	headers := make([]models.EntryHeader, 0, len(entries))
	for _, e := range entries {
		h, err := openHeader(j.codec, s, e)
		if err != nil {
			log.Err(err).Object("session", s).Int64("entry_id", e.ID).Msg("error decrypting entry title")
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

func (j *journalService) GetEntry(ctx context.Context, s *models.Session, entryID int64) (models.DecipheredEntry, error) {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.GetEntry")

	if !s.Active() {
		return models.DecipheredEntry{}, ErrInvalidSession
	}

	e, err := j.entries.GetEntry(ctx, s.UserID, entryID)
	if err != nil {
		log.Err(err).Object("session", s).Int64("entry_id", entryID).Msg("error loading entry")
		return models.DecipheredEntry{}, fmt.Errorf("get entry: %w", mapStoreError(err))
	}

	plain, err := openEntry(j.codec, s, e)
	if err != nil {
		log.Err(err).Object("session", s).Int64("entry_id", entryID).Msg("error decrypting entry")
		return models.DecipheredEntry{}, err
	}
	return plain, nil
}

func (j *journalService) Search(ctx context.Context, s *models.Session, query string) ([]int64, error) {
	ctx, log := logger.WithOperation(ctx, j.logger, "journal.Search")

	if !s.Active() {
		return nil, ErrInvalidSession
	}

	ids, err := search.Search(ctx, j.terms, s, query)
	if err != nil {
		log.Err(err).Object("session", s).Msg("error searching entries")
		return nil, err
	}

	log.Debug().Object("session", s).Int("hits", len(ids)).Msg("search done")
	return ids, nil
}

func (j *journalService) SearchEntries(ctx context.Context, s *models.Session, query string) ([]models.EntryHeader, error) {
	ids, err := j.Search(ctx, s, query)
	if err != nil {
		return nil, err
	}

	headers := make([]models.EntryHeader, 0, len(ids))
	for _, id := range ids {
		e, err := j.entries.GetEntry(ctx, s.UserID, id)
		if err != nil {
			return nil, fmt.Errorf("get entry: %w", mapStoreError(err))
		}
		h, err := openHeader(j.codec, s, e)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}
