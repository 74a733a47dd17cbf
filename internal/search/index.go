// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-journal-keeper/internal/utils"
	"github.com/MKhiriev/go-journal-keeper/models"
)

var ErrNoSession = errors.New("search: session has no search key")

// TermStore is the part of the row store the index needs.
//
// ReplaceForEntry must swap the full digest set of one entry and is called
// inside the transaction that writes the entry itself, so readers never see
// a half-built set. FindEntriesWithAll returns the ids of the user's entries
// that carry every digest, newest first.
type TermStore interface {
	ReplaceForEntry(ctx context.Context, entryID int64, digests [][]byte) error
	FindEntriesWithAll(ctx context.Context, userID int64, digests [][]byte) ([]int64, error)
}

// IndexTerms returns the HMAC-SHA256 digest of every token under searchKey,
// in token order.
func IndexTerms(searchKey []byte, tokens []string) [][]byte {
	if len(tokens) == 0 {
		return nil
	}

	h := utils.NewHasher(searchKey)
	digests := make([][]byte, 0, len(tokens))
	for _, tok := range tokens {
		digests = append(digests, h.Sum([]byte(tok)))
	}
	return digests
}

// RebuildIndex replaces the term rows of an entry with the digests of its
// current title and body.
func RebuildIndex(ctx context.Context, terms TermStore, s *models.Session, entryID int64, title, body string) error {
	if !s.Active() {
		return ErrNoSession
	}

	tokens := Tokenize(title + " " + body)
	if err := terms.ReplaceForEntry(ctx, entryID, IndexTerms(s.SearchKey(), tokens)); err != nil {
		return fmt.Errorf("rebuild index of entry %d: %w", entryID, err)
	}
	return nil
}

// Search returns the ids of the session owner's entries that contain every
// token of query, ordered by id descending. A query without tokens matches
// nothing.
func Search(ctx context.Context, terms TermStore, s *models.Session, query string) ([]int64, error) {
	if !s.Active() {
		return nil, ErrNoSession
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []int64{}, nil
	}

	ids, err := terms.FindEntriesWithAll(ctx, s.UserID, IndexTerms(s.SearchKey(), tokens))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
