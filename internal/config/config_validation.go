// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// An in-memory SQLite database is rejected: backups and the journal itself
// must survive the process.
func (cfg *StructuredConfig) validate() error {
	dsn := cfg.Storage.DB.DSN
	if dsn == "" || strings.Contains(dsn, "memory") {
		return fmt.Errorf("%w: dsn must point to a persistent database", ErrInvalidStorageConfigs)
	}

	switch cfg.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.Driver)
	}

	if cfg.Workers.KDFConcurrency < 0 {
		return ErrInvalidWorkerConfigs
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogConfigs, err)
	}

	return nil
}
