package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"dario.cat/mergo"
)

const (
	defaultDSN         = "journal_encrypted.sqlite3"
	defaultLogLevel    = "info"
	defaultLogFile     = "journal.log"
	defaultBackupDir   = "backups"
	defaultBusyTimeout = 5 * time.Second
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

// build merges the collected configs in order, fills the defaults that
// depend on other fields and validates the result.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	config.applyDerivedDefaults()

	return config, config.validate()
}

func (b *configBuilder) with(cfg *StructuredConfig) *configBuilder {
	if cfg != nil {
		b.configs = append(b.configs, cfg)
	}
	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	return b.with(&StructuredConfig{
		Storage: Storage{
			Driver: DriverSQLite,
			DB: DB{
				DSN:         defaultDSN,
				BusyTimeout: defaultBusyTimeout,
			},
		},
		Log: Log{
			Level: defaultLogLevel,
		},
	})
}

// readEnv parses the environment without appending it, so the JSON file
// can be placed below it in priority.
func (b *configBuilder) readEnv() *StructuredConfig {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return nil
	}
	return envCfg
}

func (b *configBuilder) withEnv() *configBuilder {
	return b.with(b.readEnv())
}

func (b *configBuilder) withJSON(path string) *configBuilder {
	if path == "" {
		return b
	}

	jsonCfg, err := parseJSON(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	return b.with(jsonCfg)
}

// applyDerivedDefaults places the backup directory and the log file next to
// the SQLite database and sizes the worker pool.
func (cfg *StructuredConfig) applyDerivedDefaults() {
	base := "."
	if cfg.Storage.IsSQLite() {
		base = filepath.Dir(sqlitePath(cfg.Storage.DB.DSN))
	}

	if cfg.Storage.BackupDir == "" {
		cfg.Storage.BackupDir = filepath.Join(base, defaultBackupDir)
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(base, defaultLogFile)
	}
	if cfg.Workers.KDFConcurrency == 0 {
		cfg.Workers.KDFConcurrency = runtime.NumCPU()
	}
}

// sqlitePath strips the "file:" scheme and query parameters from a SQLite DSN.
func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	return p
}
