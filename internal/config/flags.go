package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the configuration flags on fs and returns the config
// they populate once fs is parsed. Pass the result to [Load].
//
// Flags:
//
//	-c, --config       JSON config file path
//	-d, --db           database DSN (SQLite file or PostgreSQL URL)
//	    --driver       database driver: sqlite3 | pgx
//	    --backup-dir   directory for pre-change backups
//	    --busy-timeout SQLite busy timeout (e.g. "5s")
//	    --kdf-workers  concurrent KDF derivations
//	    --log-file     log output file
//	    --log-level    log level
func BindFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&cfg.Storage.DB.DSN, "db", "d", "", "Database DSN")
	fs.StringVar(&cfg.Storage.Driver, "driver", "", "Database driver (sqlite3 | pgx)")
	fs.StringVar(&cfg.Storage.BackupDir, "backup-dir", "", "Backup directory")
	fs.DurationVar(&cfg.Storage.DB.BusyTimeout, "busy-timeout", 0, "SQLite busy timeout (e.g., 5s)")
	fs.IntVar(&cfg.Workers.KDFConcurrency, "kdf-workers", 0, "Concurrent key derivations")
	fs.StringVar(&cfg.Log.File, "log-file", "", "Log file path")
	fs.StringVar(&cfg.Log.Level, "log-level", "", "Log level (debug, info, warn, error)")

	return cfg
}
