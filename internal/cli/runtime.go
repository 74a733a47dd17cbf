package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-journal-keeper/internal/config"
	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/service"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
	"github.com/MKhiriev/go-journal-keeper/internal/workers"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// closers releases resources in reverse acquisition order.
type closers []func() error

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i]())
	}
	return errors.Join(errs...)
}

// Open returns the production [Opener]: a file logger, the configured store
// and a running KDF pool behind the services. keyOpts tune the KDF costs.
func Open(buildInfo models.AppBuildInfo, keyOpts ...crypto.Option) Opener {
	return func(ctx context.Context, cfg *config.StructuredConfig) (*service.Services, io.Closer, error) {
		log, logFile, err := logger.NewFileLogger("journal", cfg.Log.File)
		if err != nil {
			return nil, nil, err
		}
		release := closers{logFile.Close}

		if err := log.SetLevel(cfg.Log.Level); err != nil {
			_ = release.Close()
			return nil, nil, err
		}

		storages, err := store.NewStorages(ctx, cfg.Storage, log)
		if err != nil {
			log.Err(err).Msg("error creating storages")
			_ = release.Close()
			return nil, nil, fmt.Errorf("create storage: %w", err)
		}
		release = append(release, storages.Close)

		pool := workers.NewKDFPool(cfg.Workers.KDFConcurrency, log.GetChildLogger())
		bg := workers.NewWorkers(pool)
		bg.Run()
		release = append(release, func() error {
			bg.Stop()
			return nil
		})

		log.Debug().Int("kdf_workers", pool.Size()).Msg("journal opened")
		return service.NewServices(storages, pool, buildInfo, log, keyOpts...), release, nil
	}
}
