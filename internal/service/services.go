package service

import (
	"github.com/MKhiriev/go-journal-keeper/internal/crypto"
	"github.com/MKhiriev/go-journal-keeper/internal/logger"
	"github.com/MKhiriev/go-journal-keeper/internal/store"
	"github.com/MKhiriev/go-journal-keeper/internal/validators"
	"github.com/MKhiriev/go-journal-keeper/internal/workers"
	"github.com/MKhiriev/go-journal-keeper/models"
)

type Services struct {
	AuthService    AuthService
	JournalService JournalService
	AppInfoService AppInfoService
}

// NewServices wires every service on top of storages. The auth and journal
// services share one UserLocker. keyOpts tune the KDF cost parameters.
func NewServices(storages *store.Storages, pool *workers.KDFPool, buildInfo models.AppBuildInfo, logger *logger.Logger, keyOpts ...crypto.Option) *Services {
	keys := crypto.NewKeyChainService(keyOpts...)
	codec := crypto.NewFieldCodec()
	locker := NewUserLocker()

	return &Services{
		AuthService: NewAuthService(storages.Users, storages.Tx, storages.Backup,
			keys, codec, validators.NewCredentialsValidator(), pool, locker, logger.GetChildLogger()),
		JournalService: NewJournalService(storages.Entries, storages.Terms, storages.Tx,
			codec, locker, logger.GetChildLogger()),
		AppInfoService: NewAppInfoService(buildInfo, logger),
	}
}
