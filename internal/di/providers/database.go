package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store/sqlite"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Storage.BasePath, "mediavault.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideTaxonomy provides the taxonomy service with the controlled
// vocabulary seeded and loaded into its first snapshot.
func ProvideTaxonomy(i do.Injector) (*taxonomy.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	tax := taxonomy.NewService(storeHandle.Store, log)
	if err := tax.Seed(context.Background()); err != nil {
		return nil, err
	}

	return tax, nil
}
