package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/api"
	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// healthChecker probes the database and search index for the health endpoint.
type healthChecker struct {
	store  *StoreHandle
	search *SearchIndexHandle
}

// CheckHealth implements api.HealthChecker.
func (h *healthChecker) CheckHealth() map[string]api.ComponentHealth {
	components := make(map[string]api.ComponentHealth, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		components["database"] = api.ComponentHealth{Status: "unhealthy", Message: err.Error()}
	} else {
		components["database"] = api.ComponentHealth{Status: "healthy", Latency: time.Since(start).String()}
	}

	start = time.Now()
	if count, err := h.search.DocumentCount(); err != nil {
		components["search"] = api.ComponentHealth{Status: "unhealthy", Message: err.Error()}
	} else {
		components["search"] = api.ComponentHealth{
			Status:  "healthy",
			Latency: time.Since(start).String(),
			Message: fmt.Sprintf("%d documents", count),
		}
	}

	return components
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchIndex := do.MustInvoke[*SearchIndexHandle](i)

	assetService := do.MustInvoke[*service.AssetService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	activityService := do.MustInvoke[*service.ActivityService](i)

	health := &healthChecker{store: storeHandle, search: searchIndex}
	handler := api.NewServer(assetService, searchService, activityService, health, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
