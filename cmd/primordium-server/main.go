package main

import (
	"net/http"
	"os"

	"github.com/primordialab/primordium/internal/catalog"
)

func buildMux(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/worlds", s.handleListWorlds)
	mux.HandleFunc("/world/", s.handleWorldRoutes)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	mux.HandleFunc("/discoveries", s.handleAllDiscoveries)
	mux.HandleFunc("/ws/", s.handleWebSocket)
	return mux
}

func main() {
	cfg := loadServerConfig()

	logger := NewLogger(cfg.LogLevel)
	srv := NewServer(logger)
	srv.SetSnapshotDir(cfg.SnapshotDir)
	srv.SetSnapshotEveryTicks(cfg.SnapshotEveryTicks)

	if cfg.SnapshotDir != "" {
		if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
			logger.Fatalf("cannot create snapshot directory %s: %v", cfg.SnapshotDir, err)
		}
	}

	if cfg.CatalogDB != "" {
		cat, err := catalog.Open(cfg.CatalogDB)
		if err != nil {
			logger.Fatalf("cannot open catalog database %s: %v", cfg.CatalogDB, err)
		}
		defer cat.Close()
		if err := srv.SetCatalog(cat); err != nil {
			logger.Fatalf("cannot register catalog notifier: %v", err)
		}
		logger.Infof("Discovery catalog opened: path=%s", cfg.CatalogDB)
	}

	if err := srv.createStartupWorld(cfg.DefaultWorldID, cfg.LibraryFile); err != nil {
		logger.Fatalf("cannot create startup world: %v", err)
	}

	mux := buildMux(srv)

	logger.Infof("primordium-server listening on %s", cfg.Addr)
	logger.Fatalf("%v", http.ListenAndServe(cfg.Addr, mux))
}
