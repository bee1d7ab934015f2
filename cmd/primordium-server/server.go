package main

import (
	"github.com/primordialab/primordium/internal/catalog"
	"github.com/primordialab/primordium/internal/engine"
)

// engineLoggerAdapter adapts the server's Logger to the engine.Logger interface
type engineLoggerAdapter struct {
	logger *Logger
}

func (a *engineLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *engineLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *engineLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *engineLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server is the HTTP front of the simulation: it owns the world manager,
// the shared notification pipeline, and the discovery catalog.
type Server struct {
	manager            *engine.WorldManager
	globalNotifierMgr  *engine.NotificationManager
	catalog            *catalog.Catalog
	snapshotDir        string
	snapshotEveryTicks int
	tickDT             float64
	logger             *Logger
}

// NewServer creates a new server instance
func NewServer(logger *Logger) *Server {
	engineLogger := &engineLoggerAdapter{logger: logger}
	return &Server{
		manager:           engine.NewWorldManager(),
		globalNotifierMgr: engine.NewNotificationManagerWithLogger(engineLogger),
		tickDT:            defaultTickDT,
		logger:            logger,
	}
}

// SetSnapshotDir sets the snapshot directory for all worlds
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// SetSnapshotEveryTicks sets the snapshot frequency for all worlds
func (s *Server) SetSnapshotEveryTicks(ticks int) {
	s.snapshotEveryTicks = ticks
}

// SetCatalog attaches the discovery catalog and registers it as a notifier
// so stabilization and polymerization events get recorded.
func (s *Server) SetCatalog(cat *catalog.Catalog) error {
	s.catalog = cat
	return s.globalNotifierMgr.RegisterNotifier(catalog.NewNotifier("catalog", cat))
}

// attachWorld wires a freshly created world into the server's shared
// notification pipeline and snapshot settings.
func (s *Server) attachWorld(w *engine.World) {
	w.SetNotificationManager(s.globalNotifierMgr)
	w.SetNotifierIDs(s.globalNotifierMgr.ListNotifiers())
	if s.snapshotDir != "" {
		w.SetSnapshotDir(s.snapshotDir)
	}
	if s.snapshotEveryTicks >= 0 {
		w.SetSnapshotEveryNTicks(s.snapshotEveryTicks)
	}
}

// refreshNotifierIDs re-points every world at the current notifier set.
// Called after notifiers are registered or unregistered.
func (s *Server) refreshNotifierIDs() {
	ids := s.globalNotifierMgr.ListNotifiers()
	for _, wid := range s.manager.ListWorlds() {
		if w, ok := s.manager.GetWorld(wid); ok {
			w.SetNotifierIDs(ids)
		}
	}
}
