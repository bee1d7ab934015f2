package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/primordialab/primordium/internal/engine"
)

// defaultTickDT is the simulated time per tick, in seconds.
const defaultTickDT = 1.0 / 30.0

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr               string
	DefaultWorldID     string
	LibraryFile        string
	SnapshotDir        string
	SnapshotEveryTicks int
	CatalogDB          string
	LogLevel           string
}

// configResolver describes one configuration value: where it may come from
// and how it lands in ServerConfig. Precedence is flag, then environment
// variable, then default.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// resolve picks the effective value given the parsed flag value.
func (r configResolver) resolve(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(r.envVarName); env != "" {
		return env
	}
	return r.defaultVal
}

// loadServerConfig assembles the server configuration from CLI flags and
// environment variables. New options only need a new resolver entry.
func loadServerConfig() ServerConfig {
	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "PRIMORDIUM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "world-id",
			envVarName:  "PRIMORDIUM_WORLD_ID",
			defaultVal:  "default",
			description: "ID of the world created at startup",
			setter:      func(c *ServerConfig, v string) { c.DefaultWorldID = v },
		},
		{
			flagName:    "library-file",
			envVarName:  "PRIMORDIUM_LIBRARY_FILE",
			defaultVal:  "",
			description: "optional path to a JSON chemistry library (elements + templates) for the startup world",
			setter:      func(c *ServerConfig, v string) { c.LibraryFile = v },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "PRIMORDIUM_SNAPSHOT_DIR",
			defaultVal:  "./data",
			description: "Directory where world snapshots are stored",
			setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
		},
		{
			flagName:    "snapshot-every-ticks",
			envVarName:  "PRIMORDIUM_SNAPSHOT_EVERY_TICKS",
			defaultVal:  "1000",
			description: "How often to write snapshots (in number of ticks); 0 disables periodic snapshots",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil {
					c.SnapshotEveryTicks = val
				} else {
					log.Printf("Invalid value for snapshot-every-ticks: %s, using default 1000", v)
					c.SnapshotEveryTicks = 1000
				}
			},
		},
		{
			flagName:    "catalog-db",
			envVarName:  "PRIMORDIUM_CATALOG_DB",
			defaultVal:  "./data/catalog.db",
			description: "Path to the SQLite discovery catalog; empty disables the catalog",
			setter:      func(c *ServerConfig, v string) { c.CatalogDB = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "PRIMORDIUM_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	flagVals := make([]*string, len(resolvers))
	for i, r := range resolvers {
		flagVals[i] = flag.String(r.flagName, "", r.description)
	}
	flag.Parse()

	var cfg ServerConfig
	for i, r := range resolvers {
		r.setter(&cfg, r.resolve(*flagVals[i]))
	}
	return cfg
}

// createStartupWorld builds the world the server starts with, loading a
// chemistry library from file when one is configured and falling back to
// the built-in defaults otherwise.
func (s *Server) createStartupWorld(worldID string, libraryFile string) error {
	cfg := engine.DefaultConfig()
	cfg.Logger = &engineLoggerAdapter{logger: s.logger}

	if libraryFile != "" {
		elements, templates, err := engine.LoadLibraryFile(libraryFile)
		if err != nil {
			return err
		}
		cfg.Elements = elements
		cfg.Templates = templates
		s.logger.Infof("Chemistry library loaded: file=%s", libraryFile)
	}

	w, err := s.manager.CreateWorld(engine.WorldID(worldID), cfg)
	if err != nil {
		return err
	}
	s.attachWorld(w)
	s.logger.Infof("World created: world_id=%s", worldID)
	return nil
}
