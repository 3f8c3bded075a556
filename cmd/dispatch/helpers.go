package main

import (
	"fmt"

	"github.com/opsboard/dispatch/internal/config"
	"github.com/opsboard/dispatch/internal/engine"
	"github.com/opsboard/dispatch/internal/store"
)

// openStore loads configuration and opens the configured database with
// migrations applied.
func openStore() (*store.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, cfg, nil
}

// newEngine builds an Engine from the loaded configuration.
func newEngine(db *store.DB, cfg *config.Config) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithStrictSkills(cfg.Engine.StrictSkills),
	}
	if cfg.Log.DebugPath != "" {
		logger, err := engine.NewDebugLogger(cfg.Log.DebugPath)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		opts = append(opts, engine.WithLogger(logger))
	}
	if cfg.Engine.EventBuffer > 0 {
		opts = append(opts, engine.WithEvents(cfg.Engine.EventBuffer))
	}
	return engine.New(db, opts...), nil
}
