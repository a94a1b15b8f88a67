package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/basketwise/basket-cli/internal/catalog"
	"github.com/basketwise/basket-cli/internal/engine"
	"github.com/basketwise/basket-cli/internal/model"
	"github.com/basketwise/basket-cli/internal/narrative"
	"github.com/basketwise/basket-cli/internal/store"
	"github.com/basketwise/basket-cli/pkg/anthropic"
)

// planEnv bundles everything a planning command needs: the loaded catalog,
// the vendor registry, and a configured engine.
type planEnv struct {
	Snapshot *catalog.Snapshot
	Vendors  []model.Vendor
	Engine   *engine.Engine
}

// initPlanEnv validates the weight table and loads the catalog snapshot and
// vendor registry from the configured paths.
func initPlanEnv() (*planEnv, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	snap, err := catalog.LoadSnapshot(cfg.Catalog.ProductsPath, cfg.Catalog.SynonymsPath)
	if err != nil {
		return nil, err
	}

	vendors, err := catalog.LoadVendors(cfg.Catalog.VendorsPath)
	if err != nil {
		return nil, err
	}

	return &planEnv{
		Snapshot: snap,
		Vendors:  vendors,
		Engine:   engine.New(cfg.Weights, cfg.Engine.Concurrency),
	}, nil
}

// openStore opens the configured persistence backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		s, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// newAnnotator returns the configured narrative annotator, or nil when no
// API key is configured. A nil annotator is a no-op downstream.
func newAnnotator() narrative.Annotator {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	client := anthropic.NewClient(cfg.Anthropic.Key)
	return narrative.NewAnthropic(client, narrative.Config{
		Model:          cfg.Anthropic.Model,
		Timeout:        secondsToDuration(cfg.Anthropic.TimeoutSecs),
		RequestsPerSec: cfg.Anthropic.RequestsPerSec,
	})
}

func secondsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
