// prefiks-loader ingests the XML product catalog into the search index.
//
// Usage:
//
//	prefiks-loader -catalog data/catalog.xml [-reset]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/torgcloud/prefiks/internal/catalog"
	"github.com/torgcloud/prefiks/internal/config"
	"github.com/torgcloud/prefiks/internal/db"
	dbRedis "github.com/torgcloud/prefiks/internal/db/redis"
	logpkg "github.com/torgcloud/prefiks/internal/logger"
)

const batchSize = 500

func main() {
	catalogPath := flag.String("catalog", "data/catalog.xml", "path to the XML product catalog")
	reset := flag.Bool("reset", false, "drop and recreate the index before loading")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *catalogPath, *reset); err != nil {
		logger.Fatal("Catalog load failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger, catalogPath string, reset bool) error {
	f, err := os.Open(catalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	products, err := catalog.ParseXML(f)
	if err != nil {
		return err
	}
	logger.Info("Parsed catalog",
		zap.String("path", catalogPath),
		zap.Int("products", len(products)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	if err := ensureIndex(ctx, store, cfg.Index, reset, logger); err != nil {
		return err
	}

	return loadProducts(ctx, store, cfg.Index.KeyPrefix, products, logger)
}

// indexDefinition describes the product index schema. Text fields carry
// NOSTEM so prefix matching sees raw terms; query-time weights come
// from the search service, not the schema.
func indexDefinition(cfg config.IndexConfig) *db.IndexDefinition {
	text := func(name string) db.IndexField {
		return db.IndexField{Name: name, Type: db.IndexFieldText, NoStem: true}
	}
	numeric := func(name string) db.IndexField {
		return db.IndexField{Name: name, Type: db.IndexFieldNumeric}
	}
	return &db.IndexDefinition{
		Name:     cfg.Name,
		Prefixes: []string{cfg.KeyPrefix},
		Fields: []db.IndexField{
			text("name"),
			text("brand"),
			text("category"),
			text("keywords"),
			text("description"),
			text("search_text"),
			numeric("volume_l"),
			numeric("weight_g"),
			numeric("count_pcs"),
			numeric("price"),
			numeric("seq"),
		},
	}
}

func ensureIndex(ctx context.Context, store db.Store, cfg config.IndexConfig, reset bool, logger *zap.Logger) error {
	if reset {
		if err := store.DropIndex(ctx, cfg.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index: %w", err)
		}
		keys, err := store.Scan(ctx, cfg.KeyPrefix+"*")
		if err != nil {
			return fmt.Errorf("scan old products: %w", err)
		}
		for _, key := range keys {
			if err := store.Del(ctx, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		logger.Info("Reset index", zap.String("index", cfg.Name), zap.Int("deleted_keys", len(keys)))
	}

	err := store.CreateIndex(ctx, indexDefinition(cfg))
	switch {
	case errors.Is(err, db.ErrIndexExists):
		logger.Info("Index already exists", zap.String("index", cfg.Name))
		return nil
	case err != nil:
		return fmt.Errorf("create index: %w", err)
	}
	logger.Info("Created index", zap.String("index", cfg.Name))
	return nil
}

// loadProducts bulk-writes products in insertion order; seq records
// that order for deterministic ranking tie-breaks.
func loadProducts(ctx context.Context, store db.HashStore, keyPrefix string, products []catalog.Product, logger *zap.Logger) error {
	items := make([]db.HashSetItem, 0, batchSize)
	loaded := 0

	flush := func() error {
		if len(items) == 0 {
			return nil
		}
		if err := store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write batch at %d: %w", loaded, err)
		}
		loaded += len(items)
		items = items[:0]
		return nil
	}

	for seq := range products {
		p := &products[seq]
		items = append(items, db.HashSetItem{
			Key:    keyPrefix + p.ID,
			Fields: p.Fields(seq),
		})
		if len(items) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("Catalog loaded", zap.Int("products", loaded))
	return nil
}
