// Command seed creates the marketplace tables and loads sample vendors and
// products. Running it against a database that already has vendors is a
// no-op.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brownie44l1/partscan/internal/config"
	"github.com/Brownie44l1/partscan/internal/logging"
	"github.com/Brownie44l1/partscan/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	vendorsPath := flag.String("vendors", "", "vendors CSV (defaults to bundled sample data)")
	productsPath := flag.String("products", "", "products CSV (defaults to bundled sample data)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, _, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close(db)

	if err := store.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database tables created")

	ctx := context.Background()
	var res store.SeedResult
	if *vendorsPath == "" && *productsPath == "" {
		res, err = store.SeedDefaults(ctx, db)
	} else {
		res, err = seedFromFiles(ctx, db, *vendorsPath, *productsPath)
	}
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	if res.Skipped {
		logger.Info("sample data already exists")
		return
	}
	logger.Info("sample data added", zap.Int("vendors", res.Vendors), zap.Int("products", res.Products))
}

func seedFromFiles(ctx context.Context, db *gorm.DB, vendorsPath, productsPath string) (store.SeedResult, error) {
	vendors, err := os.ReadFile(vendorsPath)
	if err != nil {
		return store.SeedResult{}, err
	}
	products, err := os.ReadFile(productsPath)
	if err != nil {
		return store.SeedResult{}, err
	}
	return store.Seed(ctx, db, vendors, products)
}
