package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Brownie44l1/partscan/internal/cache"
	"github.com/Brownie44l1/partscan/internal/config"
	"github.com/Brownie44l1/partscan/internal/handlers"
	"github.com/Brownie44l1/partscan/internal/logging"
	"github.com/Brownie44l1/partscan/internal/model"
	"github.com/Brownie44l1/partscan/internal/server"
	"github.com/Brownie44l1/partscan/internal/store"
)

func main() {
	configPath := flag.String("config", envDefault("PARTSCAN_CONFIG", "config.yaml"), "path to config file")
	flag.Parse()

	// If running from cmd/server, work from the project root.
	if wd, err := os.Getwd(); err == nil && filepath.Base(wd) == "server" {
		if err := os.Chdir(filepath.Join(wd, "../..")); err != nil {
			log.Fatalf("Failed to change to project root: %v", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, level, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("loading model", zap.String("path", cfg.Model.Path))
	classifier, err := model.Load(ctx, model.Options{
		ModelPath:    cfg.Model.Path,
		MetadataPath: cfg.Model.MetadataPath,
		LibraryPath:  cfg.Model.LibraryPath,
		DownloadDir:  cfg.Model.DownloadDir,
		S3Region:     cfg.Model.S3Region,
	}, logger)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer classifier.Close()

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close(db)

	if err := store.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	if cfg.Database.Seed {
		res, err := store.SeedDefaults(ctx, db)
		if err != nil {
			logger.Fatal("failed to seed database", zap.Error(err))
		}
		logger.Info("database seeded",
			zap.Bool("skipped", res.Skipped),
			zap.Int("vendors", res.Vendors),
			zap.Int("products", res.Products))
	}

	predictions, err := cache.New(ctx, cache.Options{
		Backend:       cfg.Cache.Backend,
		Size:          cfg.Cache.Size,
		TTL:           cfg.Cache.TTL,
		RedisAddr:     cfg.Cache.Redis.Addr,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
	})
	if err != nil {
		logger.Fatal("failed to initialize prediction cache", zap.Error(err))
	}
	defer predictions.Close()

	opts := handlers.Options{
		ExposeErrors:  cfg.Server.ExposeErrors,
		MaxUploadSize: cfg.Model.MaxUploadSize,
	}
	router := server.NewRouter(server.Routes{
		Model:   handlers.NewHandler(classifier, predictions, logger, opts),
		Catalog: handlers.NewCatalogHandler(store.NewProductsRepository(db), logger, opts),
		Pages:   handlers.NewPages(cfg.Web.Root, logger),
	}, cfg.Server.AllowedOrigins, logger)

	if _, err := os.Stat(*configPath); err == nil {
		err := config.WatchLogLevel(ctx, *configPath, logger, func(l string) error {
			return level.UnmarshalText([]byte(l))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	srv := server.New(server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, router, logger)

	meta := classifier.Metadata()
	logger.Info("ready",
		zap.String("addr", srv.Addr()),
		zap.Int("classes", len(meta.Classes)),
		zap.Float64("val_acc", meta.ValAcc),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("database", cfg.Database.Driver),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}
	logger.Info("exiting")
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
