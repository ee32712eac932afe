package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
)

func main() {
	var (
		fixturePath string
		logLevel    string
		timeout     time.Duration
	)
	flag.StringVar(&fixturePath, "file", "fixtures/catalog.toml", "Fixture file (json, toml or yaml)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(fixturePath, timeout, log); err != nil {
		log.Fatal("Seed failed", zap.Error(err))
	}
}

func run(fixturePath string, timeout time.Duration, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	fixture, err := LoadFixture(fixturePath)
	if err != nil {
		return err
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.IsSQLite() {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	var images ImageUploader
	if cfg.Storage.Enabled {
		store, err := storage.NewS3ImageStore(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return fmt.Errorf("open image store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		images = store
	}

	seeder := NewSeeder(
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormBrandRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		images,
		filepath.Dir(fixturePath),
		log,
	)

	report, err := seeder.Run(ctx, fixture)
	if err != nil {
		return err
	}

	log.Info("Seed complete",
		zap.Int("categories_created", report.CategoriesCreated),
		zap.Int("brands_created", report.BrandsCreated),
		zap.Int("products_created", report.ProductsCreated),
		zap.Int("products_skipped", report.ProductsSkipped),
		zap.Int("images_uploaded", report.ImagesUploaded),
	)
	return nil
}
