package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		embedded       bool
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.BoolVar(&embedded, "embedded", false, "Use the migrations compiled into the binary")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

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

	migrationsPath = resolveMigrationsPath(migrationsPath)
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
		zap.Bool("embedded", embedded),
	)

	// create and list work on the directory only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		names, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(names) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.IsSQLite() {
		log.Fatal("Versioned migrations target PostgreSQL; SQLite schemas are created by the server on start")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if embedded {
		m, err = migration.NewFromFS(db, migrations.FS, log)
	} else {
		m, err = migration.New(db, migrationsPath, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, convErr := strconv.Atoi(argAt(args, 1, log, "Step count required. Usage: migrate steps <n>"))
		if convErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = m.Steps(n)
	case "goto":
		v, convErr := strconv.ParseUint(argAt(args, 1, log, "Version required. Usage: migrate goto <version>"), 10, 32)
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.GoTo(uint(v))
	case "force":
		v, convErr := strconv.Atoi(argAt(args, 1, log, "Version required. Usage: migrate force <version>"))
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version, the schema is not changed")
		err = m.Force(v)
	case "version":
		status, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to get version", zap.Error(verr))
		}
		if status.Version == 0 {
			log.Info("No migrations applied")
			return
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)
		return
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func argAt(args []string, i int, log *zap.Logger, usage string) string {
	if len(args) <= i {
		log.Fatal(usage)
	}
	return args[i]
}

// resolveMigrationsPath finds the migrations directory relative to the
// working directory or the executable
func resolveMigrationsPath(path string) string {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func printUsage() {
	fmt.Println(`Storefront Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Set the recorded version without running SQL
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -embedded             Use the migrations compiled into the binary
  -log-level string     Log level (default: info)

Environment:
  STORE_DATABASE_HOST, STORE_DATABASE_PORT, STORE_DATABASE_USER,
  STORE_DATABASE_PASSWORD, STORE_DATABASE_DBNAME, STORE_DATABASE_SSLMODE`)
}
