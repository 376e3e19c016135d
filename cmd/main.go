package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/martinkb/blog/internal/auth"
	"github.com/martinkb/blog/internal/cache"
	"github.com/martinkb/blog/internal/config"
	"github.com/martinkb/blog/internal/core"
	"github.com/martinkb/blog/internal/data"
	"github.com/martinkb/blog/internal/markdown"
	"github.com/martinkb/blog/internal/utils/databaseutils"
)

type application struct {
	config *config.Config
	logger *slog.Logger
	core   *core.Core
	auth   *auth.Auth
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading configuration", "error", err.Error())
		os.Exit(1)
	}

	logger := configLogger(cfg.Debug)
	logger.Info("Starting application...")

	initDB := flag.Bool("init-db", false, "create the database schema and exit")
	dropDB := flag.Bool("drop-db", false, "drop the database schema and exit")
	flag.Parse()

	db, err := openDBConnection(cfg)
	if err != nil {
		logger.Error("Error opening database connection", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err.Error())
			os.Exit(1)
		}
	}()

	logger.Info("Database connection established successfully")

	if *dropDB {
		runSQLFile(db, logger, "scripts/drop_db.sql")
		return
	}
	if *initDB {
		runSQLFile(db, logger, "scripts/create_db.sql")
		return
	}

	sqlTemplate := databaseutils.NewSQLTemplate(db, 3*time.Second)
	session := databaseutils.NewSession(db)
	models := data.NewModels(sqlTemplate, logger)

	authenticator := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	renderer := markdown.NewConverter(logger, cfg.MarkdownURL, cfg.MarkdownTimeout)

	var postCache *cache.Cache
	if cfg.RedisAddr != "" {
		postCache = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer func() {
			if err := postCache.Close(); err != nil {
				logger.Error("Error closing cache connection", "error", err.Error())
			}
		}()
		logger.Info("Post cache enabled", "addr", cfg.RedisAddr)
	}

	app := application{
		config: cfg,
		logger: logger,
		core:   core.NewCore(logger, session, authenticator, models, renderer, postCache),
		auth:   authenticator,
	}

	if err := app.serve(); err != nil {
		logger.Error("Error running server", "error", err.Error())
		os.Exit(1)
	}
}

func configLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     level,
			},
			NewLineAfterLog: false,
		})

	logger := slog.New(handler)
	return logger
}

func openDBConnection(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func runSQLFile(db *sql.DB, logger *slog.Logger, path string) {
	script, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error reading SQL script", "path", path, "error", err.Error())
		os.Exit(1)
	}

	if _, err := db.Exec(string(script)); err != nil {
		logger.Error("Error executing SQL script", "path", path, "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Executed SQL script", "path", path)
}
