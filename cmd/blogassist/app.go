package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/assistant"
	"github.com/xaenox/blog-assistant/internal/blogstore"
	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/storage"
	"github.com/xaenox/blog-assistant/pkg/config"
)

// app holds everything both front-ends share.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     storage.SessionStore
	svc       *assistant.Service
	persister assistant.Persister
}

func newApp(opts *rootOptions) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	logger, err := newLogger(opts.debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err), zap.String("path", opts.configPath))
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", zap.Error(err))
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("Config warning", zap.String("warning", w))
	}

	store, err := openStore(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", zap.Error(err))
		return nil, err
	}

	client, err := newLLM(cfg.OpenAI, opts.mockLLM, logger)
	if err != nil {
		store.Close()
		logger.Error("Failed to initialize llm", zap.Error(err))
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc:    assistant.New(store, client, logger, assistant.Options{LLMTimeout: cfg.Server.LLMTimeout}),
	}

	if cfg.BlogStore.Enabled {
		a.persister, err = openBlogStore(cfg, store, opts.mockLLM, logger)
		if err != nil {
			store.Close()
			logger.Error("Failed to initialize blog store", zap.Error(err))
			return nil, err
		}
	}
	return a, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(db config.DatabaseConfig, logger *zap.Logger) (storage.SessionStore, error) {
	switch db.Driver {
	case config.DriverPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", db.Host), zap.String("dbname", db.DBName))
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			URL:      db.URL,
			Host:     db.Host,
			Port:     db.Port,
			User:     db.User,
			Password: db.Password,
			DBName:   db.DBName,
			SSLMode:  db.SSLMode,
		}, logger)
	case config.DriverSQLite:
		logger.Info("Using SQLite storage", zap.String("path", db.SQLitePath))
		return storage.NewSQLiteStorage(db.SQLitePath, logger)
	default:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}
}

func newLLM(cfg config.OpenAIConfig, mock bool, logger *zap.Logger) (llm.Client, error) {
	if mock {
		logger.Warn("Using demo llm, replies are canned")
		m := llm.NewMock()
		m.Responder = assistant.DemoResponder
		return m, nil
	}
	return llm.NewOpenAI(llm.Settings{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, logger)
}

func openBlogStore(cfg *config.Config, store storage.SessionStore, mock bool, logger *zap.Logger) (assistant.Persister, error) {
	opts := blogstore.Options{DefaultAuthor: cfg.BlogStore.AuthorID}
	if cfg.BlogStore.Embed && !mock {
		embedder, err := blogstore.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		opts.Embedder = embedder
	}

	if pg, ok := store.(*storage.PostgresStorage); ok {
		return blogstore.NewPostgresBlogStore(pg.DB(), opts, logger)
	}
	logger.Warn("Saved blogs are kept in memory only; use the postgres driver to keep them")
	return blogstore.NewMemoryBlogStore(opts, logger), nil
}

// startEviction runs the idle session sweeper until ctx is done.
func (a *app) startEviction(ctx context.Context) {
	storage.StartEviction(ctx, a.store, a.cfg.Server.SessionTTL, a.cfg.Server.EvictionInterval, a.logger)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}
