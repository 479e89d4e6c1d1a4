package main

import (
	"context"
	"fmt"

	"github.com/JustJay7/courtdle-api/internal/api"
	"github.com/JustJay7/courtdle-api/internal/cache"
	"github.com/JustJay7/courtdle-api/internal/completion"
	"github.com/JustJay7/courtdle-api/internal/config"
	"github.com/JustJay7/courtdle-api/internal/database"
	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/internal/oyez"
	"github.com/JustJay7/courtdle-api/internal/quiz"
	"github.com/JustJay7/courtdle-api/internal/storage"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"gorm.io/gorm"
)

// app is the wired set of services shared by the serve and warm commands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *gorm.DB
	cache   *cache.Layered
	batches *database.BatchRepository // nil unless CACHE_BACKEND=sqlite
	quiz    *quiz.Aggregator
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}
	a.cache, a.batches, err = newCache(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	completer, err := completion.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize %s completion client: %w", cfg.CompletionProvider, err)
	}

	client := oyez.NewClient(oyez.Config{
		BaseURL:   cfg.OyezBaseURL,
		Timeout:   cfg.OyezTimeout,
		UserAgent: cfg.OyezUserAgent,
	}, log.With("component", "oyez"))
	source := quiz.SourceFunc(func(id models.CaseID) quiz.CaseRecord {
		return client.Case(id)
	})

	var selector quiz.CaseSelector = quiz.DefaultSelector()
	if cfg.CasesFile != "" {
		selector = quiz.FileSelector{Path: cfg.CasesFile}
	}

	a.quiz = quiz.NewAggregator(source, completer, a.cache,
		quiz.WithSelector(selector),
		quiz.WithConcurrency(cfg.FetchConcurrency),
		quiz.WithVerdictMode(quiz.VerdictMode(cfg.VerdictMode)),
		quiz.WithLogger(log.With("component", "quiz")),
	)

	return a, nil
}

// newCache builds the memory front over the configured persistent backend.
// The batch repository is returned only for CACHE_BACKEND=sqlite.
func newCache(ctx context.Context, cfg *config.Config, db *gorm.DB) (*cache.Layered, *database.BatchRepository, error) {
	var (
		back    cache.BatchCache
		batches *database.BatchRepository
	)
	switch cfg.CacheBackend {
	case "sqlite":
		batches = database.NewBatchRepository(db)
		back = batches
	default:
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize storage: %w", err)
		}
		back = cache.NewFileCache(store, cfg.CacheFile)
	}
	front := cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
	return cache.NewLayered(front, back, cfg.CacheBackend), batches, nil
}

func (a *app) handlers() *api.Handlers {
	return api.NewHandlers(a.quiz, database.NewAnswerLogRepository(a.db), a.cache, a.log)
}
