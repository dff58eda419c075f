package app

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"

	"mpi-core/internal/app/config"
	"mpi-core/internal/auditlog"
	"mpi-core/internal/blocking"
	"mpi-core/internal/eventbus"
	"mpi-core/internal/infrastructure/database"
	"mpi-core/internal/infrastructure/database/mongodb"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/infrastructure/database/redis"
	"mpi-core/internal/matching/matcher"
	"mpi-core/internal/matching/scoring"
	"mpi-core/internal/store"
)

// NewLogger builds the root structured logger, level controlled by LOG_LEVEL.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// NewScorer builds the composite scorer the matcher uses, selected by
// MATCHING_STRATEGY.
func NewScorer(cfg *config.Config) (scoring.Scorer, error) {
	if cfg.Matching.Strategy == "deterministic" {
		return scoring.NewDeterministic(), nil
	}
	return scoring.NewProbabilistic(cfg.Matching.Weights, cfg.Matching.Threshold)
}

// NewAuditWriter adapts Config's query cap onto the Postgres audit writer.
func NewAuditWriter(db *postgres.Client, cfg *config.Config) *auditlog.Writer {
	return auditlog.New(db, cfg.Audit.QueryCap)
}

// NewStore wires the patient aggregate store to its three post-commit
// collaborators: the blocking index, the audit writer, the event bus.
func NewStore(db *postgres.Client, tx *postgres.TransactionManager, cache *redis.Client, idx *blocking.Index, audit *auditlog.Writer, bus *eventbus.Bus, logger *slog.Logger) *store.Store {
	return store.New(db, tx, cache, idx, audit, bus, logger)
}

// NewBlockingIndex binds the configured fuzzy edit distance onto the
// MongoDB-backed index.
func NewBlockingIndex(client *mongodb.Client, cfg *config.Config) *blocking.Index {
	return blocking.New(client, cfg.Blocking.FuzzyEditDistance)
}

// NewMatcher wires the matcher to the blocking index (candidate search) and
// the store (candidate hydration).
func NewMatcher(scorer scoring.Scorer, idx *blocking.Index, st *store.Store, cfg *config.Config, logger *slog.Logger) *matcher.Matcher {
	m := matcher.New(scorer, idx, st, logger)
	m.ResultCap = cfg.Blocking.ResultCap
	return m
}

// RegisterBlockingIndexLifecycle ensures the full-text index exists before
// the core starts serving matches.
func RegisterBlockingIndexLifecycle(lc fx.Lifecycle, idx *blocking.Index) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return idx.EnsureSchema(ctx)
		},
	})
}

var AppModule = fx.Options(
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewPostgresConfig),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewMongoConfig),
	fx.Provide(NewLogger),

	database.Module,

	fx.Provide(NewBlockingIndex),
	fx.Provide(NewAuditWriter),
	fx.Provide(eventbus.New),
	fx.Provide(NewStore),
	fx.Provide(NewScorer),
	fx.Provide(NewMatcher),

	fx.Invoke(RegisterBlockingIndexLifecycle),
)
