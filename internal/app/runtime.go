// Package app assembles the search pipeline from configuration. The API
// server and the operator CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"medrag/internal/cache"
	"medrag/internal/config"
	"medrag/internal/metrics"
	"medrag/internal/providers"
	"medrag/internal/rag"
	"medrag/internal/storage"
	"medrag/internal/synth"
)

const (
	CacheBackendPostgres = "postgres"
	CacheBackendBadger   = "badger"
	CacheBackendRedis    = "redis"

	MetricsSinkPostgres = "postgres"
	MetricsSinkLog      = "log"
	MetricsSinkNone     = "none"
)

// PurgeableStore is a cache store that can drop all of its entries.
type PurgeableStore interface {
	cache.Store
	Purge(ctx context.Context) error
}

type Runtime struct {
	Config    config.Config
	DB        *storage.DB
	Cache     *cache.Manager
	Store     PurgeableStore
	Service   *rag.Service
	Documents *storage.DocumentRepo
	Chunks    *storage.ChunkRepo
	Provider  string

	closers []func()
}

// Open connects to postgres and builds the full pipeline.
func Open(ctx context.Context, cfg config.Config) (*Runtime, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		Config:    cfg,
		DB:        db,
		Documents: storage.NewDocumentRepo(db),
		Chunks:    storage.NewChunkRepo(db),
	}
	rt.closers = append(rt.closers, db.Close)

	store, closeStore, err := OpenCacheStore(ctx, cfg, db)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, closeStore)
	rt.Store = store
	rt.Cache = cache.NewManager(store, cfg.CacheTTL())

	synthesizer, provider, err := NewSynthesizer(cfg, storage.NewLLMAuditRepo(db))
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Provider = provider

	emitter := metrics.NewEmitter(NewMetricsSink(cfg, db), cfg.MetricsNamespace)
	rt.Service = rag.NewService(storage.NewCorpusRepo(db), rt.Cache, synthesizer, emitter, rag.Options{
		PageSize: cfg.CorpusPageSize,
		MaxItems: cfg.CorpusMaxItems,
		TopK:     cfg.SearchTopK,
	})
	slog.InfoContext(ctx, "pipeline ready",
		"cache_backend", cfg.CacheBackend,
		"metrics_sink", cfg.MetricsSink,
		"llm_provider", provider,
	)
	return rt, nil
}

// NewSynthesizer binds the first credentialed provider. Without one the
// synthesizer gets no provider at all and every answer is structured; the
// returned name is then "none".
func NewSynthesizer(cfg config.Config, auditor synth.Auditor) (*synth.Synthesizer, string, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, "", err
	}
	llm, ref, ok := pm.Primary()
	if !ok {
		slog.Warn("no LLM credential configured, answers use the structured fallback", "providers", cfg.LLMProviders)
		return synth.New(nil, synth.WithAuditor(auditor)), "none", nil
	}
	return synth.New(llm, synth.WithAuditor(auditor)), ref.Name, nil
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// OpenCacheStore selects the cache backend named by cfg.CacheBackend.
func OpenCacheStore(ctx context.Context, cfg config.Config, db *storage.DB) (PurgeableStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "", CacheBackendPostgres:
		if db == nil {
			return nil, nil, fmt.Errorf("postgres cache backend requires a database")
		}
		return storage.NewCacheRepo(db), func() {}, nil
	case CacheBackendBadger:
		store, err := cache.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("close badger cache", "error", err)
			}
		}, nil
	case CacheBackendRedis:
		client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisStore(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// NewMetricsSink returns nil for "none", which the emitter treats as discard.
func NewMetricsSink(cfg config.Config, db *storage.DB) metrics.Sink {
	switch strings.ToLower(strings.TrimSpace(cfg.MetricsSink)) {
	case MetricsSinkNone:
		return nil
	case MetricsSinkLog:
		return metrics.LogSink{Logger: slog.Default()}
	default:
		if db == nil {
			return metrics.LogSink{Logger: slog.Default()}
		}
		return storage.NewMetricsRepo(db)
	}
}
