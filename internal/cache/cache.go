package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"medrag/internal/models"
	"medrag/internal/util"
)

const DefaultTTL = 1800 * time.Second

var ErrNotFound = errors.New("cache entry not found")

// Store is a raw key/value backend. Get reports ok=false for absent or expired keys.
type Store interface {
	Get(ctx context.Context, hash string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, hash, query string, payload []byte, expiresAt time.Time) error
}

// QueryHash is the cache key: hex MD5 of the trimmed, lower-cased query.
func QueryHash(query string) string {
	return util.MD5Hex([]byte(strings.ToLower(strings.TrimSpace(query))))
}

type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager accepts a nil store, which turns every lookup into a miss and
// every write into a failure.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Entry returns the stored entry or ErrNotFound.
func (m *Manager) Entry(ctx context.Context, hash string) (models.CacheEntry, error) {
	if m.store == nil {
		return models.CacheEntry{}, ErrNotFound
	}
	payload, ok, err := m.store.Get(ctx, hash)
	if err != nil {
		return models.CacheEntry{}, err
	}
	if !ok {
		return models.CacheEntry{}, ErrNotFound
	}
	entry, err := Decode(payload)
	if err != nil {
		return models.CacheEntry{}, err
	}
	if entry.Expired(m.now()) {
		return models.CacheEntry{}, ErrNotFound
	}
	return entry, nil
}

// Lookup returns the cached envelope with its answer text re-cleaned. Errors
// are logged and reported as a miss.
func (m *Manager) Lookup(ctx context.Context, hash string) (models.AnswerEnvelope, bool) {
	entry, err := m.Entry(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.WarnContext(ctx, "cache lookup failed", "error", err)
		}
		return models.AnswerEnvelope{}, false
	}
	env := entry.Response
	env.GeneratedResponse = util.CleanResponseForFrontend(env.GeneratedResponse)
	return env, true
}

// Store writes a fresh entry, replacing any previous one for hash.
func (m *Manager) Store(ctx context.Context, hash, query string, env models.AnswerEnvelope) bool {
	if m.store == nil {
		return false
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	payload, err := Encode(models.CacheEntry{
		QueryHash: hash,
		Query:     query,
		Response:  env,
		Timestamp: now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "error", err)
		return false
	}
	if err := m.store.Set(ctx, hash, query, payload, expiresAt); err != nil {
		slog.WarnContext(ctx, "cache write failed", "error", err)
		return false
	}
	return true
}
