// Package idempotency deduplicates order submissions by the client-supplied
// Idempotency-Key header, backed by Redis SETNX with a TTL.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) key(key string) string {
	return fmt.Sprintf("idem:orders:%s", key)
}

// Seen records the key and reports whether it was already present.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.key(key), "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Seener is satisfied by Store; split out so the middleware can be
// exercised without a running Redis.
type Seener interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Middleware rejects a request whose Idempotency-Key has been seen before
// with 409. Requests without the header pass through untouched. A Redis
// failure lets the request proceed: duplicate suppression is best-effort,
// losing it must not block order placement.
func Middleware(log *slog.Logger, store Seener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				log.WarnContext(r.Context(), "idempotency check failed, allowing request", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"success":false,"message":"duplicate request: idempotency key already used"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
