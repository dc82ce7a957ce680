package idempotency

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSeener struct {
	seen map[string]bool
	err  error
}

func (f *fakeSeener) Seen(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	was := f.seen[key]
	f.seen[key] = true
	return was, nil
}

func run(t *testing.T, store Seener, key string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})
	mw := Middleware(slog.New(slog.NewTextHandler(io.Discard, nil)), store)

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if key != "" {
		req.Header.Set(Header, key)
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, called
}

func TestFirstRequestPassesThrough(t *testing.T) {
	store := &fakeSeener{seen: map[string]bool{}}
	rec, called := run(t, store, "abc-123")
	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDuplicateKeyIsRejected(t *testing.T) {
	store := &fakeSeener{seen: map[string]bool{"abc-123": true}}
	rec, called := run(t, store, "abc-123")
	assert.False(t, called)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "idempotency key already used")
}

func TestMissingHeaderSkipsDedup(t *testing.T) {
	store := &fakeSeener{seen: map[string]bool{}}
	rec, called := run(t, store, "")
	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, store.seen)
}

func TestStoreFailureAllowsRequest(t *testing.T) {
	store := &fakeSeener{err: errors.New("redis down")}
	rec, called := run(t, store, "abc-123")
	assert.True(t, called, "dedup is best-effort and must not block orders")
	assert.Equal(t, http.StatusCreated, rec.Code)
}
