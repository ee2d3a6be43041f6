package fpcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartsample/internal/db"
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

type mockExtractor struct {
	fp    fingerprint.Fingerprint
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ []byte) (fingerprint.Fingerprint, error) {
	m.calls++
	return m.fp, m.err
}

// mockKVStore is an in-memory store; fn hooks override single operations.
type mockKVStore struct {
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			delete(m.ttls, k)
			n++
		}
	}
	return n, nil
}

func testFingerprint(t *testing.T) fingerprint.Fingerprint {
	t.Helper()
	fp, err := fingerprint.DefaultLayout().Compose(fingerprint.Features{
		DHash:    []uint64{0xDEADBEEF},
		AHash:    []uint64{0xF0F0},
		Bright:   true,
		Dominant: fingerprint.ColorGreen,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return fp
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"tier", "result"})
}

func newTestCache(t *testing.T, inner *mockExtractor, s store) (*CachedExtractor, *prometheus.CounterVec) {
	t.Helper()
	counter := newCounter()
	c, err := New(inner, fingerprint.DefaultLayout(), s, Config{Size: 16, TTL: time.Hour}, counter, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, counter
}
