package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain"
)

func TestBatchEmbed_AllMisses(t *testing.T) {
	inner := &mockEmbedder{tokens: 5}
	ce, ms := newTestCachedEmbedder(t, inner)

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[1][0] != 2 {
		t.Fatalf("unexpected vectors: %v", res.Embeddings)
	}
	if res.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10", res.TotalTokens)
	}
	if len(ms.data) != 2 {
		t.Errorf("cached %d entries, want 2", len(ms.data))
	}
	for k, ttl := range ms.ttls {
		if ttl != time.Hour {
			t.Errorf("ttl for %s = %v", k, ttl)
		}
	}
}

func TestBatchEmbed_MixedHitsKeepOrder(t *testing.T) {
	inner := &mockEmbedder{tokens: 3}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"bb"}); err != nil {
		t.Fatal(err)
	}

	res, err := ce.BatchEmbed(ctx, []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []float32{1, 2, 3} {
		if res.Embeddings[i][0] != want {
			t.Errorf("Embeddings[%d][0] = %v, want %v", i, res.Embeddings[i][0], want)
		}
	}
	if len(inner.calls) != 2 {
		t.Fatalf("inner calls = %d, want 2", len(inner.calls))
	}
	if got := strings.Join(inner.calls[1], ","); got != "a,ccc" {
		t.Errorf("second call texts = %q, want only misses", got)
	}
	if res.TotalTokens != 6 {
		t.Errorf("TotalTokens = %d, want 6 (misses only)", res.TotalTokens)
	}
}

func TestBatchEmbed_AllHitsSkipInner(t *testing.T) {
	inner := &mockEmbedder{tokens: 1}
	ce, _ := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	_, _ = ce.BatchEmbed(ctx, []string{"x", "y"})
	res, err := ce.BatchEmbed(ctx, []string{"y", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("inner calls = %d, want 1", len(inner.calls))
	}
	if res.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0 on full hit", res.TotalTokens)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	ce, ms := newTestCachedEmbedder(t, inner)

	_, err := ce.BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("nothing should be cached on error")
	}
}

func TestBatchEmbed_StoreFailuresDegradeToMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection reset")
	}

	res, err := ce.BatchEmbed(context.Background(), []string{"abc"})
	if err != nil {
		t.Fatalf("cache failures must not fail the call: %v", err)
	}
	if res.Embeddings[0][0] != 3 {
		t.Errorf("unexpected vector: %v", res.Embeddings[0])
	}
}

func TestBatchEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.data[ce.cacheKey("abc")] = []byte{1, 2, 3}

	if _, err := ce.BatchEmbed(context.Background(), []string{"abc"}); err != nil {
		t.Fatal(err)
	}
	if len(inner.calls) != 1 {
		t.Error("corrupt cache entry should fall through to the provider")
	}
}

func TestCacheKey_ModelScoped(t *testing.T) {
	a := New(nil, nil, "model-a", 0, nil, zap.NewNop())
	b := New(nil, nil, "model-b", 0, nil, zap.NewNop())
	if a.cacheKey("x") == b.cacheKey("x") {
		t.Error("cache keys must differ across models")
	}
	if a.cacheKey("x") != a.cacheKey("x") {
		t.Error("cache key must be deterministic")
	}
	if !strings.HasPrefix(a.cacheKey("x"), cacheKeyPrefix+"model-a:") {
		t.Errorf("key = %q", a.cacheKey("x"))
	}
}

func TestBatchEmbed_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{}
	ms := &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
	ce := New(inner, ms, "m", 0, counter, zap.NewNop())

	ctx := context.Background()
	_, _ = ce.BatchEmbed(ctx, []string{"a", "b"})
	_, _ = ce.BatchEmbed(ctx, []string{"a"})

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
}

func TestVectorCacheBytesRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3}
	got, err := bytesToVector(vectorToCacheBytes(vec))
	if err != nil {
		t.Fatal(err)
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("got[%d] = %v", i, got[i])
		}
	}
	if _, err := bytesToVector([]byte{1}); err == nil {
		t.Error("expected error for truncated data")
	}
}
