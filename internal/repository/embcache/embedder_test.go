package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/envdex/internal/db"
	"github.com/kailas-cloud/envdex/internal/domain"
)

type fakeKV struct {
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

type countingEmbedder struct {
	calls  int
	result domain.EmbeddingResult
}

func (e *countingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	e.calls++
	return e.result, nil
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &countingEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.5, -1.25},
		TotalTokens: 7,
	}}
	c := New(inner, newFakeKV(), nil, zap.NewNop())

	first, err := c.Embed(context.Background(), "DATABASE URL. Primary Postgres DSN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss must report real token usage, got %d", first.TotalTokens)
	}

	second, err := c.Embed(context.Background(), "DATABASE URL. Primary Postgres DSN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("hit must not call the inner embedder, got %d calls", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit must report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 2 || second.Embedding[0] != 0.5 || second.Embedding[1] != -1.25 {
		t.Errorf("cached vector mismatch: %v", second.Embedding)
	}
}

func TestEmbed_DistinctTextsDistinctKeys(t *testing.T) {
	inner := &countingEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	c := New(inner, newFakeKV(), nil, zap.NewNop())

	if _, err := c.Embed(context.Background(), "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Embed(context.Background(), "two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestEmbed_CorruptCacheEntryFallsThrough(t *testing.T) {
	inner := &countingEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	kv := newFakeKV()
	c := New(inner, kv, nil, zap.NewNop())

	// Pre-poison the cache slot with a length not divisible by 4.
	kv.data[c.cacheKey("text")] = []byte{1, 2, 3}

	res, err := c.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must fall through to the inner embedder")
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected embedding: %v", res.Embedding)
	}
}
