package lexical

import (
	"context"
	"testing"

	"github.com/kailas-cloud/envdex/internal/db"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

func TestBuildQuery_TokensOnly(t *testing.T) {
	got := buildQuery("t_abc", []string{"postgres", "dsn"}, Filters{})
	want := `@tenant:{t_abc} (@name|description|keywords:(postgres|dsn))`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_AllFilters(t *testing.T) {
	got := buildQuery("t_abc", []string{"stripe"}, Filters{
		Category:     domrec.CategoryPayment,
		Service:      "stripe",
		RequiredOnly: true,
	})
	want := `@tenant:{t_abc} @category:{payment} @service:{stripe} @required:[1 1] (@name|description|keywords:(stripe))`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_EscapesTokens(t *testing.T) {
	got := buildQuery("t_abc", []string{"a-b"}, Filters{})
	want := `@tenant:{t_abc} (@name|description|keywords:(a\-b))`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_EscapesServiceTag(t *testing.T) {
	got := buildQuery("t_abc", []string{"mail"}, Filters{Service: "send-grid"})
	want := `@tenant:{t_abc} @service:{send\-grid} (@name|description|keywords:(mail))`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

type fakeStore struct {
	gotQuery  *db.TextQuery
	result    *db.SearchResult
	createErr error
}

func (f *fakeStore) SearchText(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	f.gotQuery = q
	return f.result, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, _ *db.IndexDefinition) error {
	return f.createErr
}

func TestSearch_RanksInNativeOrder(t *testing.T) {
	store := &fakeStore{result: &db.SearchResult{
		Total: 3,
		Entries: []db.SearchEntry{
			{Key: "k1", Fields: map[string]string{"name": "REDIS_URL"}},
			{Key: "k2", Fields: map[string]string{}}, // missing name field, skipped
			{Key: "k3", Fields: map[string]string{"name": "REDIS_PASSWORD"}},
		},
	}}

	hits, err := New(store).Search(context.Background(), "t_abc", []string{"redis"}, Filters{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Name != "REDIS_URL" || hits[0].Rank != 0 {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
	if hits[1].Name != "REDIS_PASSWORD" || hits[1].Rank != 1 {
		t.Errorf("unexpected second hit: %+v", hits[1])
	}
	if store.gotQuery.IndexName != IndexName() {
		t.Errorf("unexpected index: %s", store.gotQuery.IndexName)
	}
	if store.gotQuery.TopK != 10 {
		t.Errorf("unexpected topK: %d", store.gotQuery.TopK)
	}
}

func TestSearch_NoTokensShortCircuits(t *testing.T) {
	store := &fakeStore{}
	hits, err := New(store).Search(context.Background(), "t_abc", nil, Filters{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != nil {
		t.Errorf("expected nil hits, got %v", hits)
	}
	if store.gotQuery != nil {
		t.Error("store must not be queried without tokens")
	}
}

func TestEnsureIndex_ExistsIsNotAnError(t *testing.T) {
	store := &fakeStore{createErr: db.ErrIndexExists}
	if err := New(store).EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
