package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
	"github.com/kailas-cloud/envdex/internal/repository/lexical"
	"github.com/kailas-cloud/envdex/internal/repository/vector"
)

// --- Mocks ---

type mockRecords struct {
	records []domrec.Record
	getErr  error
	listErr error
}

func (m *mockRecords) GetMulti(_ context.Context, _ string, names []string) ([]domrec.Record, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	byName := make(map[string]domrec.Record, len(m.records))
	for _, rec := range m.records {
		byName[rec.Name()] = rec
	}
	var out []domrec.Record
	for _, n := range names {
		if rec, ok := byName[n]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRecords) ListAll(_ context.Context, _ string) ([]domrec.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

type mockVectors struct {
	hits []vector.Hit
	err  error
}

func (m *mockVectors) Query(_ context.Context, _ string, _ []float32, _ int) ([]vector.Hit, error) {
	return m.hits, m.err
}

type mockLexical struct {
	hits []lexical.Hit
	err  error

	gotTokens  []string
	gotFilters lexical.Filters
}

func (m *mockLexical) Search(_ context.Context, _ string, tokens []string, f lexical.Filters, _ int) ([]lexical.Hit, error) {
	m.gotTokens = tokens
	m.gotFilters = f
	return m.hits, m.err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

func makeQuery(t *testing.T, text string) domsearch.Query {
	t.Helper()
	q, err := domsearch.NewQuery("t_test", text, "", "", false, 10, 0)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	return q
}

func okEmbedder() *mockEmbedder {
	return &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
}

// --- Search tests ---

func TestSearch_HybridMerge(t *testing.T) {
	rec := makeRecord(t, "DATABASE_URL", domrec.CategoryDatabase, true)
	records := &mockRecords{records: []domrec.Record{rec}}
	vectors := &mockVectors{hits: []vector.Hit{{Name: "DATABASE_URL", Score: 0.9}}}
	lex := &mockLexical{hits: []lexical.Hit{{Name: "DATABASE_URL", Rank: 0}}}

	svc := New(records, vectors, lex, okEmbedder())
	q := makeQuery(t, "database connection")

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].MatchType != domsearch.MatchHybrid {
		t.Errorf("expected hybrid match, got %s", results[0].MatchType)
	}
	if results[0].Score <= 0 {
		t.Errorf("expected positive score, got %f", results[0].Score)
	}
}

func TestSearch_EmbedderDown_LexicalOnly(t *testing.T) {
	rec := makeRecord(t, "STRIPE_KEY", domrec.CategoryPayment, true)
	records := &mockRecords{records: []domrec.Record{rec}}
	vectors := &mockVectors{}
	lex := &mockLexical{hits: []lexical.Hit{{Name: "STRIPE_KEY", Rank: 0}}}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}

	svc := New(records, vectors, lex, embed)
	q := makeQuery(t, "stripe payment")

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("expected degradation, got error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].MatchType != domsearch.MatchKeyword {
		t.Errorf("expected keyword match, got %s", results[0].MatchType)
	}
}

func TestSearch_LexicalIndexDown_SubstringFallback(t *testing.T) {
	rec := makeRecord(t, "REDIS_URL", domrec.CategoryDatabase, false)
	records := &mockRecords{records: []domrec.Record{rec}}
	vectors := &mockVectors{}
	lex := &mockLexical{err: errors.New("index gone")}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}

	svc := New(records, vectors, lex, embed)
	q := makeQuery(t, "redis cache")

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 fallback result, got %d", len(results))
	}
	if results[0].Record.Name() != "REDIS_URL" {
		t.Errorf("expected REDIS_URL, got %s", results[0].Record.Name())
	}
}

func TestSearch_BothChannelsDead_EmptyNoError(t *testing.T) {
	records := &mockRecords{listErr: errors.New("store down")}
	vectors := &mockVectors{err: errors.New("index gone")}
	lex := &mockLexical{err: errors.New("index gone")}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}

	svc := New(records, vectors, lex, embed)
	q := makeQuery(t, "anything")

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("expected nil error on full degradation, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestSearch_MinScoreFiltersSemanticChannel(t *testing.T) {
	strong := makeRecord(t, "STRONG", domrec.CategoryOther, false)
	weak := makeRecord(t, "WEAK", domrec.CategoryOther, false)
	records := &mockRecords{records: []domrec.Record{strong, weak}}
	vectors := &mockVectors{hits: []vector.Hit{
		{Name: "STRONG", Score: 0.9},
		{Name: "WEAK", Score: 0.2},
	}}
	lex := &mockLexical{}

	svc := New(records, vectors, lex, okEmbedder())
	q, err := domsearch.NewQuery("t_test", "query text", "", "", false, 10, 0.5)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result above min score, got %d", len(results))
	}
	if results[0].Record.Name() != "STRONG" {
		t.Errorf("expected STRONG, got %s", results[0].Record.Name())
	}
}

func TestSearch_RequiredOnlyFiltersSemanticChannel(t *testing.T) {
	required := makeRecord(t, "REQUIRED", domrec.CategoryOther, true)
	optional := makeRecord(t, "OPTIONAL", domrec.CategoryOther, false)
	records := &mockRecords{records: []domrec.Record{required, optional}}
	vectors := &mockVectors{hits: []vector.Hit{
		{Name: "OPTIONAL", Score: 0.95},
		{Name: "REQUIRED", Score: 0.9},
	}}
	lex := &mockLexical{}

	svc := New(records, vectors, lex, okEmbedder())
	q, err := domsearch.NewQuery("t_test", "query text", "", "", true, 10, 0)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Record.Name() != "REQUIRED" {
		t.Fatalf("expected only REQUIRED, got %d results", len(results))
	}
}

func TestSearch_PassesFiltersToLexicalQuery(t *testing.T) {
	records := &mockRecords{}
	vectors := &mockVectors{}
	lex := &mockLexical{}

	svc := New(records, vectors, lex, okEmbedder())
	q, err := domsearch.NewQuery("t_test", "postgres database", domrec.CategoryDatabase, "postgres", true, 10, 0)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	if _, err := svc.Search(context.Background(), &q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := lexical.Filters{Category: domrec.CategoryDatabase, Service: "postgres", RequiredOnly: true}
	if lex.gotFilters != want {
		t.Errorf("filters not passed through: got %+v", lex.gotFilters)
	}
	if !reflect.DeepEqual(lex.gotTokens, []string{"postgres", "database"}) {
		t.Errorf("unexpected tokens: %v", lex.gotTokens)
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	names := []string{"A1", "B2", "C3", "D4", "E5"}
	var recs []domrec.Record
	var hits []vector.Hit
	for i, n := range names {
		recs = append(recs, makeRecord(t, n, domrec.CategoryOther, false))
		hits = append(hits, vector.Hit{Name: n, Score: 0.9 - float64(i)*0.1})
	}
	records := &mockRecords{records: recs}
	vectors := &mockVectors{hits: hits}
	lex := &mockLexical{}

	svc := New(records, vectors, lex, okEmbedder())
	q, err := domsearch.NewQuery("t_test", "query text", "", "", false, 3, 0)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	results, err := svc.Search(context.Background(), &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Record.Name() != "A1" {
		t.Errorf("expected best hit first, got %s", results[0].Record.Name())
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"words and punctuation", "postgres: database-url!", []string{"postgres", "database", "url"}},
		{"drops single runes", "a db x key", []string{"db", "key"}},
		{"lowercases", "REDIS Cache", []string{"redis", "cache"}},
		{"empty", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
