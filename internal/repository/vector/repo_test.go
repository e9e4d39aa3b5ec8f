package vector

import (
	"context"
	"testing"

	"github.com/kailas-cloud/envdex/internal/db"
)

type fakeStore struct {
	hsetKey    string
	hsetFields map[string]string
	delKeys    []string
	delBatches [][]string
	knnQuery   *db.KNNQuery
	knnResult  *db.SearchResult
	createdIdx *db.IndexDefinition
	createErr  error
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hsetKey = key
	f.hsetFields = fields
	return nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	f.delKeys = append(f.delKeys, key)
	return nil
}

func (f *fakeStore) DelMulti(_ context.Context, keys []string) error {
	batch := make([]string, len(keys))
	copy(batch, keys)
	f.delBatches = append(f.delBatches, batch)
	return nil
}

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.knnQuery = q
	return f.knnResult, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	f.createdIdx = def
	return f.createErr
}

func TestUpsert_WritesTaggedRow(t *testing.T) {
	store := &fakeStore{}
	ref, err := New(store).Upsert(context.Background(), "t_abc", "DATABASE_URL", 42, []float32{0.1, 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "envdex:vector:t_abc:DATABASE_URL" {
		t.Errorf("unexpected ref: %q", ref)
	}
	if store.hsetKey != ref {
		t.Errorf("row key %q does not match returned ref %q", store.hsetKey, ref)
	}
	if store.hsetFields[fieldTenant] != "t_abc" {
		t.Errorf("tenant tag missing: %v", store.hsetFields)
	}
	if store.hsetFields[fieldRecord] != "DATABASE_URL" || store.hsetFields[fieldRecordID] != "42" {
		t.Errorf("record identity missing: %v", store.hsetFields)
	}
	if len(store.hsetFields[fieldVector]) != 8 {
		t.Errorf("expected 8 vector bytes, got %d", len(store.hsetFields[fieldVector]))
	}
}

func TestQuery_ScopesToTenant(t *testing.T) {
	store := &fakeStore{knnResult: &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{Key: "v1", Score: 0.9, Fields: map[string]string{fieldRecord: "DATABASE_URL", fieldRecordID: "42"}},
			{Key: "v2", Score: 0.7, Fields: map[string]string{}}, // missing identity, skipped
		},
	}}

	hits, err := New(store).Query(context.Background(), "t_abc", []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.knnQuery.Filter != "@tenant:{t_abc}" {
		t.Errorf("unexpected filter: %q", store.knnQuery.Filter)
	}
	if store.knnQuery.K != 5 {
		t.Errorf("unexpected k: %d", store.knnQuery.K)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Name != "DATABASE_URL" || hits[0].RecordID != 42 || hits[0].Score != 0.9 {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
}

func TestDelete_EmptyRefIsNoop(t *testing.T) {
	store := &fakeStore{}
	if err := New(store).Delete(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.delKeys) != 0 {
		t.Errorf("expected no deletes, got %v", store.delKeys)
	}
}

func TestDeleteBatch_Chunks(t *testing.T) {
	refs := make([]string, deleteBatchSize*2+5)
	for i := range refs {
		refs[i] = "ref"
	}

	store := &fakeStore{}
	if err := New(store).DeleteBatch(context.Background(), refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.delBatches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(store.delBatches))
	}
	if len(store.delBatches[0]) != deleteBatchSize || len(store.delBatches[2]) != 5 {
		t.Errorf("unexpected batch sizes: %d, %d, %d",
			len(store.delBatches[0]), len(store.delBatches[1]), len(store.delBatches[2]))
	}
}

func TestEnsureIndex_SchemaCarriesHNSWParams(t *testing.T) {
	store := &fakeStore{}
	if err := New(store).EnsureIndex(context.Background(), 1536, 32, 400); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var vec *db.IndexField
	for i := range store.createdIdx.Fields {
		if store.createdIdx.Fields[i].Type == db.IndexFieldVector {
			vec = &store.createdIdx.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("vector field missing from schema")
	}
	if vec.VectorDim != 1536 || vec.VectorM != 32 || vec.VectorEFConstruct != 400 {
		t.Errorf("unexpected vector params: %+v", vec)
	}
}

func TestEnsureIndex_ExistsIsNotAnError(t *testing.T) {
	store := &fakeStore{createErr: db.ErrIndexExists}
	if err := New(store).EnsureIndex(context.Background(), 8, 16, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
