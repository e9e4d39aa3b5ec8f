// Package vector implements the vector index over RediSearch.
//
// Vector rows live at envdex:vector:{tenant}:{NAME} with the owning record's
// identity carried explicitly in the hash fields. Every row is tagged with
// its tenant and every KNN query carries a tenant filter: the index is shared
// across tenants, isolation is enforced by the tag alone.
package vector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/envdex/internal/db"
	dbredis "github.com/kailas-cloud/envdex/internal/db/redis"
	"github.com/kailas-cloud/envdex/internal/domain"
)

// deleteBatchSize bounds batch deletes; the index may reject oversized requests.
const deleteBatchSize = 128

const (
	fieldTenant   = "tenant"
	fieldRecord   = "record"
	fieldRecordID = "record_id"
	fieldVector   = "__vector"
)

// Hit is a single KNN neighbor with the record identity from vector metadata.
type Hit struct {
	Name     string
	RecordID int64
	Score    float64 // cosine similarity in [0,1]
}

// store is the consumer interface for vector rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements the vector index contract.
type Repo struct {
	store store
}

// New creates a vector repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the shared vector FT index if missing.
func (r *Repo) EnsureIndex(ctx context.Context, dim, hnswM, hnswEFConstruct int) error {
	def := &db.IndexDefinition{
		Name:     IndexName(),
		Prefixes: []string{domain.KeyPrefix + "vector:"},
		Fields: []db.IndexField{
			{Name: fieldTenant, Type: db.IndexFieldTag},
			{Name: fieldRecord, Type: db.IndexFieldTag},
			{Name: fieldRecordID, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnswM,
				VectorEFConstruct: hnswEFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if err == db.ErrIndexExists {
			return nil
		}
		return fmt.Errorf("create vector index: %w", err)
	}
	return nil
}

// Upsert stores the record's embedding and returns the opaque vector handle.
func (r *Repo) Upsert(ctx context.Context, tenant, name string, recordID int64, vec []float32) (string, error) {
	key := refKey(tenant, name)
	fields := map[string]string{
		fieldTenant:   tenant,
		fieldRecord:   name,
		fieldRecordID: strconv.FormatInt(recordID, 10),
		fieldVector:   dbredis.VectorToBytes(vec),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return "", fmt.Errorf("upsert vector %s: %w", key, err)
	}
	return key, nil
}

// Query returns the topK nearest neighbors within the tenant.
func (r *Repo) Query(ctx context.Context, tenant string, vec []float32, topK int) ([]Hit, error) {
	q := &db.KNNQuery{
		IndexName:    IndexName(),
		Filter:       fmt.Sprintf("@%s:{%s}", fieldTenant, tenant),
		Vector:       vec,
		K:            topK,
		ReturnFields: []string{fieldRecord, fieldRecordID},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn query for %s: %w", tenant, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		name := entry.Fields[fieldRecord]
		if name == "" {
			continue
		}
		id, _ := strconv.ParseInt(entry.Fields[fieldRecordID], 10, 64)
		hits = append(hits, Hit{Name: name, RecordID: id, Score: entry.Score})
	}
	return hits, nil
}

// Delete removes a single vector row by its handle.
func (r *Repo) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := r.store.Del(ctx, ref); err != nil {
		return fmt.Errorf("delete vector %s: %w", ref, err)
	}
	return nil
}

// DeleteBatch removes vector rows in bounded-size batches.
func (r *Repo) DeleteBatch(ctx context.Context, refs []string) error {
	for start := 0; start < len(refs); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(refs))
		if err := r.store.DelMulti(ctx, refs[start:end]); err != nil {
			return fmt.Errorf("delete vector batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// IndexName returns the shared vector FT index name.
func IndexName() string {
	return domain.KeyPrefix + "vectors:idx"
}

func refKey(tenant, name string) string {
	return fmt.Sprintf("%svector:%s:%s", domain.KeyPrefix, tenant, name)
}
