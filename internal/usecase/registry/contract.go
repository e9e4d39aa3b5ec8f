package registry

import (
	"context"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

// RecordStore is the metadata persistence contract.
type RecordStore interface {
	NextID(ctx context.Context, tenant string) (int64, error)
	Upsert(ctx context.Context, rec *domrec.Record) error
	Get(ctx context.Context, tenant, name string) (domrec.Record, error)
	ListAll(ctx context.Context, tenant string) ([]domrec.Record, error)
	SetVectorRef(ctx context.Context, tenant, name, ref string, indexedAt time.Time) error
	Delete(ctx context.Context, tenant, name string) error
}

// VectorStore is the vector persistence contract.
type VectorStore interface {
	Upsert(ctx context.Context, tenant, name string, recordID int64, vec []float32) (string, error)
	Delete(ctx context.Context, ref string) error
	DeleteBatch(ctx context.Context, refs []string) error
}

// StatusStore tracks the per-record indexing lifecycle.
type StatusStore interface {
	Set(ctx context.Context, st *domrec.IndexStatus) error
	Get(ctx context.Context, tenant, name string) (domrec.IndexStatus, error)
	Delete(ctx context.Context, tenant, name string) error
	ListFailed(ctx context.Context, tenant string) ([]domrec.IndexStatus, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
