package search

import (
	"context"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	"github.com/kailas-cloud/envdex/internal/repository/lexical"
	"github.com/kailas-cloud/envdex/internal/repository/vector"
)

// RecordReader resolves record metadata for search hits.
type RecordReader interface {
	GetMulti(ctx context.Context, tenant string, names []string) ([]domrec.Record, error)
	ListAll(ctx context.Context, tenant string) ([]domrec.Record, error)
}

// VectorSearcher runs tenant-scoped KNN queries over the vector index.
type VectorSearcher interface {
	Query(ctx context.Context, tenant string, vec []float32, topK int) ([]vector.Hit, error)
}

// LexicalSearcher runs tenant-scoped token queries over the record index.
type LexicalSearcher interface {
	Search(ctx context.Context, tenant string, tokens []string, f lexical.Filters, topK int) ([]lexical.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
