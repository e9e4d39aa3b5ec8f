// Package record implements the authoritative record store over Redis hashes.
//
// Rows live at envdex:record:{tenant}:{NAME}. The lexical FT index over these
// hashes is owned by repository/lexical; it stays in sync automatically
// because RediSearch indexes the hashes themselves.
package record

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

// store is the consumer interface for record rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements the record store contract consumed by usecase/registry and
// usecase/search.
type Repo struct {
	store store
}

// New creates a record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// NextID returns the next per-tenant record id from an atomic sequence.
func (r *Repo) NextID(ctx context.Context, tenant string) (int64, error) {
	id, err := r.store.Incr(ctx, seqKey(tenant))
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", tenant, err)
	}
	return id, nil
}

// Upsert writes the record row, replacing any previous row under the same
// (tenant, name) key.
func (r *Repo) Upsert(ctx context.Context, rec *domrec.Record) error {
	key := Key(rec.Tenant(), rec.Name())
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}

// Get returns a record by (tenant, name). Returns domain.ErrRecordNotFound
// when the row does not exist.
func (r *Repo) Get(ctx context.Context, tenant, name string) (domrec.Record, error) {
	key := Key(tenant, name)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record %s: %w", key, err)
	}
	if len(m) == 0 {
		return domrec.Record{}, domain.ErrRecordNotFound
	}
	return parseHashFields(m), nil
}

// GetMulti resolves several records by name in one round-trip, skipping
// names that no longer exist. Order follows the input names.
func (r *Repo) GetMulti(ctx context.Context, tenant string, names []string) ([]domrec.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = Key(tenant, n)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get records for %s: %w", tenant, err)
	}

	recs := make([]domrec.Record, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		recs = append(recs, parseHashFields(m))
	}
	return recs, nil
}

// ListAll returns every record of a tenant in keyspace scan order.
// Used by the lexical fallback scan and by stats aggregation.
func (r *Repo) ListAll(ctx context.Context, tenant string) ([]domrec.Record, error) {
	keys, err := r.store.Scan(ctx, Key(tenant, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan records for %s: %w", tenant, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load records for %s: %w", tenant, err)
	}

	recs := make([]domrec.Record, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		recs = append(recs, parseHashFields(m))
	}
	return recs, nil
}

// SetVectorRef stores the vector handle and indexing timestamp in one write,
// so readers never observe one without the other.
func (r *Repo) SetVectorRef(ctx context.Context, tenant, name, ref string, indexedAt time.Time) error {
	key := Key(tenant, name)
	fields := map[string]string{
		fieldVectorRef: ref,
		fieldIndexedAt: timeField(indexedAt),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("set vector ref %s: %w", key, err)
	}
	return nil
}

// Delete removes the record row. Returns domain.ErrRecordNotFound if absent.
func (r *Repo) Delete(ctx context.Context, tenant, name string) error {
	key := Key(tenant, name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check record %s: %w", key, err)
	}
	if !exists {
		return domain.ErrRecordNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

// Key returns the record row key for a (tenant, name) pair.
func Key(tenant, name string) string {
	return fmt.Sprintf("%srecord:%s:%s", domain.KeyPrefix, tenant, name)
}

func seqKey(tenant string) string {
	return fmt.Sprintf("%sseq:%s", domain.KeyPrefix, tenant)
}
