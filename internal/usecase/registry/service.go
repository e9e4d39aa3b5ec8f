// Package registry implements the record write path: metadata persistence,
// synchronous embedding, vector indexing, and the per-record status
// lifecycle. A write is acknowledged once the metadata lands; indexing
// failures are recorded, never surfaced as write errors.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	"github.com/kailas-cloud/envdex/internal/logger"
)

// Stats aggregates a tenant's records.
type Stats struct {
	Total         int
	ByCategory    map[domrec.Category]int
	ByService     map[string]int
	RequiredCount int
}

// UpsertResult is the write-path acknowledgment: the stored record plus
// whether indexing succeeded in the same call.
type UpsertResult struct {
	Record  domrec.Record
	Created bool
	Indexed bool
}

// Service handles the record registry write path.
type Service struct {
	records  RecordStore
	vectors  VectorStore
	statuses StatusStore
	embed    Embedder
}

// New creates a registry service.
func New(records RecordStore, vectors VectorStore, statuses StatusStore, embed Embedder) *Service {
	return &Service{records: records, vectors: vectors, statuses: statuses, embed: embed}
}

// Upsert stores record metadata and synchronously indexes its embedding.
// Re-inserting under the same (tenant, name) keeps the original id and
// creation time. An embedding or vector-write failure marks the status
// failed and returns Indexed=false; the metadata write still stands.
func (s *Service) Upsert(ctx context.Context, draft domrec.Record) (UpsertResult, error) {
	tenant, name := draft.Tenant(), draft.Name()
	now := time.Now().UTC()

	existing, err := s.records.Get(ctx, tenant, name)
	switch {
	case err == nil:
		draft = draft.WithIdentity(existing.ID(), existing.CreatedAt(), now)
	case errors.Is(err, domain.ErrRecordNotFound):
		id, idErr := s.records.NextID(ctx, tenant)
		if idErr != nil {
			return UpsertResult{}, fmt.Errorf("assign record id: %w", idErr)
		}
		draft = draft.WithIdentity(id, now, now)
	default:
		return UpsertResult{}, fmt.Errorf("load existing record: %w", err)
	}
	created := errors.Is(err, domain.ErrRecordNotFound)

	if err := s.records.Upsert(ctx, &draft); err != nil {
		return UpsertResult{}, fmt.Errorf("store record: %w", err)
	}

	s.setStatus(ctx, tenant, name, domrec.StateProcessing, "", s.priorRetries(ctx, tenant, name))

	rec, indexed := s.index(ctx, draft)
	return UpsertResult{Record: rec, Created: created, Indexed: indexed}, nil
}

// index embeds and stores the record's vector, updating the status row.
// Returns the record (with vector ref on success) and whether it is indexed.
func (s *Service) index(ctx context.Context, rec domrec.Record) (domrec.Record, bool) {
	tenant, name := rec.Tenant(), rec.Name()
	log := logger.FromContext(ctx)

	embResult, err := s.embed.Embed(ctx, rec.EmbedText())
	if err != nil {
		log.Warn("Record embedding failed",
			zap.String("tenant", tenant), zap.String("name", name), zap.Error(err))
		s.markFailed(ctx, tenant, name, err)
		return rec, false
	}

	ref, err := s.vectors.Upsert(ctx, tenant, name, rec.ID(), embResult.Embedding)
	if err != nil {
		log.Warn("Vector write failed",
			zap.String("tenant", tenant), zap.String("name", name), zap.Error(err))
		s.markFailed(ctx, tenant, name, err)
		return rec, false
	}

	indexedAt := time.Now().UTC()
	if err := s.records.SetVectorRef(ctx, tenant, name, ref, indexedAt); err != nil {
		log.Warn("Vector ref update failed",
			zap.String("tenant", tenant), zap.String("name", name), zap.Error(err))
		s.markFailed(ctx, tenant, name, err)
		return rec, false
	}

	s.setStatus(ctx, tenant, name, domrec.StateIndexed, "", 0)
	return rec.WithVectorRef(ref, indexedAt), true
}

// Get returns a record with its indexing status. A missing status row is
// derived from the record itself.
func (s *Service) Get(ctx context.Context, tenant, name string) (domrec.Record, domrec.IndexStatus, error) {
	rec, err := s.records.Get(ctx, tenant, name)
	if err != nil {
		return domrec.Record{}, domrec.IndexStatus{}, fmt.Errorf("get record: %w", err)
	}

	st, err := s.statuses.Get(ctx, tenant, name)
	if err != nil {
		state := domrec.StateQueued
		if rec.VectorRef() != "" {
			state = domrec.StateIndexed
		}
		st = domrec.IndexStatus{Tenant: tenant, Name: name, State: state, UpdatedAt: rec.UpdatedAt()}
	}
	return rec, st, nil
}

// List returns every record of a tenant.
func (s *Service) List(ctx context.Context, tenant string) ([]domrec.Record, error) {
	records, err := s.records.ListAll(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Delete removes a record, its status row, and its vector. The vector delete
// is best-effort: a dangling vector is re-claimed on the next upsert under
// the same name.
func (s *Service) Delete(ctx context.Context, tenant, name string) error {
	rec, err := s.records.Get(ctx, tenant, name)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	if ref := rec.VectorRef(); ref != "" {
		if err := s.vectors.Delete(ctx, ref); err != nil {
			logger.FromContext(ctx).Warn("Vector delete failed",
				zap.String("ref", ref), zap.Error(err))
		}
	}
	if err := s.statuses.Delete(ctx, tenant, name); err != nil {
		logger.FromContext(ctx).Warn("Status delete failed",
			zap.String("tenant", tenant), zap.String("name", name), zap.Error(err))
	}

	if err := s.records.Delete(ctx, tenant, name); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// DeleteAll wipes a tenant's records, statuses, and vectors. Vector keys go
// in bounded batches. Returns the number of records removed.
func (s *Service) DeleteAll(ctx context.Context, tenant string) (int, error) {
	records, err := s.records.ListAll(ctx, tenant)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	var refs []string
	for i := range records {
		if ref := records[i].VectorRef(); ref != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) > 0 {
		if err := s.vectors.DeleteBatch(ctx, refs); err != nil {
			logger.FromContext(ctx).Warn("Batch vector delete failed",
				zap.String("tenant", tenant), zap.Error(err))
		}
	}

	for i := range records {
		name := records[i].Name()
		if err := s.statuses.Delete(ctx, tenant, name); err != nil {
			logger.FromContext(ctx).Warn("Status delete failed",
				zap.String("tenant", tenant), zap.String("name", name), zap.Error(err))
		}
		if err := s.records.Delete(ctx, tenant, name); err != nil {
			return 0, fmt.Errorf("delete record %s: %w", name, err)
		}
	}
	return len(records), nil
}

// Stats aggregates the tenant's records by category, service, and required flag.
func (s *Service) Stats(ctx context.Context, tenant string) (Stats, error) {
	records, err := s.records.ListAll(ctx, tenant)
	if err != nil {
		return Stats{}, fmt.Errorf("list records: %w", err)
	}

	stats := Stats{
		Total:      len(records),
		ByCategory: make(map[domrec.Category]int),
		ByService:  make(map[string]int),
	}
	for i := range records {
		rec := &records[i]
		stats.ByCategory[rec.Category()]++
		if rec.Service() != "" {
			stats.ByService[rec.Service()]++
		}
		if rec.Required() {
			stats.RequiredCount++
		}
	}
	return stats, nil
}

// ReindexFailed re-embeds the tenant's failed records, skipping anything
// already past maxRetries. Returns the number of records recovered.
func (s *Service) ReindexFailed(ctx context.Context, tenant string, maxRetries int) (int, error) {
	failed, err := s.statuses.ListFailed(ctx, tenant)
	if err != nil {
		return 0, fmt.Errorf("list failed statuses: %w", err)
	}

	recovered := 0
	for _, st := range failed {
		if st.Retries > maxRetries {
			continue
		}
		rec, err := s.records.Get(ctx, tenant, st.Name)
		if err != nil {
			logger.FromContext(ctx).Warn("Reindex skipped: record missing",
				zap.String("tenant", tenant), zap.String("name", st.Name), zap.Error(err))
			continue
		}
		if _, indexed := s.index(ctx, rec); indexed {
			recovered++
		}
	}
	return recovered, nil
}

func (s *Service) priorRetries(ctx context.Context, tenant, name string) int {
	st, err := s.statuses.Get(ctx, tenant, name)
	if err != nil {
		return 0
	}
	return st.Retries
}

func (s *Service) markFailed(ctx context.Context, tenant, name string, cause error) {
	s.setStatus(ctx, tenant, name, domrec.StateFailed, cause.Error(), s.priorRetries(ctx, tenant, name)+1)
}

func (s *Service) setStatus(ctx context.Context, tenant, name string, state domrec.IndexState, msg string, retries int) {
	st := domrec.IndexStatus{
		Tenant:    tenant,
		Name:      name,
		State:     state,
		Error:     msg,
		Retries:   retries,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.statuses.Set(ctx, &st); err != nil {
		logger.FromContext(ctx).Warn("Status update failed",
			zap.String("tenant", tenant), zap.String("name", name),
			zap.String("state", string(state)), zap.Error(err))
	}
}
