// Package status persists the per-record indexing state rows.
package status

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

const (
	fieldState     = "state"
	fieldError     = "error"
	fieldRetries   = "retries"
	fieldUpdatedAt = "updated_at"
)

// store is the consumer interface for status rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the indexing-status contract.
type Repo struct {
	store store
}

// New creates a status repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Set replaces the status row for (tenant, name).
func (r *Repo) Set(ctx context.Context, st *domrec.IndexStatus) error {
	key := statusKey(st.Tenant, st.Name)
	fields := map[string]string{
		fieldState:     string(st.State),
		fieldError:     st.Error,
		fieldRetries:   strconv.Itoa(st.Retries),
		fieldUpdatedAt: strconv.FormatInt(st.UpdatedAt.UnixMilli(), 10),
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("set status %s: %w", key, err)
	}
	return nil
}

// Get returns the status row, or ErrRecordNotFound when absent.
func (r *Repo) Get(ctx context.Context, tenant, name string) (domrec.IndexStatus, error) {
	key := statusKey(tenant, name)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.IndexStatus{}, fmt.Errorf("get status %s: %w", key, err)
	}
	if len(m) == 0 {
		return domrec.IndexStatus{}, domain.ErrRecordNotFound
	}
	return parseStatus(tenant, name, m), nil
}

// Delete removes the status row. Deleting a missing row is not an error.
func (r *Repo) Delete(ctx context.Context, tenant, name string) error {
	key := statusKey(tenant, name)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete status %s: %w", key, err)
	}
	return nil
}

// ListFailed returns the failed status rows of a tenant, for the reindex sweep.
func (r *Repo) ListFailed(ctx context.Context, tenant string) ([]domrec.IndexStatus, error) {
	prefix := statusKey(tenant, "")
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan statuses for %s: %w", tenant, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load statuses for %s: %w", tenant, err)
	}

	var failed []domrec.IndexStatus
	for i, m := range maps {
		if m[fieldState] != string(domrec.StateFailed) {
			continue
		}
		name := keys[i][len(prefix):]
		failed = append(failed, parseStatus(tenant, name, m))
	}
	return failed, nil
}

func parseStatus(tenant, name string, m map[string]string) domrec.IndexStatus {
	retries, _ := strconv.Atoi(m[fieldRetries])
	ms, _ := strconv.ParseInt(m[fieldUpdatedAt], 10, 64)
	return domrec.IndexStatus{
		Tenant:    tenant,
		Name:      name,
		State:     domrec.IndexState(m[fieldState]),
		Error:     m[fieldError],
		Retries:   retries,
		UpdatedAt: time.UnixMilli(ms),
	}
}

func statusKey(tenant, name string) string {
	return fmt.Sprintf("%sstatus:%s:%s", domain.KeyPrefix, tenant, name)
}
