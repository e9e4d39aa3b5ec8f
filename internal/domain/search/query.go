// Package search defines the validated search query and the scored result
// produced by the hybrid ranker.
package search

import (
	"fmt"

	"github.com/kailas-cloud/envdex/internal/domain"
	"github.com/kailas-cloud/envdex/internal/domain/record"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length.
	MaxQueryLength = 4096
	// DefaultLimit applies when the caller passes no limit.
	DefaultLimit = 10
	// MaxLimit is the hard cap on returned results.
	MaxLimit = 50
)

// Query is a validated, tenant-scoped search request.
type Query struct {
	tenant       string
	text         string
	category     record.Category
	service      string
	requiredOnly bool
	limit        int
	minScore     float64
}

// NewQuery validates and normalizes search parameters.
// Defaults: limit=10, capped at 50. minScore floors the semantic channel only.
func NewQuery(
	tenant, text string,
	category record.Category,
	service string,
	requiredOnly bool,
	limit int,
	minScore float64,
) (Query, error) {
	if tenant == "" {
		return Query{}, fmt.Errorf("%w: tenant is required", domain.ErrInvalidInput)
	}
	if text == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidInput, MaxQueryLength)
	}
	if category != "" && !category.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}
	if minScore < 0 || minScore > 1 {
		return Query{}, fmt.Errorf("%w: min_score must be between 0 and 1", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Query{
		tenant:       tenant,
		text:         text,
		category:     category,
		service:      service,
		requiredOnly: requiredOnly,
		limit:        limit,
		minScore:     minScore,
	}, nil
}

// Tenant returns the resolved tenant identifier the query is scoped to.
func (q *Query) Tenant() string { return q.tenant }

// Text returns the natural-language query text.
func (q *Query) Text() string { return q.text }

// Category returns the exact-match category filter (empty = no filter).
func (q *Query) Category() record.Category { return q.category }

// Service returns the exact-match service filter (empty = no filter).
func (q *Query) Service() string { return q.service }

// RequiredOnly reports whether only required records should be returned.
func (q *Query) RequiredOnly() bool { return q.requiredOnly }

// Limit returns the maximum number of results.
func (q *Query) Limit() int { return q.limit }

// MinScore returns the semantic-channel score floor, applied before blending.
func (q *Query) MinScore() float64 { return q.minScore }

// Accepts reports whether a record passes the query's metadata filters.
func (q *Query) Accepts(r *record.Record) bool {
	if q.category != "" && r.Category() != q.category {
		return false
	}
	if q.service != "" && r.Service() != q.service {
		return false
	}
	if q.requiredOnly && !r.Required() {
		return false
	}
	return true
}
