// Package record defines the environment-variable record entity and its
// per-record indexing lifecycle.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
)

// MaxNameLength bounds the record name (the business key).
const MaxNameLength = 256

// Record is a named environment-variable description owned by exactly one tenant.
// (tenant, name) is the business key: re-insertion under the same pair is an upsert.
type Record struct {
	id          int64
	tenant      string
	name        string
	description string
	category    Category
	service     string
	required    bool
	example     string
	keywords    []string
	relatedTo   []string
	vectorRef   string
	indexedAt   time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// New validates and creates a record. The id is zero until the store assigns one.
func New(
	tenant, name, description string,
	category Category,
	service string,
	required bool,
	example string,
	keywords, relatedTo []string,
) (Record, error) {
	if tenant == "" {
		return Record{}, fmt.Errorf("%w: tenant is required", domain.ErrInvalidInput)
	}
	if name == "" {
		return Record{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if len(name) > MaxNameLength {
		return Record{}, fmt.Errorf("%w: name too long (max %d)", domain.ErrInvalidInput, MaxNameLength)
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return Record{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}

	return Record{
		tenant:      tenant,
		name:        name,
		description: description,
		category:    category,
		service:     service,
		required:    required,
		example:     example,
		keywords:    keywords,
		relatedTo:   relatedTo,
	}, nil
}

// Reconstruct rebuilds a record from storage without validation.
func Reconstruct(
	id int64,
	tenant, name, description string,
	category Category,
	service string,
	required bool,
	example string,
	keywords, relatedTo []string,
	vectorRef string,
	indexedAt, createdAt, updatedAt time.Time,
) Record {
	return Record{
		id: id, tenant: tenant, name: name, description: description,
		category: category, service: service, required: required,
		example: example, keywords: keywords, relatedTo: relatedTo,
		vectorRef: vectorRef, indexedAt: indexedAt,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the store-assigned numeric identifier (unique per tenant).
func (r *Record) ID() int64 { return r.id }

// Tenant returns the owning tenant identifier.
func (r *Record) Tenant() string { return r.tenant }

// Name returns the variable name (business key within the tenant).
func (r *Record) Name() string { return r.name }

// Description returns the human-readable description.
func (r *Record) Description() string { return r.description }

// Category returns the domain category.
func (r *Record) Category() Category { return r.category }

// Service returns the free-text provider name.
func (r *Record) Service() string { return r.service }

// Required reports whether the variable is required.
func (r *Record) Required() bool { return r.required }

// Example returns the example value, stored as-is.
func (r *Record) Example() string { return r.example }

// Keywords returns the keyword set.
func (r *Record) Keywords() []string { return r.keywords }

// RelatedTo returns soft references to other record names.
func (r *Record) RelatedTo() []string { return r.relatedTo }

// VectorRef returns the opaque vector-index handle, empty until indexing succeeds.
func (r *Record) VectorRef() string { return r.vectorRef }

// IndexedAt returns when the vector was last stored. Set together with VectorRef.
func (r *Record) IndexedAt() time.Time { return r.indexedAt }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-write timestamp.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// WithIdentity returns a copy carrying the assigned id and timestamps.
func (r Record) WithIdentity(id int64, createdAt, updatedAt time.Time) Record {
	r.id = id
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r
}

// WithVectorRef returns a copy carrying the vector handle and indexing timestamp.
// Both are set together: readers never observe a partial state.
func (r Record) WithVectorRef(ref string, indexedAt time.Time) Record {
	r.vectorRef = ref
	r.indexedAt = indexedAt
	return r
}

// EmbedText builds the enriched blob that gets embedded instead of the raw
// name: underscores become spaces and the descriptive fields are appended so
// semantic recall does not hinge on variable naming conventions.
func (r *Record) EmbedText() string {
	parts := make([]string, 0, 5)
	parts = append(parts, strings.ReplaceAll(r.name, "_", " "))
	if r.description != "" {
		parts = append(parts, r.description)
	}
	parts = append(parts, string(r.category))
	if r.service != "" {
		parts = append(parts, r.service)
	}
	if len(r.keywords) > 0 {
		parts = append(parts, strings.Join(r.keywords, " "))
	}
	return strings.Join(parts, ". ")
}
