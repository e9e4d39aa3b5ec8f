package record

import (
	"strconv"
	"strings"
	"time"

	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

// Hash field names of a record row. The lexical FT index schema in
// repository/lexical must stay in sync with these.
const (
	fieldID          = "id"
	fieldTenant      = "tenant"
	fieldName        = "name"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldService     = "service"
	fieldRequired    = "required"
	fieldExample     = "example"
	fieldKeywords    = "keywords"
	fieldRelated     = "related"
	fieldVectorRef   = "vector_ref"
	fieldIndexedAt   = "indexed_at"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// listSeparator joins keyword/related lists inside a single hash field.
// Unit separator, not a comma: list entries may contain printable punctuation.
const listSeparator = "\x1f"

// buildHashFields converts a domain record into a flat map[string]string for HSET.
func buildHashFields(rec *domrec.Record) map[string]string {
	m := map[string]string{
		fieldID:          strconv.FormatInt(rec.ID(), 10),
		fieldTenant:      rec.Tenant(),
		fieldName:        rec.Name(),
		fieldDescription: rec.Description(),
		fieldCategory:    string(rec.Category()),
		fieldService:     rec.Service(),
		fieldRequired:    boolField(rec.Required()),
		fieldExample:     rec.Example(),
		fieldKeywords:    strings.Join(rec.Keywords(), listSeparator),
		fieldRelated:     strings.Join(rec.RelatedTo(), listSeparator),
		fieldVectorRef:   rec.VectorRef(),
		// indexed_at is written even when zero: HSET merges into an existing
		// hash, and a re-upserted draft must mask the previous indexing state
		// in the same write that clears vector_ref.
		fieldIndexedAt: timeField(rec.IndexedAt()),
		fieldCreatedAt: timeField(rec.CreatedAt()),
		fieldUpdatedAt: timeField(rec.UpdatedAt()),
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain record.
func parseHashFields(m map[string]string) domrec.Record {
	id, _ := strconv.ParseInt(m[fieldID], 10, 64)
	return domrec.Reconstruct(
		id,
		m[fieldTenant],
		m[fieldName],
		m[fieldDescription],
		domrec.Category(m[fieldCategory]),
		m[fieldService],
		m[fieldRequired] == "1",
		m[fieldExample],
		splitList(m[fieldKeywords]),
		splitList(m[fieldRelated]),
		m[fieldVectorRef],
		parseTimeField(m[fieldIndexedAt]),
		parseTimeField(m[fieldCreatedAt]),
		parseTimeField(m[fieldUpdatedAt]),
	)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func timeField(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTimeField(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
