// Package lexical implements token-based search over the record hashes via a
// shared RediSearch index. Every query carries the tenant tag filter; the
// index itself is shared across tenants.
package lexical

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/envdex/internal/db"
	"github.com/kailas-cloud/envdex/internal/domain"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

// Hit is a single lexical match in native relevance order.
type Hit struct {
	Name string
	Rank int // 0-based position in the index's relevance ordering
}

// Filters are the exact-match constraints appended to every lexical query.
type Filters struct {
	Category     domrec.Category
	Service      string
	RequiredOnly bool
}

// store is the consumer interface for lexical search (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements the lexical index contract.
type Repo struct {
	store store
}

// New creates a lexical repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the shared lexical FT index over record hashes if
// missing. The schema mirrors the hash fields written by repository/record.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     IndexName(),
		Prefixes: []string{domain.KeyPrefix + "record:"},
		Fields: []db.IndexField{
			{Name: "tenant", Type: db.IndexFieldTag},
			{Name: "category", Type: db.IndexFieldTag},
			{Name: "service", Type: db.IndexFieldTag},
			{Name: "required", Type: db.IndexFieldNumeric},
			{Name: "name", Type: db.IndexFieldText},
			{Name: "description", Type: db.IndexFieldText},
			{Name: "keywords", Type: db.IndexFieldText},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if err == db.ErrIndexExists {
			return nil
		}
		return fmt.Errorf("create lexical index: %w", err)
	}
	return nil
}

// Search runs a disjunctive token query over name/description/keywords,
// scoped to the tenant, with metadata filters appended. Hits come back in
// the index's native relevance order.
func (r *Repo) Search(ctx context.Context, tenant string, tokens []string, f Filters, topK int) ([]Hit, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	q := &db.TextQuery{
		IndexName:    IndexName(),
		Query:        buildQuery(tenant, tokens, f),
		TopK:         topK,
		ReturnFields: []string{"name"},
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("lexical query for %s: %w", tenant, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		name := entry.Fields["name"]
		if name == "" {
			continue
		}
		hits = append(hits, Hit{Name: name, Rank: len(hits)})
	}
	return hits, nil
}

// IndexName returns the shared lexical FT index name.
func IndexName() string {
	return domain.KeyPrefix + "records:idx"
}

// buildQuery assembles the full FT.SEARCH query string.
func buildQuery(tenant string, tokens []string, f Filters) string {
	parts := []string{tenantClause(tenant)}

	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("@category:{%s}", tagEscaper.Replace(string(f.Category))))
	}
	if f.Service != "" {
		parts = append(parts, fmt.Sprintf("@service:{%s}", tagEscaper.Replace(f.Service)))
	}
	if f.RequiredOnly {
		parts = append(parts, "@required:[1 1]")
	}

	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = queryEscaper.Replace(tok)
	}
	parts = append(parts, fmt.Sprintf("(@name|description|keywords:(%s))", strings.Join(escaped, "|")))

	return strings.Join(parts, " ")
}

func tenantClause(tenant string) string {
	return fmt.Sprintf("@tenant:{%s}", tagEscaper.Replace(tenant))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>",
	"{", "\\{", "}", "\\}", "\"", "\\\"", "'", "\\'",
	":", "\\:", ";", "\\;", "!", "\\!", "@", "\\@",
	"#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)",
	"-", "\\-", "+", "\\+", "=", "\\=", "~", "\\~",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`, `'`, `\'`, `"`, `\"`, `@`, `\@`,
	`{`, `\{`, `}`, `\}`, `(`, `\(`, `)`, `\)`,
	`|`, `\|`, `-`, `\-`, `~`, `\~`, `*`, `\*`,
	`[`, `\[`, `]`, `\]`, `!`, `\!`, `%`, `\%`,
	`^`, `\^`, `$`, `\$`, `<`, `\<`, `>`, `\>`,
	`=`, `\=`, `;`, `\;`, `+`, `\+`,
)
