// Package search implements hybrid retrieval over the record registry: a
// semantic KNN channel and a lexical token channel run concurrently and their
// contributions are blended with metadata boosts. Search degrades instead of
// failing: a dead channel just contributes nothing.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/envdex/internal/logger"
	"github.com/kailas-cloud/envdex/internal/metrics"

	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
	"github.com/kailas-cloud/envdex/internal/repository/lexical"
)

// candidateFactor oversizes each channel's candidate pool relative to the
// requested limit, so post-filtering still fills the page.
const candidateFactor = 2

// Service handles hybrid record search.
type Service struct {
	records RecordReader
	vectors VectorSearcher
	lexical LexicalSearcher
	embed   Embedder
}

// New creates a search service.
func New(records RecordReader, vectors VectorSearcher, lex LexicalSearcher, embed Embedder) *Service {
	return &Service{records: records, vectors: vectors, lexical: lex, embed: embed}
}

// Search runs both retrieval channels and returns blended results, best
// first. Channel failures degrade to the surviving channel; two dead channels
// yield an empty result set, not an error.
func (s *Service) Search(ctx context.Context, q *domsearch.Query) ([]domsearch.ScoredRecord, error) {
	start := time.Now()

	var (
		wg  sync.WaitGroup
		sem []semanticHit
		lex []lexicalHit
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sem = s.semanticChannel(ctx, q)
	}()
	go func() {
		defer wg.Done()
		lex = s.lexicalChannel(ctx, q)
	}()
	wg.Wait()

	results := blend(sem, lex, q.Limit())

	metrics.SearchRequestDuration.WithLabelValues(searchMode(sem, lex)).Observe(time.Since(start).Seconds())
	return results, nil
}

// semanticChannel embeds the query and resolves KNN hits into filtered,
// similarity-scored records. Any failure empties the channel.
func (s *Service) semanticChannel(ctx context.Context, q *domsearch.Query) []semanticHit {
	log := logger.FromContext(ctx)

	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		metrics.SearchChannelTotal.WithLabelValues("semantic", "error").Inc()
		log.Warn("Semantic channel degraded: embedding failed", zap.Error(err))
		return nil
	}

	hits, err := s.vectors.Query(ctx, q.Tenant(), embResult.Embedding, candidateFactor*q.Limit())
	if err != nil {
		metrics.SearchChannelTotal.WithLabelValues("semantic", "error").Inc()
		log.Warn("Semantic channel degraded: knn query failed", zap.Error(err))
		return nil
	}
	if len(hits) == 0 {
		metrics.SearchChannelTotal.WithLabelValues("semantic", "ok").Inc()
		return nil
	}

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Name
	}
	records, err := s.records.GetMulti(ctx, q.Tenant(), names)
	if err != nil {
		metrics.SearchChannelTotal.WithLabelValues("semantic", "error").Inc()
		log.Warn("Semantic channel degraded: record resolve failed", zap.Error(err))
		return nil
	}

	byName := make(map[string]domrec.Record, len(records))
	for _, rec := range records {
		byName[rec.Name()] = rec
	}

	out := make([]semanticHit, 0, q.Limit())
	for _, h := range hits {
		rec, ok := byName[h.Name]
		if !ok || !q.Accepts(&rec) || h.Score < q.MinScore() {
			continue
		}
		out = append(out, semanticHit{rec: rec, score: h.Score})
		if len(out) == q.Limit() {
			break
		}
	}

	metrics.SearchChannelTotal.WithLabelValues("semantic", "ok").Inc()
	return out
}

// lexicalChannel runs the token query against the text index; if the index
// errors it falls back to a substring scan over the tenant's records. The
// channel never raises.
func (s *Service) lexicalChannel(ctx context.Context, q *domsearch.Query) []lexicalHit {
	log := logger.FromContext(ctx)

	tokens := tokenize(q.Text())
	if len(tokens) == 0 {
		return nil
	}

	filters := lexical.Filters{
		Category:     q.Category(),
		Service:      q.Service(),
		RequiredOnly: q.RequiredOnly(),
	}

	hits, err := s.lexical.Search(ctx, q.Tenant(), tokens, filters, candidateFactor*q.Limit())
	if err != nil {
		metrics.SearchChannelTotal.WithLabelValues("lexical", "fallback").Inc()
		log.Warn("Lexical channel degraded: falling back to substring scan", zap.Error(err))
		return s.scanFallback(ctx, q, tokens)
	}
	if len(hits) == 0 {
		metrics.SearchChannelTotal.WithLabelValues("lexical", "ok").Inc()
		return nil
	}

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.Name
	}
	records, err := s.records.GetMulti(ctx, q.Tenant(), names)
	if err != nil {
		metrics.SearchChannelTotal.WithLabelValues("lexical", "error").Inc()
		log.Warn("Lexical channel degraded: record resolve failed", zap.Error(err))
		return nil
	}

	byName := make(map[string]domrec.Record, len(records))
	for _, rec := range records {
		byName[rec.Name()] = rec
	}

	total := len(hits)
	out := make([]lexicalHit, 0, len(hits))
	for _, h := range hits {
		rec, ok := byName[h.Name]
		if !ok {
			continue
		}
		out = append(out, lexicalHit{rec: rec, norm: lexicalNorm(h.Rank, total)})
	}

	metrics.SearchChannelTotal.WithLabelValues("lexical", "ok").Inc()
	return out
}

// scanFallback is the last line of lexical retrieval: substring containment
// over the tenant's records in scan order. Worst case it returns nothing.
func (s *Service) scanFallback(ctx context.Context, q *domsearch.Query, tokens []string) []lexicalHit {
	records, err := s.records.ListAll(ctx, q.Tenant())
	if err != nil {
		logger.FromContext(ctx).Warn("Substring fallback failed", zap.Error(err))
		return nil
	}

	var matched []domrec.Record
	for i := range records {
		rec := records[i]
		if !q.Accepts(&rec) {
			continue
		}
		if matchesAnyToken(&rec, tokens) {
			matched = append(matched, rec)
			if len(matched) == candidateFactor*q.Limit() {
				break
			}
		}
	}

	total := len(matched)
	out := make([]lexicalHit, 0, total)
	for rank, rec := range matched {
		out = append(out, lexicalHit{rec: rec, norm: lexicalNorm(rank, total)})
	}
	return out
}

// matchesAnyToken checks case-insensitive substring containment against the
// record's searchable text fields.
func matchesAnyToken(rec *domrec.Record, tokens []string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		rec.Name(),
		rec.Description(),
		rec.Service(),
		strings.Join(rec.Keywords(), " "),
	}, " "))

	for _, tok := range tokens {
		if strings.Contains(haystack, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// tokenize splits the query into lowercase word tokens, dropping single-rune
// fragments.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

func searchMode(sem []semanticHit, lex []lexicalHit) string {
	switch {
	case len(sem) > 0 && len(lex) > 0:
		return "hybrid"
	case len(sem) > 0:
		return "semantic"
	default:
		return "keyword"
	}
}
