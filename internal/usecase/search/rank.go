package search

import (
	"sort"

	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
)

// Channel weights and metadata boosts. Boosts are additive and capped at
// requiredBoost+priorityBoost.
const (
	semanticWeight = 0.6
	lexicalWeight  = 0.3

	requiredBoost = 0.05
	priorityBoost = 0.05

	// lexicalFloor keeps the tail of the lexical ranking from vanishing.
	lexicalFloor = 0.1
)

// priorityCategory gets the category boost.
const priorityCategory = domrec.CategoryAI

type semanticHit struct {
	rec   domrec.Record
	score float64 // cosine similarity, [0, 1]
}

type lexicalHit struct {
	rec  domrec.Record
	norm float64 // rank-normalized, [lexicalFloor, 1]
}

// lexicalNorm converts a 0-based rank among total hits into a relevance
// weight: the top hit gets 1, later hits decay linearly down to the floor.
func lexicalNorm(rank, total int) float64 {
	if total == 0 {
		return 0
	}
	norm := 1 - float64(rank)/float64(total)
	if norm < lexicalFloor {
		return lexicalFloor
	}
	return norm
}

// blend joins the two channels by record name, applies weights and boosts,
// and returns the top results in descending score order. Ties keep
// first-seen order: semantic hits before lexical-only hits.
func blend(sem []semanticHit, lex []lexicalHit, limit int) []domsearch.ScoredRecord {
	type entry struct {
		rec      domrec.Record
		semantic float64
		lexical  float64
	}

	var (
		order   []string
		entries = make(map[string]*entry)
	)

	for _, h := range sem {
		name := h.rec.Name()
		if _, ok := entries[name]; ok {
			continue
		}
		entries[name] = &entry{rec: h.rec, semantic: h.score}
		order = append(order, name)
	}
	for _, h := range lex {
		name := h.rec.Name()
		if e, ok := entries[name]; ok {
			e.lexical = h.norm
			continue
		}
		entries[name] = &entry{rec: h.rec, lexical: h.norm}
		order = append(order, name)
	}

	results := make([]domsearch.ScoredRecord, 0, len(order))
	for _, name := range order {
		e := entries[name]
		score := e.semantic*semanticWeight + e.lexical*lexicalWeight + boost(&e.rec)
		results = append(results, domsearch.ScoredRecord{
			Record:    e.rec,
			Score:     score,
			MatchType: matchType(e.semantic, e.lexical),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func boost(rec *domrec.Record) float64 {
	var b float64
	if rec.Required() {
		b += requiredBoost
	}
	if rec.Category() == priorityCategory {
		b += priorityBoost
	}
	return b
}

func matchType(semantic, lexical float64) domsearch.MatchType {
	switch {
	case semantic > 0 && lexical > 0:
		return domsearch.MatchHybrid
	case semantic > 0:
		return domsearch.MatchSemantic
	default:
		return domsearch.MatchKeyword
	}
}
