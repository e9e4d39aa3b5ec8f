package search

import "github.com/kailas-cloud/envdex/internal/domain/record"

// MatchType tags which channels contributed to a result. Observability only;
// it plays no part in ranking.
type MatchType string

const (
	// MatchSemantic means only the embedding channel contributed.
	MatchSemantic MatchType = "semantic"
	// MatchKeyword means only the lexical channel contributed.
	MatchKeyword MatchType = "keyword"
	// MatchHybrid means both channels contributed.
	MatchHybrid MatchType = "hybrid"
)

// ScoredRecord is a single ranked search hit.
type ScoredRecord struct {
	Record    record.Record
	Score     float64
	MatchType MatchType
}
