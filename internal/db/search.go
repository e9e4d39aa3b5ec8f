package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       string // FT.SEARCH pre-filter clause, e.g. "@tenant:{t_ab12}"
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for relevance-ranked text search.
type TextQuery struct {
	IndexName    string
	Query        string // full FT.SEARCH query including filters
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
