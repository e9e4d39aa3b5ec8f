package search

import (
	"math"
	"testing"

	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
)

func makeRecord(t *testing.T, name string, category domrec.Category, required bool) domrec.Record {
	t.Helper()
	rec, err := domrec.New("t_test", name, "desc "+name, category, "svc", required, "", nil, nil)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return rec
}

func TestLexicalNorm(t *testing.T) {
	tests := []struct {
		name  string
		rank  int
		total int
		want  float64
	}{
		{"top hit", 0, 5, 1.0},
		{"middle", 2, 5, 0.6},
		{"last of five", 4, 5, 0.2},
		{"below floor", 19, 20, 0.1},
		{"single hit", 0, 1, 1.0},
		{"no hits", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexicalNorm(tt.rank, tt.total)
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("lexicalNorm(%d, %d) = %f, want %f", tt.rank, tt.total, got, tt.want)
			}
		})
	}
}

func TestBlend_Weights(t *testing.T) {
	rec := makeRecord(t, "API_URL", domrec.CategoryInfra, false)

	results := blend(
		[]semanticHit{{rec: rec, score: 0.9}},
		[]lexicalHit{{rec: rec, norm: 1.0}},
		10,
	)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// 0.9*0.6 + 1.0*0.3, no boosts
	want := 0.9*semanticWeight + 1.0*lexicalWeight
	if math.Abs(results[0].Score-want) > 1e-10 {
		t.Errorf("expected score %f, got %f", want, results[0].Score)
	}
}

func TestBlend_Boosts(t *testing.T) {
	plain := makeRecord(t, "PLAIN", domrec.CategoryInfra, false)
	required := makeRecord(t, "REQUIRED", domrec.CategoryInfra, true)
	both := makeRecord(t, "OPENAI_API_KEY", domrec.CategoryAI, true)

	results := blend([]semanticHit{
		{rec: plain, score: 0.5},
		{rec: required, score: 0.5},
		{rec: both, score: 0.5},
	}, nil, 10)

	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.Record.Name()] = r.Score
	}

	base := 0.5 * semanticWeight
	if math.Abs(scores["PLAIN"]-base) > 1e-10 {
		t.Errorf("plain: expected %f, got %f", base, scores["PLAIN"])
	}
	if math.Abs(scores["REQUIRED"]-(base+requiredBoost)) > 1e-10 {
		t.Errorf("required: expected %f, got %f", base+requiredBoost, scores["REQUIRED"])
	}
	if math.Abs(scores["OPENAI_API_KEY"]-(base+requiredBoost+priorityBoost)) > 1e-10 {
		t.Errorf("both boosts: expected %f, got %f", base+requiredBoost+priorityBoost, scores["OPENAI_API_KEY"])
	}
}

func TestBlend_MatchTypes(t *testing.T) {
	semOnly := makeRecord(t, "SEM_ONLY", domrec.CategoryOther, false)
	lexOnly := makeRecord(t, "LEX_ONLY", domrec.CategoryOther, false)
	bothRec := makeRecord(t, "BOTH", domrec.CategoryOther, false)

	results := blend(
		[]semanticHit{{rec: semOnly, score: 0.8}, {rec: bothRec, score: 0.7}},
		[]lexicalHit{{rec: lexOnly, norm: 1.0}, {rec: bothRec, norm: 0.5}},
		10,
	)

	types := make(map[string]domsearch.MatchType, len(results))
	for _, r := range results {
		types[r.Record.Name()] = r.MatchType
	}

	if types["SEM_ONLY"] != domsearch.MatchSemantic {
		t.Errorf("expected semantic, got %s", types["SEM_ONLY"])
	}
	if types["LEX_ONLY"] != domsearch.MatchKeyword {
		t.Errorf("expected keyword, got %s", types["LEX_ONLY"])
	}
	if types["BOTH"] != domsearch.MatchHybrid {
		t.Errorf("expected hybrid, got %s", types["BOTH"])
	}
}

func TestBlend_HybridOutranksSingleChannel(t *testing.T) {
	single := makeRecord(t, "SINGLE", domrec.CategoryOther, false)
	hybrid := makeRecord(t, "HYBRID", domrec.CategoryOther, false)

	results := blend(
		[]semanticHit{{rec: single, score: 0.8}, {rec: hybrid, score: 0.8}},
		[]lexicalHit{{rec: hybrid, norm: 1.0}},
		10,
	)
	if results[0].Record.Name() != "HYBRID" {
		t.Errorf("expected HYBRID first, got %s", results[0].Record.Name())
	}
}

func TestBlend_SortedAndTruncated(t *testing.T) {
	var sem []semanticHit
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		sem = append(sem, semanticHit{rec: makeRecord(t, name, domrec.CategoryOther, false), score: 0.5})
	}
	sem[3].score = 0.9 // D should come first

	results := blend(sem, nil, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Record.Name() != "D" {
		t.Errorf("expected D first, got %s", results[0].Record.Name())
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted at index %d", i)
		}
	}
}

func TestBlend_TiesKeepFirstSeenOrder(t *testing.T) {
	a := makeRecord(t, "A", domrec.CategoryOther, false)
	b := makeRecord(t, "B", domrec.CategoryOther, false)

	results := blend(
		[]semanticHit{{rec: a, score: 0.5}, {rec: b, score: 0.5}},
		nil,
		10,
	)
	if results[0].Record.Name() != "A" || results[1].Record.Name() != "B" {
		t.Errorf("tie broke first-seen order: got %s, %s",
			results[0].Record.Name(), results[1].Record.Name())
	}
}

func TestBlend_Empty(t *testing.T) {
	results := blend(nil, nil, 10)
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}
