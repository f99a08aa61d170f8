// Package rank orders per-symbol Recommendations by confidence score,
// for a host-side "best opportunities right now" view across the whole
// watchlist. Grounded on the teacher's internal/libs/heap bounded
// max-heap, generalized from its original id/score item to a
// Recommendation wrapper.
package rank

import (
	"github.com/Maryorwahmi/smc-forez/internal/libs/heap"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// Candidate pairs a symbol with the Recommendation the pipeline
// produced for it, so the heap can rank across symbols.
type Candidate struct {
	Symbol string
	Rec    models.Recommendation
}

// ID satisfies heap.Item.
func (c Candidate) ID() string { return c.Symbol + "|" + string(c.Rec.EntryTimeframe) }

// Score satisfies heap.Item: the aggregator's confidence score.
func (c Candidate) Score() float64 { return c.Rec.ConfidenceScore }

// Board keeps the top-N scoring candidates across a watchlist scan.
type Board struct {
	heap *heap.LPHeap
}

// NewBoard returns a Board that retains at most n candidates.
func NewBoard(n int) *Board {
	if n <= 0 {
		n = 10
	}
	return &Board{heap: heap.NewLPHeap(n)}
}

// Add records one symbol's Recommendation. Wait recommendations and
// non-positive scores are ignored by the underlying heap.
func (b *Board) Add(symbol string, rec models.Recommendation) {
	if rec.Action == models.Wait {
		return
	}
	b.heap.Add(Candidate{Symbol: symbol, Rec: rec})
}

// Top returns the retained candidates ordered highest-score first.
func (b *Board) Top() []Candidate {
	items := b.heap.Items()
	out := make([]Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, it.(Candidate))
	}
	sortCandidatesDesc(out)
	return out
}

func sortCandidatesDesc(c []Candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].Score() > c[j-1].Score(); j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}
