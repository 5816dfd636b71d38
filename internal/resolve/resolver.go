// Package resolve matches receipt-derived item names against the catalog.
// Extracted text is noisy; the resolver normalizes names, scores similarity
// and applies a confidence contract: exact matches auto-accept, close
// matches auto-accept only when clearly ahead of the runner-up and the
// extracted price is sane, everything else is flagged for manual review.
package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/model"
)

// Confidence contract thresholds.
const (
	// autoAcceptScore is the minimum similarity for auto-acceptance.
	autoAcceptScore = 0.88
	// runnerUpGap is the minimum lead over the second-best candidate.
	runnerUpGap = 0.08
	// priceTolerance is the allowed relative deviation between the
	// extracted price and the catalog price.
	priceTolerance = 0.2
)

// Candidate is one scored match considered during resolution.
type Candidate struct {
	ItemID string
	Name   string
	Score  float64
}

// Resolution is the outcome of matching one extracted line item.
type Resolution struct {
	ItemID        string // empty when nothing matched at all
	OriginalName  string
	CorrectedName string
	Confidence    float64
	NeedsReview   bool
	Candidates    []Candidate // top candidates, best first, for review UIs
}

// Resolver matches extracted names against a fixed catalog snapshot.
type Resolver struct {
	manual     map[string]string // raw extracted name -> item ID
	normalized []normalizedItem
	byID       map[string]model.Item
}

type normalizedItem struct {
	item model.Item
	norm string
}

// NewResolver builds a resolver over the catalog. Manual mappings override
// similarity scoring entirely and may be nil.
func NewResolver(cat *catalog.Catalog, manual map[string]string) *Resolver {
	items := cat.Items()
	r := &Resolver{
		manual:     manual,
		normalized: make([]normalizedItem, 0, len(items)),
		byID:       make(map[string]model.Item, len(items)),
	}
	for _, item := range items {
		r.normalized = append(r.normalized, normalizedItem{item: item, norm: Normalize(item.Name)})
		r.byID[item.ID] = item
	}
	return r
}

// Resolve matches one extracted line item. extractedPrice of 0 skips the
// price sanity check.
func (r *Resolver) Resolve(extractedName string, extractedPrice float64) Resolution {
	res := Resolution{OriginalName: extractedName, NeedsReview: true}

	// Manual mappings take priority over any scoring.
	if id, ok := r.manual[extractedName]; ok {
		if item, found := r.byID[id]; found {
			res.ItemID = item.ID
			res.CorrectedName = item.Name
			res.Confidence = 1.0
			res.NeedsReview = false
			return res
		}
	}

	norm := Normalize(extractedName)

	// Exact normalized match auto-accepts.
	for _, ni := range r.normalized {
		if ni.norm == norm {
			res.ItemID = ni.item.ID
			res.CorrectedName = ni.item.Name
			res.Confidence = 1.0
			res.NeedsReview = false
			return res
		}
	}

	scored := make([]Candidate, 0, len(r.normalized))
	for _, ni := range r.normalized {
		scored = append(scored, Candidate{
			ItemID: ni.item.ID,
			Name:   ni.item.Name,
			Score:  Similarity(norm, ni.norm),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) == 0 {
		return res
	}

	best := scored[0]
	res.ItemID = best.ItemID
	res.CorrectedName = best.Name
	res.Confidence = best.Score
	if len(scored) > 3 {
		res.Candidates = scored[:3]
	} else {
		res.Candidates = scored
	}

	if best.Score >= autoAcceptScore {
		gap := best.Score
		if len(scored) > 1 {
			gap = best.Score - scored[1].Score
		}
		if gap >= runnerUpGap {
			res.NeedsReview = false
		}
	}

	// Auto-accepted matches still need a sane price.
	if !res.NeedsReview && extractedPrice > 0 {
		item := r.byID[best.ItemID]
		if item.Price > 0 {
			diff := item.Price - extractedPrice
			if diff < 0 {
				diff = -diff
			}
			if diff/item.Price > priceTolerance {
				res.NeedsReview = true
			}
		}
	}

	return res
}

// Normalize lowercases a name and strips everything except letters and
// digits, so spacing and punctuation noise in extracted text doesn't defeat
// matching. Hangul passes through untouched.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two normalized names in [0, 1] from their Levenshtein
// distance relative to the longer name.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes edit distance with a two-row dynamic program.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
