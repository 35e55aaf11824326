package match

import (
	"math"
	"sort"

	"github.com/lexdraft/lexdraft/internal/template"
)

// TopK is the number of ranked candidates handed to the judgment oracle.
const TopK = 5

// Candidate pairs a template with its similarity to the query.
type Candidate struct {
	Template   template.Template
	Similarity float64
}

// Rank scores every template that carries an embedding against the query
// vector and returns the top k candidates by descending cosine similarity.
// Ties keep their input order. Templates without a stored embedding are
// excluded rather than scored as zero.
func Rank(query []float32, templates []template.Template, k int) []Candidate {
	if k <= 0 {
		k = TopK
	}
	candidates := make([]Candidate, 0, len(templates))
	for _, tpl := range templates {
		if len(tpl.Embedding) == 0 || len(tpl.Embedding) != len(query) {
			continue
		}
		candidates = append(candidates, Candidate{Template: tpl, Similarity: cosine(query, tpl.Embedding)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
