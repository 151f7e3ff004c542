package finance

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"domus-server/src/models"
)

const (
	duplicateMaxDays     = 3
	duplicateMaxDistance = 0.4
)

// DuplicatePair is two one-off transactions that probably record the same
// spending, typically entered by two members of the household.
type DuplicatePair struct {
	First      models.Transaction `json:"first"`
	Second     models.Transaction `json:"second"`
	Similarity float64            `json:"similarity"`
}

// FindDuplicates pairs transactions of equal kind and amount dated at most a
// few days apart whose descriptions are close in edit distance. Pairs come out
// most similar first.
func FindDuplicates(txs []models.Transaction) []DuplicatePair {
	sorted := append([]models.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	pairs := []DuplicatePair{}
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if b.Date.Sub(a.Date).Hours()/24 > duplicateMaxDays {
				break
			}
			if a.Kind != b.Kind || !a.Amount.Equal(b.Amount) {
				continue
			}
			if sim := similarity(a.Description, b.Description); sim > 1-duplicateMaxDistance {
				pairs = append(pairs, DuplicatePair{First: a, Second: b, Similarity: sim})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Similarity > pairs[j].Similarity })
	return pairs
}

// similarity is 1 for equal descriptions and 0 for nothing in common, ignoring
// case and surrounding space.
func similarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
