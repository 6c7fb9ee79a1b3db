package memory

import "math"

// NoCategory is reported as the most used category of an empty store.
const NoCategory = "none"

// Stats summarizes a store.
type Stats struct {
	Total            int     `json:"total"`
	Categories       int     `json:"categories"`
	Tags             int     `json:"tags"`
	MostUsedCategory string  `json:"mostUsedCategory"`
	AverageUsage     float64 `json:"averageUsage"`
}

func computeStats[R Record[R]](records []R) Stats {
	st := Stats{
		Total:            len(records),
		Categories:       len(distinctSorted(records, func(r R) []string { return []string{r.header().Category} })),
		Tags:             len(distinctSorted(records, func(r R) []string { return r.header().Tags })),
		MostUsedCategory: NoCategory,
	}
	if len(records) == 0 {
		return st
	}

	usage := make(map[string]int)
	total := 0
	for _, r := range records {
		h := r.header()
		usage[h.Category] += h.UsageCount
		total += h.UsageCount
	}
	st.MostUsedCategory = mostUsedCategory(usage)
	st.AverageUsage = round2(float64(total) / float64(len(records)))
	return st
}

// mostUsedCategory picks the category with the highest summed usage; equal
// sums go to the lexicographically smallest name.
func mostUsedCategory(usage map[string]int) string {
	best, bestUsage := NoCategory, -1
	for cat, n := range usage {
		if n > bestUsage || (n == bestUsage && cat < best) {
			best, bestUsage = cat, n
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
