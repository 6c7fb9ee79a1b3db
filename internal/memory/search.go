package memory

import (
	"cmp"
	"slices"
)

// Match is a search hit with its relevance score.
type Match[R any] struct {
	Record R
	Score  int
}

// Rank scores records against query and returns the top limit hits. Records
// scoring zero are dropped. Hits are ordered by score, then by the schema's
// Rank, then by usage count, all descending; remaining ties keep the input
// order. Rank never modifies records.
func Rank[R Record[R]](records []R, schema Schema[R], query string, limit int) []Match[R] {
	if limit <= 0 {
		return []Match[R]{}
	}

	matches := make([]Match[R], 0, len(records))
	for _, r := range records {
		if score := schema.Score(r, query); score > 0 {
			matches = append(matches, Match[R]{Record: r, Score: score})
		}
	}

	tie := byRankThenUsage(schema)
	slices.SortStableFunc(matches, func(a, b Match[R]) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return tie(a.Record, b.Record)
	})
	return truncate(matches, limit)
}

func byRankThenUsage[R Record[R]](schema Schema[R]) func(a, b R) int {
	return func(a, b R) int {
		if schema.Rank != nil {
			if c := schema.Rank(a, b); c != 0 {
				return c
			}
		}
		return byUsage(a, b)
	}
}

func byUsage[R Record[R]](a, b R) int {
	return cmp.Compare(b.header().UsageCount, a.header().UsageCount)
}

func byCreated[R Record[R]](a, b R) int {
	return b.header().CreatedAt.Compare(a.header().CreatedAt)
}

func truncate[T any](s []T, limit int) []T {
	if limit <= 0 {
		return s[:0]
	}
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
