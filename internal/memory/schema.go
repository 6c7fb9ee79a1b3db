package memory

import "strings"

// Field is one weighted text field considered by search.
type Field[R any] struct {
	Name   string
	Weight int
	Values func(r R) []string
}

// Schema describes a record kind: its name, the fields search looks at, and
// an optional ordering applied after score and before usage count.
type Schema[R any] struct {
	Kind   string
	Fields []Field[R]
	Rank   func(a, b R) int
}

// Score sums the weights of every field containing query, case-insensitively.
// A multi-valued field (tags) counts once if any value matches.
func (s Schema[R]) Score(r R, query string) int {
	q := strings.ToLower(query)
	score := 0
	for _, f := range s.Fields {
		for _, v := range f.Values(r) {
			if strings.Contains(strings.ToLower(v), q) {
				score += f.Weight
				break
			}
		}
	}
	return score
}

func text[R any](get func(R) string) func(R) []string {
	return func(r R) []string { return []string{get(r)} }
}

func tagsField[R Record[R]](weight int) Field[R] {
	return Field[R]{Name: "tags", Weight: weight, Values: func(r R) []string { return r.header().Tags }}
}

func categoryField[R Record[R]](weight int) Field[R] {
	return Field[R]{Name: "category", Weight: weight, Values: text(func(r R) string { return r.header().Category })}
}
