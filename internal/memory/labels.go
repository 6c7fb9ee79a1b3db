package memory

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterLabels keeps the labels (categories, tags or keys) matching a
// doublestar glob such as "dev/**" or "k8s-*". An empty pattern keeps all.
func FilterLabels(labels []string, pattern string) ([]string, error) {
	if pattern == "" {
		return labels, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("memory: invalid label pattern %q", pattern)
	}

	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if ok, _ := doublestar.Match(pattern, l); ok {
			out = append(out, l)
		}
	}
	return out, nil
}
