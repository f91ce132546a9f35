package privileges

import (
	"sort"
	"strings"
)

// GroupByCategory derives a category → ordered privileges view from the
// current collection. A missing or blank category lands in the distinct
// uncategorized bucket and is never merged with a named category. The
// grouping is computed on demand, never persisted.
func GroupByCategory(privs []Privilege) map[string][]Privilege {
	grouped := make(map[string][]Privilege)
	for _, p := range privs {
		bucket := strings.TrimSpace(p.Category)
		if bucket == "" {
			bucket = UncategorizedBucket
		}
		grouped[bucket] = append(grouped[bucket], p)
	}
	for bucket := range grouped {
		sort.Slice(grouped[bucket], func(i, j int) bool {
			return grouped[bucket][i].Name < grouped[bucket][j].Name
		})
	}
	return grouped
}

// Categories lists the distinct named categories in sorted order. Blank
// categories are excluded: the uncategorized bucket is a grouping artifact,
// not a category.
func Categories(privs []Privilege) []string {
	seen := make(map[string]struct{})
	for _, p := range privs {
		c := strings.TrimSpace(p.Category)
		if c == "" {
			continue
		}
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
