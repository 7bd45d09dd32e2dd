package bill

import (
	"regexp"

	"github.com/fairsplit/fairsplit/internal/models"
)

// suffixPattern matches the " (n)" disambiguation suffix that quantity
// expansion appends to display names.
var suffixPattern = regexp.MustCompile(`\s\(\d+\)$`)

// stripSuffix derives a base name from a display name.
// Only used when a name is (re)entered; grouping itself always reads the
// stored BaseName.
func stripSuffix(name string) string {
	return suffixPattern.ReplaceAllString(name, "")
}

// GroupItems buckets items by their stored BaseName, preserving item order
// within each bucket. The display name is never re-parsed.
func GroupItems(items []models.Item) map[string][]models.Item {
	groups := make(map[string][]models.Item)
	for _, item := range items {
		key := item.BaseName
		if key == "" {
			key = item.Name
		}
		groups[key] = append(groups[key], item)
	}
	return groups
}
