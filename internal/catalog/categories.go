package catalog

import (
	"sort"

	"toyshop/internal/models"
)

// UniqueCategories returns every tag used by products, once, in Vietnamese
// alphabetical order. Pass the unfiltered list so every filter stays selectable.
func UniqueCategories(products []models.Product) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range products {
		for _, tag := range p.Category {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	col := newCollator()
	sort.SliceStable(tags, func(i, j int) bool {
		return col.CompareString(tags[i], tags[j]) < 0
	})
	return tags
}
