// Package dedup implements the three-tier duplicate elimination cascade:
// exact normalized link, normalized title, and TF-IDF cosine similarity.
// All tiers are forward passes over a time-descending sequence, so the most
// recently published instance of a duplicate always wins.
package dedup

import (
	"sort"

	"tarmac.news/avdigest/internal/canonical"
	"tarmac.news/avdigest/internal/normalize"
)

// SortRecent orders items most-recent-first. Missing timestamps (empty
// strings) sort last and are treated as oldest. The sort is stable so a
// fixed input order always yields the same winner among ties.
func SortRecent(items []canonical.Item) []canonical.Item {
	out := make([]canonical.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAtUTC > out[j].PublishedAtUTC
	})
	return out
}

// ByURL is tier 1: keep the first occurrence of each normalized-link key.
// The input must already be in time-descending order.
func ByURL(items []canonical.Item) ([]canonical.Item, int) {
	seen := make(map[string]struct{}, len(items))
	kept := make([]canonical.Item, 0, len(items))
	dropped := 0
	for _, item := range items {
		if _, ok := seen[item.Link]; ok {
			dropped++
			continue
		}
		seen[item.Link] = struct{}{}
		kept = append(kept, item)
	}
	return kept, dropped
}

// ByTitle is tier 2: keep the first occurrence of each non-empty
// normalized-title key. Items whose titles normalize to an empty key are
// exempt and always pass through.
func ByTitle(items []canonical.Item) ([]canonical.Item, int) {
	seen := make(map[string]struct{}, len(items))
	kept := make([]canonical.Item, 0, len(items))
	dropped := 0
	for _, item := range items {
		key := normalize.Title(item.Title)
		if key != "" {
			if _, ok := seen[key]; ok {
				dropped++
				continue
			}
			seen[key] = struct{}{}
		}
		kept = append(kept, item)
	}
	return kept, dropped
}
