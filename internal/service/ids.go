package service

import (
	"strings"

	"rentdesk-backend/internal/domain"
)

// dedupe trims ids, drops blanks and repeats, and keeps first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func union(a, b []string) []string {
	return dedupe(append(append([]string(nil), a...), b...))
}

// difference returns the members of a that are not in b.
func difference(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, id := range b {
		drop[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func intersect(a, b []string) []string {
	keep := make(map[string]struct{}, len(b))
	for _, id := range b {
		keep[id] = struct{}{}
	}
	var out []string
	for _, id := range dedupe(a) {
		if _, ok := keep[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// orderItems picks the items named by ids, in ids order. Unknown ids are skipped.
func orderItems(ids []string, items []domain.Item) []domain.Item {
	byID := make(map[string]domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
