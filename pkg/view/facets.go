package view

import (
	"sort"
	"strings"

	"tableflip.dev/lostfound/pkg/record"
)

// Facets lists the distinct categories and locations present in cache,
// sorted case-insensitively. The first spelling seen wins.
func Facets(cache []record.Record) (categories, locations []string) {
	return distinct(cache, func(r record.Record) string { return r.Category }),
		distinct(cache, func(r record.Record) string { return r.Location })
}

func distinct(cache []record.Record, field func(record.Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range cache {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Cycle returns the option after current in options, with "" (no filter)
// before the first one and after the last one.
func Cycle(options []string, current string) string {
	if len(options) == 0 {
		return ""
	}
	if !isSet(current) {
		return options[0]
	}
	for i, o := range options {
		if strings.EqualFold(o, current) {
			if i+1 < len(options) {
				return options[i+1]
			}
			return ""
		}
	}
	return ""
}
