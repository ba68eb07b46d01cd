package view

import (
	"sort"
	"strings"
	"time"

	"tableflip.dev/lostfound/pkg/record"
)

// Result is what a screen renders.
type Result struct {
	Visible     []record.Record
	TotalCount  int
	TotalPages  int
	Page        int
	PageNumbers []PageMark
}

// Derive filters, sorts and pages cache for st. It never modifies cache and
// returns the same result for the same inputs.
func Derive(cache []record.Record, st State) Result {
	filtered := Filter(cache, st)
	Sort(filtered, st.Sort)

	size := st.pageSize()
	total := len(filtered)
	pages := TotalPages(total, size)
	page := ClampPage(st.Page, pages)

	start := (page - 1) * size
	end := min(start+size, total)
	visible := make([]record.Record, 0, end-start)
	visible = append(visible, filtered[start:end]...)

	return Result{
		Visible:     visible,
		TotalCount:  total,
		TotalPages:  pages,
		Page:        page,
		PageNumbers: PageNumbers(pages, page),
	}
}

// Filter returns the records matching every active predicate of st, in
// cache order.
func Filter(cache []record.Record, st State) []record.Record {
	search := strings.ToLower(strings.TrimSpace(st.Search))
	out := make([]record.Record, 0, len(cache))
	for _, r := range cache {
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) {
			continue
		}
		if !st.Kind.matches(r.Kind) {
			continue
		}
		if isSet(st.Category) && !strings.EqualFold(strings.TrimSpace(r.Category), strings.TrimSpace(st.Category)) {
			continue
		}
		if isSet(st.Location) && !strings.EqualFold(strings.TrimSpace(r.Location), strings.TrimSpace(st.Location)) {
			continue
		}
		if !st.EventDate.IsZero() && !record.SameDay(dateOf(r, st.DateBasis), st.EventDate) {
			continue
		}
		if !st.Since.IsZero() && (r.CreatedAt.IsZero() || r.CreatedAt.Before(st.Since)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func dateOf(r record.Record, basis DateBasis) time.Time {
	if basis == DateEvent {
		return r.EventAt
	}
	return r.CreatedAt
}

// Sort orders records in place by key. Records that compare equal keep their
// relative order.
func Sort(records []record.Record, key SortKey) {
	var less func(a, b record.Record) bool
	switch key {
	case SortOldest:
		less = func(a, b record.Record) bool { return record.Before(a.CreatedAt, b.CreatedAt) }
	case SortLostFirst:
		less = kindFirst(record.Lost)
	case SortFoundFirst:
		less = kindFirst(record.Found)
	default:
		less = newestFirst
	}
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

func newestFirst(a, b record.Record) bool {
	return record.Before(b.CreatedAt, a.CreatedAt)
}

func kindFirst(first record.Kind) func(a, b record.Record) bool {
	return func(a, b record.Record) bool {
		if a.Kind != b.Kind {
			return a.Kind == first
		}
		return newestFirst(a, b)
	}
}

// TotalPages is max(1, ceil(count/size)).
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage forces page into [1, pages].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > pages:
		return pages
	}
	return page
}
