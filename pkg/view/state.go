// Package view derives the visible page of a browse screen from the live
// cache and the user's filter, sort and page selections.
package view

import (
	"strings"
	"time"

	"tableflip.dev/lostfound/pkg/record"
)

// DefaultPageSize is how many records a page shows.
const DefaultPageSize = 6

// KindFilter restricts records by kind.
type KindFilter string

const (
	KindAll   KindFilter = "ALL"
	KindLost  KindFilter = "LOST"
	KindFound KindFilter = "FOUND"
)

var kindFilters = []KindFilter{KindAll, KindLost, KindFound}

// ParseKindFilter accepts all/lost/found in any case. Anything else is KindAll.
func ParseKindFilter(s string) KindFilter {
	k := KindFilter(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range kindFilters {
		if k == known {
			return k
		}
	}
	return KindAll
}

// Next cycles ALL -> LOST -> FOUND -> ALL.
func (k KindFilter) Next() KindFilter {
	for i, known := range kindFilters {
		if k == known {
			return kindFilters[(i+1)%len(kindFilters)]
		}
	}
	return KindAll
}

func (k KindFilter) matches(kind record.Kind) bool {
	switch k {
	case KindLost:
		return kind == record.Lost
	case KindFound:
		return kind == record.Found
	default:
		return true
	}
}

// SortKey orders the filtered records.
type SortKey string

const (
	SortRecent     SortKey = "RECENT"
	SortOldest     SortKey = "OLDEST"
	SortLostFirst  SortKey = "LOST_FIRST"
	SortFoundFirst SortKey = "FOUND_FIRST"
)

var sortKeys = []SortKey{SortRecent, SortOldest, SortLostFirst, SortFoundFirst}

// ParseSortKey accepts recent, oldest, lost-first and found-first in any case
// with either separator. Anything else is SortRecent.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, known := range sortKeys {
		if k == known {
			return k
		}
	}
	return SortRecent
}

// Next cycles through the sort keys.
func (s SortKey) Next() SortKey {
	for i, known := range sortKeys {
		if s == known {
			return sortKeys[(i+1)%len(sortKeys)]
		}
	}
	return SortRecent
}

// Label is the human form, e.g. "lost first".
func (s SortKey) Label() string {
	return strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
}

// DateBasis picks which record date the calendar-day filter compares.
type DateBasis int

const (
	// DateCreated compares the posting time.
	DateCreated DateBasis = iota
	// DateEvent compares the day the item was lost or found.
	DateEvent
)

// State is one screen's filter, sort and page selection. The zero value shows
// everything, newest first, on page 1.
type State struct {
	Search    string
	Kind      KindFilter
	Category  string
	Location  string
	EventDate time.Time
	DateBasis DateBasis
	Since     time.Time
	Sort      SortKey
	Page      int
	PageSize  int
}

// NewState returns the initial state of a freshly mounted screen.
func NewState() State {
	return State{Kind: KindAll, Sort: SortRecent, Page: 1, PageSize: DefaultPageSize}
}

func (s State) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// HasFilters reports whether any predicate is active.
func (s State) HasFilters() bool {
	return strings.TrimSpace(s.Search) != "" ||
		(s.Kind != "" && s.Kind != KindAll) ||
		isSet(s.Category) || isSet(s.Location) ||
		!s.EventDate.IsZero() || !s.Since.IsZero()
}

// isSet reports whether a category or location filter value is active.
func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "all")
}
