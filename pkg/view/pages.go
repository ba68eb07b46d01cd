package view

import "strconv"

// PageMark is one entry of the pager: a page number, or Ellipsis for a gap.
type PageMark int

// Ellipsis marks skipped page numbers.
const Ellipsis PageMark = 0

// maxPlainPages is the most pages listed without ellipsis.
const maxPlainPages = 7

func (p PageMark) IsEllipsis() bool {
	return p == Ellipsis
}

func (p PageMark) String() string {
	if p == Ellipsis {
		return "…"
	}
	return strconv.Itoa(int(p))
}

// PageNumbers lists the pager entries for current of total pages. Up to seven
// pages are listed in full. Beyond that the first and last pages are always
// shown around a window of current-1..current+1, with an Ellipsis wherever
// pages are skipped.
func PageNumbers(total, current int) []PageMark {
	if total < 1 {
		total = 1
	}
	current = ClampPage(current, total)
	if total <= maxPlainPages {
		marks := make([]PageMark, 0, total)
		for i := 1; i <= total; i++ {
			marks = append(marks, PageMark(i))
		}
		return marks
	}

	left := max(2, current-1)
	right := min(total-1, current+1)

	marks := []PageMark{1}
	if left > 2 {
		marks = append(marks, Ellipsis)
	}
	for i := left; i <= right; i++ {
		marks = append(marks, PageMark(i))
	}
	if right < total-1 {
		marks = append(marks, Ellipsis)
	}
	return append(marks, PageMark(total))
}
