package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/timeutil"
	"tableflip.dev/lostfound/pkg/view"
)

// FilterOptions are the list filters shared by list and browse.
type FilterOptions struct {
	Search   string
	Kind     string
	Category string
	Location string
	Date     string
	ByEvent  bool
	Since    string
	Sort     string
	Page     int
	PageSize int
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "q", "",
		"Only items whose title contains this text.")
	cmd.Flags().StringVar(&o.Kind, "kind", "all",
		"One of 'all', 'lost' or 'found'.")
	cmd.Flags().StringVar(&o.Category, "category", "",
		"Only items in this category.")
	cmd.Flags().StringVar(&o.Location, "location", "",
		"Only items at this location.")
	cmd.Flags().StringVar(&o.Date, "date", "",
		"Only items from this day (YYYY-MM-DD).")
	cmd.Flags().BoolVar(&o.ByEvent, "by-event", false,
		"Match --date against the day the item was lost or found instead of the posting day.")
	cmd.Flags().StringVar(&o.Since, "since", "",
		"Only items posted since a date or window, e.g. 2025-03-01, 3d, 2w, 12h.")
	cmd.Flags().StringVar(&o.Sort, "sort", "recent",
		"One of 'recent', 'oldest', 'lost-first' or 'found-first'.")
}

func AddPageArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().IntVarP(&o.Page, "page", "p", 1,
		"Page to show.")
	cmd.Flags().IntVar(&o.PageSize, "page-size", 0,
		"Items per page. Defaults to page.size from the config.")
}

// State turns the flags into a view state. defaultPageSize is used when
// --page-size is not set.
func (o *FilterOptions) State(now time.Time, defaultPageSize int) (view.State, error) {
	st := view.NewState()
	st.Search = o.Search
	st.Kind = view.ParseKindFilter(o.Kind)
	st.Category = o.Category
	st.Location = o.Location
	st.Sort = view.ParseSortKey(o.Sort)
	if o.ByEvent {
		st.DateBasis = view.DateEvent
	}
	if o.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", o.Date, time.Local)
		if err != nil {
			return st, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", o.Date)
		}
		st.EventDate = day
	}
	since, err := timeutil.ParseSince(o.Since, now)
	if err != nil {
		return st, err
	}
	st.Since = since
	if o.Page > 0 {
		st.Page = o.Page
	}
	switch {
	case o.PageSize > 0:
		st.PageSize = o.PageSize
	case defaultPageSize > 0:
		st.PageSize = defaultPageSize
	}
	return st, nil
}
