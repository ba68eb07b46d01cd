package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/app"
)

// ReportOptions are the fields of a new report.
type ReportOptions struct {
	app.ReportInput
}

func AddReportArgs(cmd *cobra.Command, o *ReportOptions) {
	cmd.Flags().StringVarP(&o.Title, "title", "t", "",
		"What the item is.")
	cmd.Flags().StringVarP(&o.Category, "category", "c", "",
		"Category, e.g. Electronics or Keys.")
	cmd.Flags().StringVarP(&o.Location, "location", "l", "",
		"Where it was lost or found.")
	cmd.Flags().StringVarP(&o.Description, "description", "d", "",
		"Longer description.")
	cmd.Flags().StringVar(&o.Date, "date", "",
		"Day it was lost or found (YYYY-MM-DD).")
	cmd.Flags().StringVar(&o.Time, "time", "",
		"Time of day it was lost or found (HH:MM).")
	cmd.Flags().StringVar(&o.ContactName, "contact-name", "",
		"Who to contact.")
	cmd.Flags().StringVar(&o.Email, "email", "",
		"Contact email.")
	cmd.Flags().StringVar(&o.Phone, "phone", "",
		"Contact phone.")
	cmd.Flags().StringSliceVar(&o.Images, "image", nil,
		"Image URL, may be repeated.")
	cmd.Flags().StringSliceVar(&o.Keywords, "keyword", nil,
		"Keyword, may be repeated.")
}

// EditOptions are the fields edit may change.
type EditOptions struct {
	app.EditInput
}

func AddEditArgs(cmd *cobra.Command, o *EditOptions) {
	cmd.Flags().StringVarP(&o.Title, "title", "t", "",
		"New title.")
	cmd.Flags().StringVarP(&o.Category, "category", "c", "",
		"New category.")
	cmd.Flags().StringVarP(&o.Location, "location", "l", "",
		"New location.")
	cmd.Flags().StringVarP(&o.Description, "description", "d", "",
		"New description.")
}
