package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/rs/zerolog"

	"tableflip.dev/lostfound/pkg/controller"
	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/normalize"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/view"
)

// Service provides the one-shot item operations shared by the CLI and the
// TUI. Live views go through the controller package instead.
type Service struct {
	Store    store.Store
	Identity identity.Provider
}

var (
	ErrNoStore  = errors.New("app: no store configured")
	ErrNotOwner = errors.New("app: only the owner can change this item")
	ErrInvalid  = errors.New("app: invalid item")
)

// ReportInput is a new lost or found report.
type ReportInput struct {
	Title       string   `validate:"required|maxLen:120" label:"title"`
	Kind        string   `validate:"required|in:lost,found" label:"kind"`
	Category    string   `validate:"required" label:"category"`
	Location    string   `validate:"required" label:"location"`
	Description string   `validate:"maxLen:2000" label:"description"`
	Date        string   `validate:"date" label:"date"`
	Time        string   `label:"time"`
	ContactName string   `label:"contact name"`
	Email       string   `validate:"email" label:"email"`
	Phone       string   `label:"phone"`
	Images      []string `label:"images"`
	Keywords    []string `label:"keywords"`
}

// EditInput changes the text fields of an item. Empty fields are left
// alone.
type EditInput struct {
	Title       string `validate:"maxLen:120" label:"title"`
	Description string `validate:"maxLen:2000" label:"description"`
	Category    string `label:"category"`
	Location    string `label:"location"`
}

func (s *Service) ready() error {
	if s.Store == nil {
		return ErrNoStore
	}
	return nil
}

func (s *Service) me() (identity.Identity, error) {
	if s.Identity == nil {
		return identity.Identity{}, errs.ErrUnauthenticated
	}
	who, ok := s.Identity.Current()
	if !ok {
		return identity.Identity{}, errs.ErrUnauthenticated
	}
	return who, nil
}

func check(in any) error {
	v := validate.Struct(in)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalid, v.Errors.One())
	}
	return nil
}

// Report posts a new item owned by the signed-in user.
func (s *Service) Report(ctx context.Context, in ReportInput) (record.Record, error) {
	if err := s.ready(); err != nil {
		return record.Record{}, err
	}
	who, err := s.me()
	if err != nil {
		return record.Record{}, err
	}
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.Title = strings.TrimSpace(in.Title)
	if err := check(&in); err != nil {
		return record.Record{}, err
	}
	if in.Time != "" {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			return record.Record{}, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalid, in.Time)
		}
	}
	for _, u := range in.Images {
		if !validate.IsURL(u) {
			return record.Record{}, fmt.Errorf("%w: image %q is not a URL", ErrInvalid, u)
		}
	}

	kind := record.ParseKind(in.Kind)
	data := map[string]any{
		normalize.FieldItemName:    in.Title,
		normalize.FieldStatus:      kind.Label(),
		normalize.FieldCategory:    in.Category,
		normalize.FieldLocation:    in.Location,
		normalize.FieldDescription: in.Description,
		normalize.FieldOwner:       who.UID,
	}
	if in.Date != "" {
		dateField, timeField := normalize.FieldDateLost, normalize.FieldTimeLost
		if kind == record.Found {
			dateField, timeField = normalize.FieldDateFound, normalize.FieldTimeFound
		}
		data[dateField] = in.Date
		if in.Time != "" {
			data[timeField] = in.Time
		}
	}
	optional := map[string]string{
		normalize.FieldContactName: in.ContactName,
		normalize.FieldEmail:       in.Email,
		normalize.FieldPhone:       in.Phone,
	}
	for k, v := range optional {
		if v = strings.TrimSpace(v); v != "" {
			data[k] = v
		}
	}
	if len(in.Images) > 0 {
		data[normalize.FieldPhotoURLs] = in.Images
	}
	if len(in.Keywords) > 0 {
		data[normalize.FieldKeywords] = in.Keywords
	}

	doc, err := s.Store.Append(ctx, store.Items, data, normalize.FieldCreatedAt)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("report item")
		return record.Record{}, errs.WriteFailure{Op: "report item", Err: err}
	}
	zerolog.Ctx(ctx).Info().Str("id", doc.ID).Str("kind", kind.String()).Msg("item reported")
	return controller.DecodeItem(doc), nil
}

// Get reads one item.
func (s *Service) Get(ctx context.Context, id string) (record.Record, error) {
	if err := s.ready(); err != nil {
		return record.Record{}, err
	}
	doc, err := s.Store.Get(ctx, store.Items, id)
	if err != nil {
		return record.Record{}, err
	}
	return controller.DecodeItem(doc), nil
}

// owned reads id and checks the signed-in user posted it.
func (s *Service) owned(ctx context.Context, id string) (record.Record, error) {
	who, err := s.me()
	if err != nil {
		return record.Record{}, err
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return record.Record{}, err
	}
	if r.OwnerRef == "" || r.OwnerRef != who.UID {
		return record.Record{}, ErrNotOwner
	}
	return r, nil
}

// Edit changes an item posted by the signed-in user.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (record.Record, error) {
	if err := s.ready(); err != nil {
		return record.Record{}, err
	}
	if err := check(&in); err != nil {
		return record.Record{}, err
	}
	if _, err := s.owned(ctx, id); err != nil {
		return record.Record{}, err
	}
	fields := map[string]any{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	set(normalize.FieldItemName, in.Title)
	set(normalize.FieldDescription, in.Description)
	set(normalize.FieldCategory, in.Category)
	set(normalize.FieldLocation, in.Location)
	if _, ok := fields[normalize.FieldItemName]; ok {
		// Older documents carry title; keep both names in step.
		fields[normalize.FieldTitle] = fields[normalize.FieldItemName]
	}
	if err := s.Store.Update(ctx, store.Items, id, fields, normalize.FieldUpdatedAt); err != nil {
		return record.Record{}, errs.WriteFailure{Op: "edit item", Err: err}
	}
	return s.Get(ctx, id)
}

// Delete removes an item posted by the signed-in user, with its messages.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, store.Items, id); err != nil {
		return errs.WriteFailure{Op: "delete item", Err: err}
	}
	zerolog.Ctx(ctx).Info().Str("id", id).Msg("item deleted")
	return nil
}

// List reads every item and derives the page st asks for.
func (s *Service) List(ctx context.Context, st view.State) (view.Result, error) {
	records, err := s.query(ctx, controller.AllItems())
	if err != nil {
		return view.Result{}, err
	}
	return view.Derive(records, st), nil
}

// Recent returns the n newest items.
func (s *Service) Recent(ctx context.Context, n int) ([]record.Record, error) {
	return s.query(ctx, controller.RecentItems(n))
}

// Mine returns the items posted by the signed-in user, newest first.
func (s *Service) Mine(ctx context.Context) ([]record.Record, error) {
	who, err := s.me()
	if err != nil {
		return nil, err
	}
	return s.query(ctx, controller.OwnedItems(who.UID))
}

func (s *Service) query(ctx context.Context, q store.Query) ([]record.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	snap, err := s.Store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(snap))
	for _, doc := range snap {
		out = append(out, controller.DecodeItem(doc))
	}
	return out, nil
}
