// Package admin defines the list resources of the back office: their views
// over the document collections, their table columns and the fields an
// operator may change.
package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrNotDeletable    = errors.New("resource does not allow deletion")
)

// Column is one table column of a resource.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Item is one row of a listing.
type Item struct {
	ID     string   `json:"id"`
	Cells  []string `json:"cells"`
	Record any      `json:"record"`
}

// Listing is a page of a resource with the data needed to render it.
type Listing struct {
	Resource   string           `json:"resource"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int64            `json:"total"`
	Fetched    int              `json:"fetched"`
	HasNext    bool             `json:"hasNext"`
	Filter     string           `json:"filter,omitempty"`
	FilterMode pager.FilterMode `json:"filterMode"`
	Notice     string           `json:"notice,omitempty"`
	// Cursors is the cursor table token to send back with the next request.
	Cursors string         `json:"cursors"`
	Headers []string       `json:"headers"`
	Items   []Item         `json:"items"`
	Window  pager.Window   `json:"-"`
	Buttons []pager.Button `json:"buttons,omitempty"`
}

// Resource is a list resource with its record type erased.
type Resource interface {
	Name() string
	Title() string
	Collection() string
	PageSize() int
	FilterMode() pager.FilterMode
	Headers() []string
	Editable() []string
	Deletable() bool

	// Count returns the total shown for the resource.
	Count(ctx context.Context, r pager.Reader, filter string) (int64, error)
	// Fetch loads one page statelessly. A cursor gap falls back to page 1
	// with a notice. The returned cursors only serve requests with the same
	// filter and total, and cursors of another view fail with
	// pager.ErrInvalidCursor.
	Fetch(ctx context.Context, r pager.Reader, req pager.Request) (*Listing, error)
	// Browse opens a stateful session over the resource.
	Browse(ctx context.Context, r pager.Reader, opts ...pager.Option) (Browser, error)
	// Prepare validates an update payload and returns the fields to write.
	Prepare(fields map[string]any) (map[string]any, error)
	// Update prepares fields and writes them to document id.
	Update(ctx context.Context, w pager.Writer, id string, fields map[string]any) error
	// Delete removes document id when the resource allows it.
	Delete(ctx context.Context, w pager.Writer, id string) error
}

type resource[T any] struct {
	name      string
	title     string
	view      *pager.View[T]
	columns   []Column[T]
	editable  []string
	deletable bool
	validator *Validator
	// stamp adds server-side fields to an update.
	stamp func(fields map[string]any, now time.Time)
	now   func() time.Time
}

func (res *resource[T]) Name() string { return res.name }

func (res *resource[T]) Title() string { return res.title }

func (res *resource[T]) Collection() string { return res.view.Collection() }

func (res *resource[T]) PageSize() int { return res.view.PageSize() }

func (res *resource[T]) FilterMode() pager.FilterMode { return res.view.FilterMode() }

func (res *resource[T]) Headers() []string {
	return lo.Map(res.columns, func(c Column[T], _ int) string { return c.Header })
}

func (res *resource[T]) Editable() []string {
	return slices.Clone(res.editable)
}

func (res *resource[T]) Deletable() bool { return res.deletable }

func (res *resource[T]) Count(ctx context.Context, r pager.Reader, filter string) (int64, error) {
	return pager.Count(ctx, r, res.view, filter)
}

func (res *resource[T]) Fetch(ctx context.Context, r pager.Reader, req pager.Request) (*Listing, error) {
	if err := req.Table.Validate(res.view.Orderings()); err != nil {
		return nil, fmt.Errorf("%s: %w", res.name, err)
	}

	total, err := pager.Count(ctx, r, res.view, req.Filter)
	if err != nil {
		return nil, err
	}

	// Slots recorded under another filter or total no longer mark page
	// boundaries. Starting over turns a later page into a cursor gap.
	scope := pager.TableScope{Collection: res.Collection(), Filter: req.Filter, Total: total}
	if !req.Table.InScope(scope) {
		req.Table = pager.NewCursorTable()
	}

	totalPages := res.view.TotalPages(total)
	req.Page = min(max(req.Page, 1), max(totalPages, 1))

	var notice error
	result, err := pager.FetchPage(ctx, r, res.view, req)
	if errors.Is(err, pager.ErrCursorGap) {
		notice = err
		req.Page = 1
		result, err = pager.FetchPage(ctx, r, res.view, req)
	}
	if err != nil {
		return nil, err
	}

	return res.listing(&pager.Page[T]{
		Number:     result.Page,
		Rows:       result.Rows,
		Fetched:    result.Fetched,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    result.HasNext && result.Page < totalPages,
		Filter:     req.Filter,
		Mode:       res.view.FilterMode(),
		Window:     pager.NewWindow(result.Page, totalPages),
		Notice:     notice,
		Table:      result.Table.Scoped(scope),
	}), nil
}

func (res *resource[T]) Browse(ctx context.Context, r pager.Reader, opts ...pager.Option) (Browser, error) {
	session, err := pager.Open(ctx, r, res.view, opts...)
	if err != nil {
		return nil, err
	}

	return &browser[T]{res: res, session: session}, nil
}

func (res *resource[T]) Prepare(fields map[string]any) (map[string]any, error) {
	if len(res.editable) == 0 {
		return nil, fmt.Errorf("%s: %w: no editable fields", res.name, ErrInvalidPayload)
	}

	if err := res.validator.Validate(res.name, fields); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}

	if res.stamp != nil {
		res.stamp(out, res.now())
	}

	return out, nil
}

func (res *resource[T]) Update(ctx context.Context, w pager.Writer, id string, fields map[string]any) error {
	prepared, err := res.Prepare(fields)
	if err != nil {
		return err
	}

	if err = w.Update(ctx, res.Collection(), id, prepared); err != nil {
		return fmt.Errorf("cannot update %s: %w: %w", id, pager.ErrMutationFailed, err)
	}

	return nil
}

func (res *resource[T]) Delete(ctx context.Context, w pager.Writer, id string) error {
	if !res.deletable {
		return fmt.Errorf("cannot delete %s: %w", id, ErrNotDeletable)
	}

	if err := w.Delete(ctx, res.Collection(), id); err != nil {
		return fmt.Errorf("cannot delete %s: %w: %w", id, pager.ErrMutationFailed, err)
	}

	return nil
}

func (res *resource[T]) listing(page *pager.Page[T]) *Listing {
	l := &Listing{
		Resource:   res.name,
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Fetched:    page.Fetched,
		HasNext:    page.HasNext,
		Filter:     page.Filter,
		FilterMode: page.Mode,
		Cursors:    page.Table.String(),
		Headers:    res.Headers(),
		Window:     page.Window,
		Items: lo.Map(page.Rows, func(row pager.Row[T], _ int) Item {
			return Item{
				ID:     row.ID,
				Cells:  lo.Map(res.columns, func(c Column[T], _ int) string { return c.Value(row.Item) }),
				Record: row.Item,
			}
		}),
	}

	if !page.Window.Hidden() {
		l.Buttons = page.Window.Buttons()
	}

	if page.Notice != nil {
		l.Notice = page.Notice.Error()
	}

	return l
}
