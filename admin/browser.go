package admin

import (
	"context"
	"fmt"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// Browser is a stateful session over a resource.
type Browser interface {
	Resource() Resource
	Current() *Listing
	Total() int64
	Load(ctx context.Context, page int) (*Listing, error)
	Next(ctx context.Context) (*Listing, error)
	Prev(ctx context.Context) (*Listing, error)
	SetFilter(ctx context.Context, text string) (*Listing, error)
	Refresh(ctx context.Context) (*Listing, error)
	// Update validates fields with Resource.Prepare before writing.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Close()
}

type browser[T any] struct {
	res     *resource[T]
	session *pager.Session[T]
}

func (b *browser[T]) Resource() Resource { return b.res }

func (b *browser[T]) Total() int64 { return b.session.Total() }

// Current returns the last loaded listing, nil before the first load.
func (b *browser[T]) Current() *Listing {
	page := b.session.Current()
	if page == nil {
		return nil
	}

	return b.res.listing(page)
}

func (b *browser[T]) wrap(page *pager.Page[T], err error) (*Listing, error) {
	if err != nil {
		return nil, err
	}

	return b.res.listing(page), nil
}

func (b *browser[T]) Load(ctx context.Context, page int) (*Listing, error) {
	return b.wrap(b.session.Load(ctx, page))
}

func (b *browser[T]) Next(ctx context.Context) (*Listing, error) {
	return b.wrap(b.session.Next(ctx))
}

func (b *browser[T]) Prev(ctx context.Context) (*Listing, error) {
	return b.wrap(b.session.Prev(ctx))
}

func (b *browser[T]) SetFilter(ctx context.Context, text string) (*Listing, error) {
	return b.wrap(b.session.SetFilter(ctx, text))
}

func (b *browser[T]) Refresh(ctx context.Context) (*Listing, error) {
	return b.wrap(b.session.Refresh(ctx))
}

func (b *browser[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	prepared, err := b.res.Prepare(fields)
	if err != nil {
		return err
	}

	return b.session.Update(ctx, id, prepared)
}

func (b *browser[T]) Delete(ctx context.Context, id string) error {
	if !b.res.deletable {
		return fmt.Errorf("cannot delete %s: %w", id, ErrNotDeletable)
	}

	return b.session.Delete(ctx, id)
}

func (b *browser[T]) Close() {
	b.session.Close()
}
