package pager

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openItems(t *testing.T, store *fakeStore, view *View[tItem]) *Session[tItem] {
	t.Helper()

	s, err := Open(context.Background(), store, view,
		WithWriter(store),
		WithLogger(zerolog.New(zerolog.NewTestWriter(t))),
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func Test_Session_Navigation(t *testing.T) {
	ctx := context.Background()
	s := openItems(t, newFakeStore("items", newItems(25)...), newItemsView())

	require.EqualValues(t, 25, s.Total())
	require.Equal(t, 3, s.TotalPages())
	require.Nil(t, s.Current())

	page, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
	require.True(t, page.HasNext)
	require.True(t, page.Window.PrevDisabled)

	page, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number)
	require.Equal(t, "item-15", page.Rows[0].ID)

	page, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, page.Number)
	require.Len(t, page.Rows, 5)
	require.False(t, page.HasNext)
	require.True(t, page.Window.NextDisabled)

	// Next on the last page stays there.
	page, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, page.Number)

	page, err = s.Prev(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number)
	require.Equal(t, "item-15", page.Rows[0].ID)
}

func Test_Session_CursorGap_FallsBackToFirstPage(t *testing.T) {
	s := openItems(t, newFakeStore("items", newItems(25)...), newItemsView())

	require.False(t, s.Known(3))

	page, err := s.Load(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 1, page.Number)
	require.ErrorIs(t, page.Notice, ErrCursorGap)
	require.Equal(t, "item-25", page.Rows[0].ID)
	require.True(t, s.Known(2))
}

func Test_Session_LocalFilter_KeepsTotal(t *testing.T) {
	ctx := context.Background()
	s := openItems(t, newFakeStore("items", newItems(25)...), newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.NoError(t, err)

	page, err := s.SetFilter(ctx, "Item 2")
	require.NoError(t, err)
	require.Equal(t, 1, page.Number, "changing the filter resets to page 1")
	require.Len(t, page.Rows, 6)
	require.EqualValues(t, 25, page.Total)
	require.False(t, s.Known(3), "changing the filter resets the cursor table")

	page, err = s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number)
	require.Empty(t, page.Rows)
	require.EqualValues(t, 25, page.Total)
	require.Equal(t, "Item 2", page.Filter)
}

func Test_Session_GlobalFilter_Recounts(t *testing.T) {
	ctx := context.Background()
	s := openItems(t, newFakeStore("items", newItems(25)...), newItemsView().WithFilterMode(FilterGlobal))

	page, err := s.SetFilter(ctx, "Item 1")
	require.NoError(t, err)
	require.EqualValues(t, 10, page.Total)
	require.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Rows, 10)
	require.True(t, page.Window.Hidden())

	page, err = s.SetFilter(ctx, "")
	require.NoError(t, err)
	require.EqualValues(t, 25, page.Total)
}

func Test_Session_Update_ReflectsLocally(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	finds := store.findCalls()

	require.NoError(t, s.Update(ctx, "item-24", map[string]any{"isCompleted": true}))
	require.Equal(t, finds, store.findCalls(), "update must not refetch")

	page := s.Current()
	require.Equal(t, "item-24", page.Rows[1].ID)
	require.True(t, page.Rows[1].Item.IsCompleted)
	require.False(t, page.Rows[0].Item.IsCompleted)
}

func Test_Session_Update_Failure_LeavesState(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(5)...)
	store.updateErr = errors.New("permission denied")
	s := openItems(t, store, newItemsView())

	before, err := s.Load(ctx, 1)
	require.NoError(t, err)

	err = s.Update(ctx, "item-05", map[string]any{"isCompleted": true})
	require.ErrorIs(t, err, ErrMutationFailed)
	require.Equal(t, before.Rows, s.Current().Rows)
}

func Test_Session_ReadOnly(t *testing.T) {
	s, err := Open(context.Background(), newFakeStore("items"), newItemsView())
	require.NoError(t, err)

	require.ErrorIs(t, s.Update(context.Background(), "x", nil), ErrMutationFailed)
	require.ErrorIs(t, s.Delete(context.Background(), "x"), ErrMutationFailed)
}

func Test_Session_Delete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(11)...)
	s := openItems(t, store, newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, s.TotalPages())

	require.NoError(t, s.Delete(ctx, "item-11"))

	page := s.Current()
	require.EqualValues(t, 10, page.Total)
	require.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Rows, 9)
	require.NotContains(t, rowIDs(page.Rows), "item-11")
	require.False(t, page.HasNext)

	store.deleteErr = errors.New("offline")
	require.ErrorIs(t, s.Delete(ctx, "item-10"), ErrMutationFailed)
	require.EqualValues(t, 10, s.Total())
}

func Test_Session_Delete_NextKeepsPosition(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "item-25"))
	require.True(t, s.Known(2))

	page, err := s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number)
	require.NoError(t, page.Notice)
	require.Equal(t, "item-15", page.Rows[0].ID)
}

func Test_Session_Delete_LastRowOfPage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.NoError(t, err)
	require.True(t, s.Known(3))

	require.NoError(t, s.Delete(ctx, "item-06"))
	require.True(t, s.Known(2))
	require.True(t, s.Known(3))

	page, err := s.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, page.Number)
	require.NoError(t, page.Notice)
	require.Equal(t, "item-05", page.Rows[0].ID)
}

func Test_Session_Refresh(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	_, err := s.Load(ctx, 1)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.NoError(t, err)

	page, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, page.Number, "unchanged total keeps the page")

	store.docs["items"] = append(store.docs["items"], newItems(30)[25:]...)
	page, err = s.Refresh(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 30, page.Total)
	require.Equal(t, 1, page.Number)
	require.Equal(t, "item-30", page.Rows[0].ID)
}

func Test_Session_StaleFetch_IsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	entered := make(chan struct{})
	release := make(chan struct{})
	store.onFind = func(_ context.Context, call int) error {
		if call == 1 {
			close(entered)
			<-release
		}
		return nil
	}

	type result struct {
		page *Page[tItem]
		err  error
	}
	late := make(chan result, 1)
	go func() {
		p, err := s.Load(ctx, 1)
		late <- result{p, err}
	}()

	<-entered
	_, err := s.SetFilter(ctx, "Item 2")
	require.NoError(t, err)
	close(release)

	res := <-late
	require.ErrorIs(t, res.err, ErrStaleFetch)
	require.Nil(t, res.page)

	current := s.Current()
	require.Equal(t, "Item 2", current.Filter)
	require.Len(t, current.Rows, 6)
}

func Test_Session_CanceledFetch_IsStale(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("items", newItems(25)...)
	s := openItems(t, store, newItemsView())

	entered := make(chan struct{})
	store.onFind = func(fetchCtx context.Context, call int) error {
		if call == 1 {
			close(entered)
			<-fetchCtx.Done()
			return fetchCtx.Err()
		}
		return nil
	}

	errs := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx, 1)
		errs <- err
	}()

	<-entered
	page, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Rows, 10)

	require.ErrorIs(t, <-errs, ErrStaleFetch)
}
