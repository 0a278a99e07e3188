package pager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// Request identifies one page of a view.
type Request struct {
	// Page is 1-based.
	Page int
	// Filter is the free text filter, empty for none.
	Filter string
	// Table is the cursor table as of the previous fetch. Nil means a fresh
	// table.
	Table *CursorTable
}

// Row is one projected document.
type Row[T any] struct {
	ID   string
	Item T
}

// Result is one fetched page.
type Result[T any] struct {
	Page int
	// Rows are the projected documents in order, after page-local filtering.
	Rows []Row[T]
	// Fetched is the number of documents returned by the store before
	// page-local filtering.
	Fetched int
	// HasNext is false when the store returned fewer documents than a page.
	HasNext bool
	// Table holds the position of the last fetched document at this page.
	Table *CursorTable

	docs []Document
}

// FetchPage fetches exactly one page of the view, strictly after the cursor
// recorded for the previous page. A page whose predecessor was never fetched
// fails with ErrCursorGap and nothing is fetched. A table holding cursors of
// other orderings fails with ErrInvalidCursor.
//
// In FilterLocal mode the filter only narrows the fetched page. In
// FilterGlobal mode it is part of the store query.
func FetchPage[T any](ctx context.Context, r Reader, v *View[T], req Request) (*Result[T], error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if req.Page < 1 {
		return nil, fmt.Errorf("cannot fetch page %d: %w", req.Page, ErrPageOutOfRange)
	}

	table := req.Table
	if table == nil {
		table = NewCursorTable()
	}

	if err := table.Validate(v.Orderings()); err != nil {
		return nil, fmt.Errorf("cannot fetch page %d: %w", req.Page, err)
	}

	after, ok := table.Start(req.Page)
	if !ok {
		return nil, fmt.Errorf("cannot fetch page %d: %w", req.Page, ErrCursorGap)
	}

	q := v.Query(after, req.Filter)
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("cannot fetch page %d: %w", req.Page, err)
	}

	docs, err := r.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch page %d: %w: %w", req.Page, ErrFetchFailed, err)
	}

	hasNext := !IsLastPage(q, docs)
	docs = TrimResultSet(q, docs)

	if len(docs) > 0 {
		table = table.With(req.Page, CursorAt(lo.LastOrEmpty(docs), q.Orderings))
	}

	rows := lo.Map(docs, func(doc Document, _ int) Row[T] {
		return v.Project(doc)
	})

	if v.mode == FilterLocal {
		rows = FilterRows(rows, req.Filter, func(row Row[T], text string) bool {
			return v.MatchRow(row.Item, text)
		})
	}

	return &Result[T]{
		Page:    req.Page,
		Rows:    rows,
		Fetched: len(docs),
		HasNext: hasNext,
		Table:   table,
		docs:    docs,
	}, nil
}

// Count returns the total for the view. In FilterGlobal mode the filter is
// applied.
func Count[T any](ctx context.Context, r Reader, v *View[T], filter string) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}

	total, err := r.Count(ctx, v.CountQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("cannot count %s: %w: %w", v.collection, ErrFetchFailed, err)
	}

	return total, nil
}
