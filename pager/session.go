package pager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Page is the state of a session after a successful fetch.
type Page[T any] struct {
	Number     int
	Rows       []Row[T]
	Fetched    int
	Total      int64
	TotalPages int
	HasNext    bool
	Filter     string
	Mode       FilterMode
	Window     Window
	// Notice is set when the requested page could not be served as asked,
	// e.g. the page fell back to 1 after a cursor gap.
	Notice error
	Table  *CursorTable

	docs []Document
}

type options struct {
	logger zerolog.Logger
	writer Writer
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWriter enables Update and Delete on the session.
func WithWriter(w Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// Session browses one view. Every fetch is tagged with a generation; starting
// a new fetch cancels the one in flight and a result whose generation is no
// longer current is discarded with ErrStaleFetch.
//
// The total count is loaded when the session opens and on Refresh.
type Session[T any] struct {
	reader Reader
	writer Writer
	view   *View[T]
	logger zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	total   int64
	filter  string
	table   *CursorTable
	current *Page[T]
}

// Open counts the collection and returns a session positioned before page 1.
func Open[T any](ctx context.Context, r Reader, v *View[T], opts ...Option) (*Session[T], error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	total, err := Count(ctx, r, v, "")
	if err != nil {
		return nil, err
	}

	return &Session[T]{
		reader: r,
		writer: o.writer,
		view:   v,
		logger: o.logger.With().Str("collection", v.collection).Logger(),
		total:  total,
		table:  NewCursorTable(),
	}, nil
}

func (s *Session[T]) View() *View[T] {
	return s.view
}

func (s *Session[T]) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total
}

func (s *Session[T]) TotalPages() int {
	return s.view.TotalPages(s.Total())
}

func (s *Session[T]) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filter
}

// Current returns the last loaded page, nil before the first Load.
func (s *Session[T]) Current() *Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	return s.snapshot()
}

// Known reports whether page can be loaded without a cursor gap.
func (s *Session[T]) Known(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.table.Known(page)
}

type dispatch struct {
	gen    uint64
	ctx    context.Context
	filter string
	total  int64
	table  *CursorTable
}

// begin starts a new generation and cancels the fetch in flight.
func (s *Session[T]) begin(ctx context.Context) (dispatch, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	return dispatch{
		gen:    s.gen,
		ctx:    fetchCtx,
		filter: s.filter,
		total:  s.total,
		table:  s.table,
	}, cancel
}

// Load fetches page. The page is clamped to [1, TotalPages]. A page whose
// predecessor was never fetched falls back to page 1 with Notice set.
func (s *Session[T]) Load(ctx context.Context, page int) (*Page[T], error) {
	d, cancel := s.begin(ctx)
	defer cancel()

	totalPages := s.view.TotalPages(d.total)
	page = min(max(page, 1), max(totalPages, 1))

	s.logger.Debug().Int("page", page).Uint64("gen", d.gen).Str("filter", d.filter).Msg("fetching page")

	var notice error
	res, err := FetchPage(d.ctx, s.reader, s.view, Request{Page: page, Filter: d.filter, Table: d.table})
	if errors.Is(err, ErrCursorGap) {
		s.logger.Warn().Int("page", page).Msg("cursor gap, falling back to page 1")
		notice = err
		res, err = FetchPage(d.ctx, s.reader, s.view, Request{Page: 1, Filter: d.filter, Table: d.table})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.gen != s.gen {
		s.logger.Debug().Int("page", page).Uint64("gen", d.gen).Msg("discarding stale page")
		return nil, fmt.Errorf("page %d: %w", page, ErrStaleFetch)
	}

	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("page fetch failed")
		return nil, err
	}

	s.table = res.Table
	s.current = s.newPage(res, notice)

	return s.snapshot(), nil
}

// snapshot returns a copy of the current page. The caller holds s.mu.
func (s *Session[T]) snapshot() *Page[T] {
	p := *s.current
	p.Rows = slices.Clone(s.current.Rows)

	return &p
}

func (s *Session[T]) newPage(res *Result[T], notice error) *Page[T] {
	totalPages := s.view.TotalPages(s.total)

	return &Page[T]{
		Number:     res.Page,
		Rows:       res.Rows,
		Fetched:    res.Fetched,
		Total:      s.total,
		TotalPages: totalPages,
		HasNext:    res.HasNext && res.Page < totalPages,
		Filter:     s.filter,
		Mode:       s.view.mode,
		Window:     NewWindow(res.Page, totalPages),
		Notice:     notice,
		Table:      res.Table,
		docs:       res.docs,
	}
}

func (s *Session[T]) currentNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0
	}

	return s.current.Number
}

// Next loads the page after the current one.
func (s *Session[T]) Next(ctx context.Context) (*Page[T], error) {
	return s.Load(ctx, s.currentNumber()+1)
}

// Prev loads the page before the current one.
func (s *Session[T]) Prev(ctx context.Context) (*Page[T], error) {
	return s.Load(ctx, s.currentNumber()-1)
}

// SetFilter changes the filter text, resets the cursor table and loads page 1.
// In FilterGlobal mode the total is recounted with the filter.
func (s *Session[T]) SetFilter(ctx context.Context, text string) (*Page[T], error) {
	s.mu.Lock()
	s.filter = text
	s.table = NewCursorTable()
	s.invalidate()
	s.mu.Unlock()

	if s.view.mode == FilterGlobal {
		total, err := Count(ctx, s.reader, s.view, text)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.filter == text {
			s.total = total
		}
		s.mu.Unlock()
	}

	return s.Load(ctx, 1)
}

// Refresh recounts the collection and reloads the current page. When the total
// changed the cursor table is reset and page 1 is loaded.
func (s *Session[T]) Refresh(ctx context.Context) (*Page[T], error) {
	filter := s.Filter()

	total, err := Count(ctx, s.reader, s.view, filter)
	if err != nil {
		return nil, err
	}

	page := s.currentNumber()

	s.mu.Lock()
	if s.filter == filter && s.total != total {
		s.total = total
		s.table = NewCursorTable()
		s.invalidate()
		page = 1
	}
	s.mu.Unlock()

	return s.Load(ctx, page)
}

// Update merges fields into the document id through the writer. On success the
// row on the current page reflects the change without a refetch. On failure
// local state is left unchanged.
func (s *Session[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if s.writer == nil {
		return fmt.Errorf("cannot update %s: %w: session is read-only", id, ErrMutationFailed)
	}

	if err := s.writer.Update(ctx, s.view.collection, id, fields); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("update failed")
		return fmt.Errorf("cannot update %s: %w: %w", id, ErrMutationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	idx := slices.IndexFunc(s.current.docs, func(doc Document) bool { return doc.ID == id })
	if idx == -1 {
		return nil
	}

	page := *s.current
	page.docs = slices.Clone(page.docs)
	page.docs[idx] = page.docs[idx].Merge(fields)
	updated := s.view.Project(page.docs[idx])

	page.Rows = lo.Map(page.Rows, func(row Row[T], _ int) Row[T] {
		if row.ID == id {
			return updated
		}
		return row
	})
	s.current = &page

	return nil
}

// Delete removes the document id through the writer. On success the row is
// dropped from the current page and the total is decremented. The cursor table
// keeps the slots up to the current page, whose end is recorded again from the
// remaining documents. Later slots are dropped.
func (s *Session[T]) Delete(ctx context.Context, id string) error {
	if s.writer == nil {
		return fmt.Errorf("cannot delete %s: %w: session is read-only", id, ErrMutationFailed)
	}

	if err := s.writer.Delete(ctx, s.view.collection, id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("delete failed")
		return fmt.Errorf("cannot delete %s: %w: %w", id, ErrMutationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = max(s.total-1, 0)
	s.invalidate()

	if s.current == nil {
		s.table = NewCursorTable()
		return nil
	}

	page := *s.current
	page.docs = lo.Reject(page.docs, func(doc Document, _ int) bool { return doc.ID == id })
	page.Rows = lo.Reject(page.Rows, func(row Row[T], _ int) bool { return row.ID == id })
	page.Total = s.total
	page.TotalPages = s.view.TotalPages(s.total)
	page.HasNext = page.HasNext && page.Number < page.TotalPages
	page.Window = NewWindow(page.Number, page.TotalPages)

	s.table = s.table.Truncate(page.Number - 1)
	if len(page.docs) > 0 {
		s.table = s.table.With(page.Number, CursorAt(lo.LastOrEmpty(page.docs), s.view.Orderings()))
	}
	page.Table = s.table
	s.current = &page

	return nil
}

// Close cancels the fetch in flight. Results arriving afterwards are stale.
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()
}

// invalidate cancels the fetch in flight and makes its result stale. The
// caller holds s.mu.
func (s *Session[T]) invalidate() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}
