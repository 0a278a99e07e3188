package pager

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Projection decodes a document into a display row. It must substitute
// defaults for absent fields instead of failing.
type Projection[T any] func(Document) T

// SearchField is one field the free text filter applies to. Path addresses the
// document field for stores, Value reads the same field from a projected row.
type SearchField[T any] struct {
	Path  string
	Value func(T) string
}

// View configures one paginated list over a collection.
type View[T any] struct {
	collection string
	orderField string
	pageSize   int
	sizes      PageSizes
	project    Projection[T]
	search     []SearchField[T]
	mode       FilterMode
	lookahead  bool
}

func NewView[T any](collection string, project Projection[T]) *View[T] {
	return &View[T]{
		collection: collection,
		orderField: "createdAt",
		pageSize:   DefaultLimit,
		sizes:      DefaultPageSizes,
		project:    project,
		mode:       FilterLocal,
	}
}

// WithOrderField sets the field documents are ordered by, descending.
func (v *View[T]) WithOrderField(field string) *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.orderField = field

	return v
}

// WithPageSize sets the page size within the bounds of the view.
func (v *View[T]) WithPageSize(size int) *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.pageSize, _ = v.bounds().Normalize(size)

	return v
}

// WithMaxPageSize caps the page size of the view below MaxLimit. The current
// page size is lowered to the cap when above it.
func (v *View[T]) WithMaxPageSize(limit int) *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.sizes = v.bounds().Capped(limit)
	v.pageSize, _ = v.sizes.Normalize(v.pageSize)

	return v
}

func (v *View[T]) bounds() PageSizes {
	if v.sizes.Max == 0 {
		return DefaultPageSizes
	}

	return v.sizes
}

// WithSearch appends search fields without overwriting existing ones.
func (v *View[T]) WithSearch(fields ...SearchField[T]) *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.search = append(v.search, fields...)

	return v
}

func (v *View[T]) WithFilterMode(mode FilterMode) *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.mode = mode

	return v
}

// WithLookahead enables lookahead, which fetches one extra document to
// determine whether the current page is the last.
func (v *View[T]) WithLookahead() *View[T] {
	if v == nil {
		v = new(View[T])
	}

	v.lookahead = true

	return v
}

func (v *View[T]) Collection() string { return v.collection }

func (v *View[T]) OrderField() string { return v.orderField }

func (v *View[T]) PageSize() int { return v.pageSize }

func (v *View[T]) MaxPageSize() int { return v.bounds().Max }

func (v *View[T]) FilterMode() FilterMode { return v.mode }

// Orderings returns the order field descending followed by the document id.
func (v *View[T]) Orderings() Orderings {
	return Descending(v.orderField)
}

// SearchPaths returns the document paths of the search fields.
func (v *View[T]) SearchPaths() []string {
	return lo.Map(v.search, func(item SearchField[T], _ int) string {
		return item.Path
	})
}

// Project decodes doc into a row.
func (v *View[T]) Project(doc Document) Row[T] {
	return Row[T]{ID: doc.ID, Item: v.project(doc)}
}

// MatchRow reports whether any search field of row contains text, ignoring
// case. Views without search fields match every row.
func (v *View[T]) MatchRow(row T, text string) bool {
	if text == "" || len(v.search) == 0 {
		return true
	}

	needle := strings.ToLower(text)
	for _, field := range v.search {
		if strings.Contains(strings.ToLower(field.Value(row)), needle) {
			return true
		}
	}

	return false
}

// TotalPages returns ceil(total / pageSize).
func (v *View[T]) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}

	size := int64(v.pageSize)
	return int((total + size - 1) / size)
}

// Query builds the store query for the page starting after the cursor.
func (v *View[T]) Query(after *Cursor, filter string) Query {
	q := Query{
		Collection: v.collection,
		Orderings:  v.Orderings(),
		After:      after,
		Limit:      v.pageSize,
		Lookahead:  v.lookahead,
	}

	if v.mode == FilterGlobal {
		q.Search = v.textFilter(filter)
	}

	return q
}

// CountQuery builds the query used for the total count.
func (v *View[T]) CountQuery(filter string) Query {
	q := Query{Collection: v.collection}
	if v.mode == FilterGlobal {
		q.Search = v.textFilter(filter)
	}

	return q
}

func (v *View[T]) textFilter(text string) *TextFilter {
	if text == "" || len(v.search) == 0 {
		return nil
	}

	return &TextFilter{Text: text, Fields: v.SearchPaths()}
}

// Validate checks the view can be paginated.
func (v *View[T]) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: view is nil", ErrInvalidView)
	}

	if v.collection == "" {
		return fmt.Errorf("%w: collection is not set", ErrInvalidView)
	}

	if v.project == nil {
		return fmt.Errorf("%w: projection is not set", ErrInvalidView)
	}

	if v.pageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidView)
	}

	if !v.mode.Valid() {
		return fmt.Errorf("%w: unknown filter mode '%s'", ErrInvalidView, v.mode)
	}

	for _, field := range v.search {
		if field.Path == "" || field.Value == nil {
			return fmt.Errorf("%w: incomplete search field '%s'", ErrInvalidView, field.Path)
		}
	}

	if err := v.Orderings().validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidView, err)
	}

	return nil
}
