package pager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// TextFilter is a case-insensitive substring search over a set of fields.
// A document matches when any of the fields contains Text.
type TextFilter struct {
	Text   string
	Fields []string
}

func (f *TextFilter) IsEmpty() bool {
	return f == nil || f.Text == "" || len(f.Fields) == 0
}

// Query is the page request handed to a store.
type Query struct {
	Collection string
	Orderings  Orderings
	// After is the position the page starts strictly after. Nil means the
	// start of the collection.
	After *Cursor
	// Limit is the maximum number of documents returned, NoLimit for all.
	Limit int
	// Lookahead asks for one extra document to detect the last page.
	Lookahead bool
	Search    *TextFilter
	// Where holds equality conditions joined by AND.
	Where []Condition
}

// Reader is the read side of the data-access port.
type Reader interface {
	// Count returns the number of documents matching Search and Where. Cursor,
	// orderings and limit are ignored.
	Count(ctx context.Context, q Query) (int64, error)
	// Find returns the documents strictly after q.After in q.Orderings order.
	Find(ctx context.Context, q Query) ([]Document, error)
}

// Writer is the mutation side of the data-access port. Both operations touch
// a single document.
type Writer interface {
	// Update merges fields into the document. Dotted keys address nested fields.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

type Inserter interface {
	Insert(ctx context.Context, collection string, docs ...Document) error
}

type Store interface {
	Reader
	Writer
}

// DatasetLimit returns the limit adjusted for lookahead:
//   - if Lookahead = true → Limit + 1
//   - if Lookahead = false → Limit
func (q Query) DatasetLimit() int {
	if q.Limit == NoLimit {
		return NoLimit
	}

	return lo.Ternary(q.Lookahead, q.Limit+1, q.Limit)
}

// Filter returns the cursor condition of the query.
func (q Query) Filter() DNF {
	return q.After.DNF()
}

// Matches evaluates Where, Search and the cursor against a document. Stores
// without a query language use it to filter in process.
func (q Query) Matches(doc Document) bool {
	for _, cond := range q.Where {
		if !cond.Match(doc) {
			return false
		}
	}

	if !q.Search.IsEmpty() && !ContainsFold(doc, q.Search.Text, q.Search.Fields) {
		return false
	}

	return q.Filter().Match(doc)
}

// Less orders two documents by q.Orderings.
func (q Query) Less(a, b Document) bool {
	for _, orderBy := range q.Orderings {
		va, _ := a.Lookup(orderBy.Field)
		vb, _ := b.Lookup(orderBy.Field)

		cmp := Compare(parseAnyValue(va), parseAnyValue(vb))
		if cmp == 0 {
			continue
		}

		if orderBy.Direction == DirectionDESC {
			return cmp > 0
		}
		return cmp < 0
	}

	return false
}

// Validate checks the query is paginable.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("collection is not set")
	}

	if q.Limit == NoLimit && q.Lookahead {
		return fmt.Errorf("cannot apply lookahead to unlimited paging")
	}

	err := q.Orderings.validate()
	if err != nil {
		return err
	}

	return q.After.validate(q.Orderings)
}

// IsLastPage returns true if the result set is the last page in the dataset.
//
// The last page is determined by one of two conditions:
//  1. The number of returned records is less than Limit.
//  2. Lookahead = true and the number of returned records is less than or equal to Limit.
func IsLastPage[T any](q Query, resultSet []T) bool {
	if q.Limit == NoLimit {
		return true
	}

	return len(resultSet) < q.Limit ||
		(q.Lookahead && len(resultSet) <= q.Limit)
}

// TrimResultSet drops the lookahead record when the page is not the last one.
//
//   - With lookahead → [a, b, c] becomes [a, b].
//   - Without lookahead → resultSet remains unchanged.
func TrimResultSet[T any](q Query, resultSet []T) []T {
	if q.Lookahead && len(resultSet) > q.Limit {
		resultSet = resultSet[:q.Limit]
	}

	return resultSet
}

// NextPageCursor trims the result set and returns the cursor marking the
// position of its last document. The cursor is nil on the last page.
func NextPageCursor(q Query, resultSet []Document) ([]Document, *Cursor, error) {
	err := q.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursor: %w", err)
	}

	if IsLastPage(q, resultSet) {
		return resultSet, nil, nil
	}
	resultSet = TrimResultSet(q, resultSet)
	last := lo.LastOrEmpty(resultSet)

	return resultSet, CursorAt(last, q.Orderings), nil
}
