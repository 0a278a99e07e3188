package pager

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

var _baseTime = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

type tItem struct {
	Name        string
	Mobile      string
	IsCompleted bool
	CreatedAt   time.Time
}

func projectItem(doc Document) tItem {
	return tItem{
		Name:        doc.String("name"),
		Mobile:      doc.String("mobileNo"),
		IsCompleted: doc.Bool("isCompleted"),
		CreatedAt:   doc.Time("createdAt"),
	}
}

func newItemsView() *View[tItem] {
	return NewView("items", projectItem).
		WithPageSize(10).
		WithSearch(
			SearchField[tItem]{Path: "name", Value: func(i tItem) string { return i.Name }},
			SearchField[tItem]{Path: "mobileNo", Value: func(i tItem) string { return i.Mobile }},
		)
}

// newItems returns n documents, item-01 being the oldest.
func newItems(n int) []Document {
	docs := make([]Document, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, NewDocument(fmt.Sprintf("item-%02d", i), map[string]any{
			"name":        fmt.Sprintf("Item %02d", i),
			"mobileNo":    fmt.Sprintf("98765%05d", i),
			"isCompleted": false,
			"createdAt":   _baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	return docs
}

// fakeStore evaluates queries in process.
type fakeStore struct {
	mu    sync.Mutex
	docs  map[string][]Document
	finds int

	findErr   error
	countErr  error
	updateErr error
	deleteErr error
	// onFind runs before every Find outside the lock.
	onFind func(ctx context.Context, call int) error
}

func newFakeStore(collection string, docs ...Document) *fakeStore {
	return &fakeStore{docs: map[string][]Document{collection: docs}}
}

func (f *fakeStore) Count(_ context.Context, q Query) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.countErr != nil {
		return 0, f.countErr
	}

	var n int64
	for _, doc := range f.docs[q.Collection] {
		if (Query{Search: q.Search, Where: q.Where}).Matches(doc) {
			n++
		}
	}

	return n, nil
}

func (f *fakeStore) Find(ctx context.Context, q Query) ([]Document, error) {
	f.mu.Lock()
	f.finds++
	call := f.finds
	hook := f.onFind
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}

	out := make([]Document, 0)
	for _, doc := range f.docs[q.Collection] {
		if q.Matches(doc) {
			out = append(out, doc.Clone())
		}
	}

	slices.SortFunc(out, func(a, b Document) int {
		switch {
		case q.Less(a, b):
			return -1
		case q.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	if limit := q.DatasetLimit(); limit != NoLimit && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	docs := f.docs[collection]
	idx := slices.IndexFunc(docs, func(doc Document) bool { return doc.ID == id })
	if idx == -1 {
		return ErrDocumentNotFound
	}
	docs[idx] = docs[idx].Merge(fields)

	return nil
}

func (f *fakeStore) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	docs := f.docs[collection]
	idx := slices.IndexFunc(docs, func(doc Document) bool { return doc.ID == id })
	if idx == -1 {
		return ErrDocumentNotFound
	}
	f.docs[collection] = slices.Delete(docs, idx, idx+1)

	return nil
}

func (f *fakeStore) findCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.finds
}

func rowIDs[T any](rows []Row[T]) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	return ids
}
