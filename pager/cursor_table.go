package pager

import (
	"encoding/json"
	"fmt"
)

// CursorTable maps page numbers to the cursor a page starts after. The slot
// of page 1 always holds the start marker. The slot of page i > 1 holds the
// position of the last document of page i-1 and is only present once page
// i-1 was fetched.
//
// A CursorTable is immutable: With returns an updated copy.
type CursorTable struct {
	// slots[i] is the position of the last document of page i. slots[0] is
	// the start marker.
	slots []*Cursor
	// scope is the listing the slots were recorded under, nil when unbound.
	scope *TableScope
}

// TableScope identifies a listing. Slots recorded for one listing do not
// mark page boundaries of another.
type TableScope struct {
	Collection string `json:"collection"`
	Filter     string `json:"filter,omitempty"`
	Total      int64  `json:"total"`
}

type tableToken struct {
	Scope *TableScope       `json:"scope,omitempty"`
	Slots [][]CursorElement `json:"slots"`
}

func NewCursorTable() *CursorTable {
	return &CursorTable{slots: []*Cursor{nil}}
}

// Len returns the number of recorded slots including the start marker.
func (t *CursorTable) Len() int {
	if t == nil {
		return 1
	}

	return len(t.slots)
}

// Start returns the cursor page starts after. ok is false when the previous
// page was never fetched.
func (t *CursorTable) Start(page int) (*Cursor, bool) {
	if page < 1 {
		return nil, false
	}

	if page == 1 {
		return nil, true
	}

	idx := page - 1
	if t == nil || idx >= len(t.slots) || t.slots[idx].IsEmpty() {
		return nil, false
	}

	return t.slots[idx], true
}

// Known reports whether page can be fetched without a cursor gap.
func (t *CursorTable) Known(page int) bool {
	_, ok := t.Start(page)
	return ok
}

// With records c as the position of the last document of page. Entries of
// lower pages are preserved. When the recorded position of page changes, the
// slots of later pages no longer follow from it and are dropped.
func (t *CursorTable) With(page int, c *Cursor) *CursorTable {
	if t == nil {
		t = NewCursorTable()
	}

	if page < 1 || c.IsEmpty() {
		return t
	}

	slots := make([]*Cursor, len(t.slots), max(len(t.slots), page+1))
	copy(slots, t.slots)

	switch {
	case page < len(slots):
		if slots[page].Equal(c) {
			return &CursorTable{slots: slots, scope: t.scope}
		}
		slots = append(slots[:page], c)
	default:
		for len(slots) < page {
			slots = append(slots, nil)
		}
		slots = append(slots, c)
	}

	return &CursorTable{slots: slots, scope: t.scope}
}

// Truncate keeps the slots needed to reach pages 1 to page+1 and drops the
// rest.
func (t *CursorTable) Truncate(page int) *CursorTable {
	if t == nil || page < 0 {
		return NewCursorTable()
	}

	n := min(len(t.slots), page+1)
	slots := make([]*Cursor, n)
	copy(slots, t.slots[:n])

	return &CursorTable{slots: slots, scope: t.scope}
}

// Scoped returns a copy of the table bound to scope.
func (t *CursorTable) Scoped(scope TableScope) *CursorTable {
	if t == nil {
		t = NewCursorTable()
	}

	return &CursorTable{slots: t.slots, scope: &scope}
}

// Scope returns the listing the table is bound to.
func (t *CursorTable) Scope() (TableScope, bool) {
	if t == nil || t.scope == nil {
		return TableScope{}, false
	}

	return *t.scope, true
}

// InScope reports whether the slots can serve the listing scope. The initial
// table serves any listing, an unbound table with recorded slots none.
func (t *CursorTable) InScope(scope TableScope) bool {
	if t.Len() <= 1 {
		return true
	}

	return t.scope != nil && *t.scope == scope
}

// String encodes the table into an opaque URL-safe token. The initial table
// encodes to "".
func (t *CursorTable) String() string {
	if t.Len() <= 1 {
		return ""
	}

	raw := tableToken{Scope: t.scope, Slots: make([][]CursorElement, 0, len(t.slots)-1)}
	for _, c := range t.slots[1:] {
		raw.Slots = append(raw.Slots, c.Elements())
	}

	data, err := json.Marshal(raw)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor table: %w", err))
	}

	return _encoder.EncodeToString(data)
}

// DecodeCursorTable parses a token produced by CursorTable.String.
func DecodeCursorTable(token string) (*CursorTable, error) {
	if token == "" {
		return NewCursorTable(), nil
	}

	data, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor table: %w", ErrInvalidCursor, err)
	}

	var raw tableToken
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor table: %w", ErrInvalidCursor, err)
	}

	table := &CursorTable{slots: []*Cursor{nil}, scope: raw.Scope}
	for _, elems := range raw.Slots {
		var c *Cursor
		if len(elems) > 0 {
			c = NewCursor(elems...)
		}
		table.slots = append(table.slots, c)
	}

	return table, nil
}

// Validate checks every recorded cursor against orderings. Errors wrap
// ErrInvalidCursor.
func (t *CursorTable) Validate(orderings Orderings) error {
	if t == nil {
		return nil
	}

	for i, c := range t.slots {
		if err := c.validate(orderings); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}

	return nil
}
