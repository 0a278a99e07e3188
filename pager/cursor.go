package pager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

var _encoder = base64.RawURLEncoding

// Cursor is the position marker of a document inside an ordered collection.
// An empty cursor means the start of the collection.
//
// IMPORTANT:
// A cursor ALWAYS ends with a condition on the document id, otherwise the
// position is ambiguous for documents sharing the same order value.
//
// The cursor is a list of conditions:
//
//	[(F1, O1, V1), (F2, O2, V2)... (Fn, On, Vn)]
type Cursor struct {
	elements []CursorElement
}

func NewCursor(elements ...CursorElement) *Cursor {
	return &Cursor{
		elements: elements,
	}
}

// DecodeCursor parses a base64url encoded cursor token.
func DecodeCursor(b64String string) (*Cursor, error) {
	if len(b64String) == 0 {
		return nil, nil
	}

	jsonData, err := _encoder.DecodeString(b64String)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 encoded cursor: %w", err)
	}

	var elems []CursorElement
	if err = json.Unmarshal(jsonData, &elems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json encoded cursor: %w", err)
	}

	return &Cursor{
		elements: elems,
	}, nil
}

// String - implements fmt.Stringer.
func (c *Cursor) String() string {
	if c.IsEmpty() {
		return ""
	}

	jTok, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		panic(fmt.Errorf("cannot compact cursor value: %w", err))
	}

	return _encoder.EncodeToString(buf.Bytes())
}

func (c *Cursor) IsEmpty() bool {
	return c == nil || len(c.elements) == 0
}

// Elements returns the compressed conditions of the cursor.
//
// IMPORTANT:
// They cannot be applied to data directly. Use DNF to inflate them.
func (c *Cursor) Elements() []CursorElement {
	if c == nil {
		return nil
	}

	return c.elements
}

// Equal reports whether both cursors mark the same position.
func (c *Cursor) Equal(other *Cursor) bool {
	return c.String() == other.String()
}

// DNF inflates the cursor into a filter.
//
// Applying the inflation to the conditions
//
//	[(F1, O1, V1), (F2, O2, V2)]
//
// yields
//
//	(F1 O1 V1) OR (F1 = V1 AND F2 O2 V2)
//
// which selects exactly the documents strictly after the cursor position.
func (c *Cursor) DNF() DNF {
	if c.IsEmpty() {
		return nil
	}

	dnf := make(DNF, 0, len(c.elements))
	for i := range c.elements {
		previousElementsWithEqualityCondition := lo.Map(c.elements[:i], func(item CursorElement, _ int) Condition {
			return item.equalityCondition()
		})

		disjunct := make(Disjunct, 0, len(previousElementsWithEqualityCondition)+1)
		disjunct = append(disjunct, previousElementsWithEqualityCondition...)
		disjunct = append(disjunct, Condition(c.elements[i]))

		dnf = append(dnf, disjunct)
	}

	return dnf
}

func (c *Cursor) validate(orderings Orderings) error {
	if c.IsEmpty() {
		return nil
	}

	if len(c.elements) != len(orderings) {
		return fmt.Errorf("%w: cursor field number mismatch", ErrInvalidCursor)
	}

	for i := range c.elements {
		cond := c.elements[i]
		orderBy := orderings[i]

		if cond.Field != orderBy.Field {
			return fmt.Errorf("%w: unexpected cursor field '%s'", ErrInvalidCursor, cond.Field)
		}

		if !cond.Operator.Valid() {
			return fmt.Errorf("%w: invalid cursor operator '%s'", ErrInvalidCursor, cond.Operator)
		} else if cond.Operator.ForOrdering() != orderBy.Direction {
			return fmt.Errorf("%w: unexpected cursor operator '%s'", ErrInvalidCursor, cond.Operator)
		}
	}

	return nil
}

var _ fmt.Stringer = (*Cursor)(nil)

// CursorAt builds the cursor marking the position of doc under orderings.
func CursorAt(doc Document, orderings Orderings) *Cursor {
	ret := Cursor{elements: make([]CursorElement, 0, len(orderings))}
	for _, orderBy := range orderings {
		value, _ := doc.Lookup(orderBy.Field)
		ret.elements = append(ret.elements, CursorElement{
			Field:    orderBy.Field,
			Value:    value,
			Operator: orderBy.Direction.ForOperator(),
		})
	}

	return &ret
}

// CursorElement is the triple (f v o), where:
//
//   - "f" - document field.
//   - "v" - value the field is compared with.
//   - "o" - operator applied to the pair (f, v).
type CursorElement struct {
	Field    string   `json:"f"`
	Value    any      `json:"v"`
	Operator Operator `json:"o"`
}

func (c *CursorElement) equalityCondition() Condition {
	return Condition{
		Field:    c.Field,
		Value:    c.Value,
		Operator: OperatorEq,
	}
}
