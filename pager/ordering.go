package pager

import (
	"fmt"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested collection.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		Field     string
		Direction Direction
	}
)

var _availableFieldNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	// Field names end up in raw ORDER BY clauses of SQL stores.
	if o.Field == "" || !lo.Every(_availableFieldNameSymbols, []rune(o.Field)) {
		return fmt.Errorf("ordering field name contains forbidden symbols '%s'", o.Field)
	}

	return nil
}

// Fields returns the ordered field names.
func (o Orderings) Fields() []string {
	return lo.Map(o, func(item OrderBy, _ int) string {
		return item.Field
	})
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	if o[len(o)-1].Field != DocumentIDField {
		return fmt.Errorf("ordering must end with the document id to be stable")
	}

	return nil
}

// Descending builds the orderings used by every list view: the order field
// descending with the document id as the tiebreaker.
func Descending(field string) Orderings {
	if field == "" || field == DocumentIDField {
		return Orderings{{Field: DocumentIDField, Direction: DirectionDESC}}
	}

	return Orderings{
		{Field: field, Direction: DirectionDESC},
		{Field: DocumentIDField, Direction: DirectionDESC},
	}
}
