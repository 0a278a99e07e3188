package pager

import "fmt"

// Operator defines a comparison operator applied to a document field.
// Cursor elements only ever carry OperatorLT or OperatorGT; OperatorEq appears
// when a cursor is inflated into its DNF and in equality lookups.
type Operator string

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT
}

func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT:
		return DirectionASC
	case OperatorLT:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"
	OperatorEq Operator = "="
)
