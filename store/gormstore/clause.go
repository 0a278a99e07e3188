package gormstore

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// conditionExpression converts a condition of the form Operator(Field, Value)
// into an SQL condition represented as a clause.Expression.
//
// IMPORTANT: The method uses the SQL placeholder "?".
//
// NULL sorts below every value, the way the in-memory store compares, so a
// "less than" also selects NULL columns and a comparison with a nil value
// becomes an IS [NOT] NULL test.
//
// Example:
//
//	Condition = { Field: "createdAt", Operator: "<", Value: "2024-01-02T03:04:05Z"}
//
// Result:
//
//	"(created_at < ? OR created_at IS NULL)" with the value parsed into time.Time
func (c Collection) conditionExpression(cond pager.Condition) clause.Expression {
	column := c.column(cond.Field)
	value := cond.NormalizedValue()

	if value == nil {
		switch cond.Operator {
		case pager.OperatorEq:
			return clause.Expr{SQL: column + " IS NULL"}
		case pager.OperatorGT:
			return clause.Expr{SQL: column + " IS NOT NULL"}
		default:
			return clause.Expr{SQL: "1 = 0"}
		}
	}

	expr := clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", column, cond.Operator),
		Vars: []any{value},
	}

	if cond.Operator == pager.OperatorLT && cond.Field != pager.DocumentIDField {
		return clause.Or(expr, clause.Expr{SQL: column + " IS NULL"})
	}

	return expr
}

// disjunctExpression converts a disjunct (K1, K2, K3) into a gorm expression
// "K1 AND K2 AND K3".
func (c Collection) disjunctExpression(d pager.Disjunct) clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, cond := range d {
		andExpressions = append(andExpressions, c.conditionExpression(cond))
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// dnfExpression converts a DNF into a clause.Expression joining the disjuncts
// with OR. An empty DNF yields nil.
func (c Collection) dnfExpression(d pager.DNF) clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(d))

	for _, disjunct := range d {
		andExpressions := c.disjunctExpression(disjunct)
		if andExpressions == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpressions)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}

// searchExpression converts a text filter into a case-insensitive substring
// match over the filter fields joined with OR.
func (c Collection) searchExpression(dialect string, f *pager.TextFilter) clause.Expression {
	if f.IsEmpty() {
		return nil
	}

	needle := strings.ToLower(f.Text)
	orExpressions := make([]clause.Expression, 0, len(f.Fields))
	for _, field := range f.Fields {
		column := c.column(field)

		var expr clause.Expr
		switch dialect {
		case "sqlite":
			expr = clause.Expr{SQL: fmt.Sprintf("INSTR(LOWER(%s), ?) > 0", column), Vars: []any{needle}}
		default:
			expr = clause.Expr{SQL: fmt.Sprintf("POSITION(? IN LOWER(%s)) > 0", column), Vars: []any{needle}}
		}
		orExpressions = append(orExpressions, expr)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	}

	return clause.Or(orExpressions...)
}

// orderSQL converts orderings to "<column_1> <direction_1>, <column_2> <direction_2>".
// Postgres sorts NULL above every value, so its NULL placement is spelled out
// to keep NULL lowest like the other dialects.
func (c Collection) orderSQL(dialect string, o pager.Orderings) string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		term := fmt.Sprintf("%s %s", c.column(ordering.Field), ordering.Direction)
		if dialect == "postgres" && ordering.Field != pager.DocumentIDField {
			term += lo.Ternary(ordering.Direction == pager.DirectionDESC, " NULLS LAST", " NULLS FIRST")
		}
		ret = append(ret, term)
	}

	return strings.Join(ret, ", ")
}
