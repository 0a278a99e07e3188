package pager

import (
	"fmt"
	"strings"
	"time"
)

type (
	// Condition is the value of Operator(Field, Value).
	Condition struct {
		Field    string
		Value    any
		Operator Operator
	}

	// Disjunct is a list of conditions joined by AND.
	Disjunct []Condition

	// DNF represents the disjunctive normal form of a logical expression.
	// Each disjunct is joined by OR, and each disjunct consists of a list of
	// conditions which are joined by AND.
	//
	// Thus:
	//
	//	DNF = X1 OR X2 ... OR Xn, where Xi = Ai1 AND Ai2 ... AND Aim.
	//	DNF = (A11 AND A12 AND A13) OR (A21 AND A22 AND A23), for n=2, m=3.
	DNF []Disjunct
)

// NormalizedValue returns the value a store should compare against. Strings
// holding an RFC 3339 timestamp come back as time.Time, since cursors travel
// through JSON.
func (c Condition) NormalizedValue() any {
	return parseAnyValue(c.Value)
}

func parseAnyValue(v any) any {
	// Try parsing a value as time.Time. If it succeeds, return time.Time.
	// Otherwise return the original value.
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		err := dst.UnmarshalText(vBytes)
		if err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

// Match evaluates the condition against a document.
func (c Condition) Match(doc Document) bool {
	value, _ := doc.Lookup(c.Field)
	cmp := Compare(parseAnyValue(value), c.NormalizedValue())

	switch c.Operator {
	case OperatorLT:
		return cmp < 0
	case OperatorGT:
		return cmp > 0
	case OperatorEq:
		return cmp == 0
	default:
		panic(fmt.Errorf("cannot evaluate operator '%s'", c.Operator))
	}
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

// Match reports whether every condition of the disjunct holds.
func (d Disjunct) Match(doc Document) bool {
	for _, cond := range d {
		if !cond.Match(doc) {
			return false
		}
	}

	return true
}

func (d Disjunct) String() string {
	parts := make([]string, 0, len(d))
	for _, cond := range d {
		parts = append(parts, cond.String())
	}

	return "(" + strings.Join(parts, " AND ") + ")"
}

// Match reports whether any disjunct holds. An empty DNF matches everything.
func (d DNF) Match(doc Document) bool {
	if len(d) == 0 {
		return true
	}

	for _, disjunct := range d {
		if disjunct.Match(doc) {
			return true
		}
	}

	return false
}

func (d DNF) String() string {
	if len(d) == 0 {
		return "TRUE"
	}

	parts := make([]string, 0, len(d))
	for _, disjunct := range d {
		parts = append(parts, disjunct.String())
	}

	return strings.Join(parts, " OR ")
}

// Compare orders two field values the way document stores do: nil first, then
// booleans, numbers, strings and timestamps. Numbers compare across Go types.
// Values of other types compare by their formatted text.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpOrdered(ra, rb)
	}

	switch ra {
	case rankNil:
		return 0
	case rankBool:
		return cmpOrdered(boolInt(a.(bool)), boolInt(b.(bool)))
	case rankNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return cmpOrdered(fa, fb)
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
)

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case string:
		return rankString
	case time.Time:
		return rankTime
	}

	if _, ok := toFloat(v); ok {
		return rankNumber
	}

	return rankOther
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
