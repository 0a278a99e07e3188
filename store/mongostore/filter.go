package mongostore

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const idKey = "_id"

var operators = map[pager.Operator]string{
	pager.OperatorLT: "$lt",
	pager.OperatorGT: "$gt",
	pager.OperatorEq: "$eq",
}

func key(field string) string {
	if field == pager.DocumentIDField {
		return idKey
	}

	return field
}

// idValue converts hex ids back to ObjectIDs. Other ids are kept as is.
func idValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}

	return s
}

// conditionFilter translates a condition. Null and missing fields sort below
// every value, so "less than" also matches them and a nil value turns into a
// null test.
func conditionFilter(c pager.Condition) bson.M {
	k := key(c.Field)
	value := c.NormalizedValue()

	if value == nil {
		switch c.Operator {
		case pager.OperatorEq:
			return bson.M{k: nil}
		case pager.OperatorGT:
			return bson.M{k: bson.M{"$ne": nil}}
		default:
			return bson.M{k: bson.M{"$in": bson.A{}}}
		}
	}

	if c.Field == pager.DocumentIDField {
		return bson.M{k: bson.M{operators[c.Operator]: idValue(value)}}
	}

	f := bson.M{k: bson.M{operators[c.Operator]: value}}
	if c.Operator == pager.OperatorLT {
		return bson.M{"$or": bson.A{f, bson.M{k: nil}}}
	}

	return f
}

// disjunctFilter joins the conditions of a disjunct with $and.
func disjunctFilter(d pager.Disjunct) bson.M {
	switch len(d) {
	case 0:
		return nil
	case 1:
		return conditionFilter(d[0])
	}

	and := make(bson.A, 0, len(d))
	for _, c := range d {
		and = append(and, conditionFilter(c))
	}

	return bson.M{"$and": and}
}

// dnfFilter joins the disjuncts of a DNF with $or. An empty DNF yields nil.
func dnfFilter(d pager.DNF) bson.M {
	or := make(bson.A, 0, len(d))
	for _, disjunct := range d {
		if f := disjunctFilter(disjunct); f != nil {
			or = append(or, f)
		}
	}

	switch len(or) {
	case 0:
		return nil
	case 1:
		return or[0].(bson.M)
	}

	return bson.M{"$or": or}
}

// searchFilter matches documents where any of the fields contains the text,
// ignoring case.
func searchFilter(f *pager.TextFilter) bson.M {
	if f.IsEmpty() {
		return nil
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}

	or := make(bson.A, 0, len(f.Fields))
	for _, field := range f.Fields {
		or = append(or, bson.M{key(field): pattern})
	}

	if len(or) == 1 {
		return or[0].(bson.M)
	}

	return bson.M{"$or": or}
}

// queryFilter builds the filter of q. The cursor condition is included only
// when withCursor is set.
func queryFilter(q pager.Query, withCursor bool) bson.M {
	parts := make(bson.A, 0, len(q.Where)+2)
	for _, c := range q.Where {
		parts = append(parts, conditionFilter(c))
	}

	if f := searchFilter(q.Search); f != nil {
		parts = append(parts, f)
	}

	if withCursor {
		if f := dnfFilter(q.Filter()); f != nil {
			parts = append(parts, f)
		}
	}

	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}

	return bson.M{"$and": parts}
}

func sortSpec(o pager.Orderings) bson.D {
	sort := make(bson.D, 0, len(o))
	for _, orderBy := range o {
		dir := 1
		if orderBy.Direction == pager.DirectionDESC {
			dir = -1
		}
		sort = append(sort, bson.E{Key: key(orderBy.Field), Value: dir})
	}

	return sort
}
