package pager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Compare(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		a    any
		b    any
		want int
	}{
		{"nil equals nil", nil, nil, 0},
		{"nil before string", nil, "a", -1},
		{"string after nil", "a", nil, 1},
		{"false before true", false, true, -1},
		{"int vs float64 cross type", 10, 10.0, 0},
		{"int64 less than float", int64(3), 3.5, -1},
		{"uint greater than int", uint(7), 2, 1},
		{"strings lexicographic", "abc", "abd", -1},
		{"times ordered", late, early, 1},
		{"numbers before strings", 99, "1", -1},
		{"strings before times", "z", early, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("%s: Compare(%v, %v)=%d want %d", tt.name, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func Test_Condition_Match(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	createdText, _ := created.MarshalText()
	doc := NewDocument("doc-5", map[string]any{
		"price":     120,
		"createdAt": created,
		"shippingAddress": map[string]any{
			"fullName": "Asha",
		},
	})

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"number less than", Condition{Field: "price", Operator: OperatorLT, Value: 200.0}, true},
		{"number greater than fails", Condition{Field: "price", Operator: OperatorGT, Value: 200}, false},
		{"timestamp string is normalized", Condition{Field: "createdAt", Operator: OperatorEq, Value: string(createdText)}, true},
		{"timestamp bytes are normalized", Condition{Field: "createdAt", Operator: OperatorGT, Value: []byte("2024-02-01T00:00:00Z")}, true},
		{"document id", Condition{Field: DocumentIDField, Operator: OperatorLT, Value: "doc-6"}, true},
		{"nested field", Condition{Field: "shippingAddress.fullName", Operator: OperatorEq, Value: "Asha"}, true},
		{"missing field sorts first", Condition{Field: "missing", Operator: OperatorLT, Value: "a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Match(doc); got != tt.want {
				t.Errorf("%s: got %v want %v", tt.name, got, tt.want)
			}
		})
	}
}

func Test_DNF_Match(t *testing.T) {
	dnf := NewCursor(
		CursorElement{Field: "createdAt", Value: 10, Operator: OperatorLT},
		CursorElement{Field: DocumentIDField, Value: "b", Operator: OperatorLT},
	).DNF()

	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{"older order value", NewDocument("z", map[string]any{"createdAt": 9}), true},
		{"same order value lower id", NewDocument("a", map[string]any{"createdAt": 10}), true},
		{"same order value same id", NewDocument("b", map[string]any{"createdAt": 10}), false},
		{"same order value higher id", NewDocument("c", map[string]any{"createdAt": 10}), false},
		{"newer order value", NewDocument("a", map[string]any{"createdAt": 11}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dnf.Match(tt.doc); got != tt.want {
				t.Errorf("%s: got %v want %v", tt.name, got, tt.want)
			}
		})
	}

	require.True(t, DNF(nil).Match(NewDocument("any", nil)))
	require.Equal(t, "TRUE", DNF(nil).String())
}
