package pager

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Query_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{
			name:    "standard case, ok",
			query:   Query{Collection: "items", Orderings: Descending("createdAt"), Limit: 10, Lookahead: true},
			wantErr: false,
		},
		{
			name:    "collection is required",
			query:   Query{Orderings: Descending("createdAt"), Limit: 10},
			wantErr: true,
		},
		{
			name:    "lookahead with no limit is forbidden",
			query:   Query{Collection: "items", Orderings: Descending("createdAt"), Limit: NoLimit, Lookahead: true},
			wantErr: true,
		},
		{
			name:    "query with no orderings is invalid",
			query:   Query{Collection: "items", Limit: 10},
			wantErr: true,
		},
		{
			name: "cursor should match orderings",
			query: Query{
				Collection: "items",
				Orderings:  Descending("createdAt"),
				Limit:      10,
				After:      idCursor("x"),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if gotErr := tt.query.Validate(); (gotErr != nil) != tt.wantErr {
				t.Errorf("%s: got error = %v, want error = %v", tt.name, gotErr, tt.wantErr)
			}
		})
	}
}

func Test_Query_DatasetLimit(t *testing.T) {
	require.Equal(t, 10, Query{Limit: 10}.DatasetLimit())
	require.Equal(t, 11, Query{Limit: 10, Lookahead: true}.DatasetLimit())
	require.Equal(t, NoLimit, Query{Limit: NoLimit}.DatasetLimit())
}

func Test_Query_Matches(t *testing.T) {
	doc := NewDocument("c1", map[string]any{"driverName": "Suresh", "isCompleted": false})

	require.True(t, Query{}.Matches(doc))
	require.True(t, Query{Search: &TextFilter{Text: "sure", Fields: []string{"driverName"}}}.Matches(doc))
	require.False(t, Query{Search: &TextFilter{Text: "ramesh", Fields: []string{"driverName"}}}.Matches(doc))
	require.True(t, Query{Where: []Condition{{Field: "isCompleted", Operator: OperatorEq, Value: false}}}.Matches(doc))
	require.False(t, Query{Where: []Condition{{Field: DocumentIDField, Operator: OperatorEq, Value: "c2"}}}.Matches(doc))
}

func Test_NextPageCursor(t *testing.T) {
	base := Query{Collection: "items", Orderings: Descending("createdAt"), Limit: 2}
	withLookahead := base
	withLookahead.Lookahead = true

	docs := newItems(3)

	tests := []struct {
		name           string
		query          Query
		docs           []Document
		expectedLen    int
		expectedCursor bool
		expectedID     string
	}{
		{
			name:           "ordinary page without lookahead",
			query:          base,
			docs:           docs[:2],
			expectedLen:    2,
			expectedCursor: true,
			expectedID:     "item-02",
		},
		{
			name:           "last page without lookahead",
			query:          base,
			docs:           docs[:1],
			expectedLen:    1,
			expectedCursor: false,
		},
		{
			name:           "lookahead ordinary page",
			query:          withLookahead,
			docs:           docs,
			expectedLen:    2,
			expectedCursor: true,
			expectedID:     "item-02",
		},
		{
			name:           "last page with lookahead",
			query:          withLookahead,
			docs:           docs[:2],
			expectedLen:    2,
			expectedCursor: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, cur, err := NextPageCursor(tt.query, tt.docs)
			require.NoError(t, err)
			require.Len(t, res, tt.expectedLen)

			if !tt.expectedCursor {
				require.Nil(t, cur)
				return
			}

			require.NotNil(t, cur)
			elems := cur.Elements()
			require.Len(t, elems, 2)
			require.Equal(t, "createdAt", elems[0].Field)
			require.Equal(t, DocumentIDField, elems[1].Field)
			require.Equal(t, tt.expectedID, elems[1].Value)
		})
	}

	_, _, err := NextPageCursor(Query{}, docs)
	require.Error(t, err)
}
