package gormstore

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

var sqlMockFnList = []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
	newGORMMySQLMock,
	newGORMPostgresMock,
}

func Test_Store_Find(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	after := pager.CursorAt(
		pager.NewDocument("c05", map[string]any{"createdAt": createdAt}),
		pager.Descending("createdAt"),
	)

	tests := []struct {
		name          string
		query         pager.Query
		expectedQuery string
		expectedArgs  []driver.Value
	}{
		{
			name: "first page",
			query: pager.Query{
				Collection: "Complaints/ComplaintRequests/ComplaintRequests",
				Orderings:  pager.Descending("createdAt"),
				Limit:      10,
			},
			expectedQuery: "^SELECT \\* FROM " + quoted("complaint_requests") +
				" ORDER BY created_at DESC" + nullsLast + ", id DESC LIMIT 10$",
		},
		{
			name: "page after cursor with lookahead",
			query: pager.Query{
				Collection: "Complaints/ComplaintRequests/ComplaintRequests",
				Orderings:  pager.Descending("createdAt"),
				After:      after,
				Limit:      10,
				Lookahead:  true,
			},
			expectedQuery: "^SELECT \\* FROM " + quoted("complaint_requests") +
				" WHERE \\(\\(created_at < " + placeholder + " OR created_at IS NULL\\) OR \\(created_at = " + placeholder + " AND id < " + placeholder + "\\)\\)" +
				" ORDER BY created_at DESC" + nullsLast + ", id DESC LIMIT 11$",
			expectedArgs: []driver.Value{sqlmock.AnyArg(), sqlmock.AnyArg(), "c05"},
		},
		{
			name: "equality filter without limit",
			query: pager.Query{
				Collection: "Complaints/ComplaintRequests/ComplaintRequests",
				Orderings:  pager.Descending("createdAt"),
				Limit:      pager.NoLimit,
				Where:      []pager.Condition{{Field: "isCompleted", Operator: pager.OperatorEq, Value: true}},
			},
			expectedQuery: "^SELECT \\* FROM " + quoted("complaint_requests") +
				" WHERE is_completed = " + placeholder + " ORDER BY created_at DESC" + nullsLast + ", id DESC$",
			expectedArgs: []driver.Value{true},
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				if err != nil {
					t.Fatalf("gorm open: %v", err)
				}

				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if len(tt.expectedArgs) > 0 {
					expectation = expectation.WithArgs(tt.expectedArgs...)
				}
				expectation.WillReturnRows(
					sqlmock.NewRows([]string{"id", "driver_name", "created_at", "shipping_address__city"}).
						AddRow("c04", "Ravi", createdAt.Add(-time.Hour), "Pune"),
				)

				docs, err := New(db).Find(context.Background(), tt.query)
				require.NoError(t, err)
				require.Len(t, docs, 1)
				require.Equal(t, "c04", docs[0].ID)
				require.Equal(t, "Ravi", docs[0].String("driverName"))
				require.Equal(t, "Pune", docs[0].String("shippingAddress.city"))

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_Store_Count(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			if err != nil {
				t.Fatalf("gorm open: %v", err)
			}

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + quoted("complaints") +
				" WHERE is_completed = " + placeholder +
				" AND POSITION\\(" + placeholder + " IN LOWER\\(driver_name\\)\\) > 0$").
				WithArgs(false, "ravi").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

			total, err := New(db).Count(context.Background(), pager.Query{
				Collection: "complaints",
				Orderings:  pager.Descending("createdAt"),
				After:      pager.NewCursor(pager.CursorElement{Field: "createdAt", Value: "x", Operator: pager.OperatorLT}),
				Search:     &pager.TextFilter{Text: "Ravi", Fields: []string{"driverName"}},
				Where:      []pager.Condition{{Field: "isCompleted", Operator: pager.OperatorEq, Value: false}},
			})
			require.NoError(t, err)
			require.EqualValues(t, 3, total)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Store_Update(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			if err != nil {
				t.Fatalf("gorm open: %v", err)
			}

			dbMock.ExpectExec("^UPDATE " + quoted("complaints") +
				" SET " + quoted("is_completed") + "=" + placeholder +
				" WHERE " + quoted("id") + " = " + placeholder + "$").
				WithArgs(true, "c01").
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := New(db).Update(context.Background(), "complaints", "c01", map[string]any{"isCompleted": true})
			require.NoError(t, err)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Store_Update_NotFound(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			if err != nil {
				t.Fatalf("gorm open: %v", err)
			}

			dbMock.ExpectExec("^UPDATE " + quoted("users")).
				WillReturnResult(sqlmock.NewResult(0, 0))
			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + quoted("users") +
				" WHERE " + quoted("user_id") + " = " + placeholder + "$").
				WithArgs("u9").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

			s := New(db, WithCollection("Users", Collection{IDColumn: "user_id"}))
			err := s.Update(context.Background(), "Users", "u9", map[string]any{"name": "Asha"})
			require.ErrorIs(t, err, pager.ErrDocumentNotFound)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Store_Update_UnchangedRow(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectExec("^UPDATE " + quoted("users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + quoted("users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, New(db).Update(context.Background(), "Users", "u1", map[string]any{"name": "Asha"}))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Store_Update_Nested(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectExec("^UPDATE " + quoted("orders") +
		" SET " + quoted("order_status__status") + "=" + placeholder +
		" WHERE " + quoted("id") + " = " + placeholder + "$").
		WithArgs("shipped", "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, New(db).Update(context.Background(), "Orders", "o1", map[string]any{"orderStatus.status": "shipped"}))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Store_Delete(t *testing.T) {
	for _, sqlMockFn := range sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			if err != nil {
				t.Fatalf("gorm open: %v", err)
			}

			dbMock.ExpectExec("^DELETE FROM " + quoted("complaints") +
				" WHERE " + quoted("id") + " = " + placeholder + "$").
				WithArgs("c01").
				WillReturnResult(sqlmock.NewResult(0, 1))
			dbMock.ExpectExec("^DELETE FROM " + quoted("complaints")).
				WithArgs("c01").
				WillReturnResult(sqlmock.NewResult(0, 0))

			s := New(db)
			require.NoError(t, s.Delete(context.Background(), "complaints", "c01"))
			require.ErrorIs(t, s.Delete(context.Background(), "complaints", "c01"), pager.ErrDocumentNotFound)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_Store_Insert(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectExec("^INSERT INTO " + quoted("complaints") +
		" \\(" + quoted("driver_name") + "," + quoted("id") + "," + quoted("shipping_address__city") + "\\)" +
		" VALUES \\(\\?,\\?,\\?\\),\\(\\?,\\?,\\?\\)$").
		WithArgs("Ravi", "c01", "Pune", "Asha", "c02", "Mumbai").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err = New(db).Insert(context.Background(), "complaints",
		pager.NewDocument("c01", map[string]any{"driverName": "Ravi", "shippingAddress": map[string]any{"city": "Pune"}}),
		pager.NewDocument("c02", map[string]any{"driverName": "Asha", "shippingAddress": map[string]any{"city": "Mumbai"}}),
	)
	require.NoError(t, err)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_Store_UnsafeColumn(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	s := New(db, WithCollection("complaints", Collection{
		Columns: map[string]string{"driverName": "driver_name; DROP TABLE complaints"},
	}))

	_, err = s.Find(context.Background(), pager.Query{
		Collection: "complaints",
		Orderings:  pager.Descending("createdAt"),
		Limit:      10,
		Search:     &pager.TextFilter{Text: "x", Fields: []string{"driverName"}},
	})
	require.ErrorIs(t, err, errUnsafeColumn)

	err = s.Update(context.Background(), "complaints", "c1", map[string]any{"driverName": "x"})
	require.ErrorIs(t, err, errUnsafeColumn)
}

func Test_Collection_document(t *testing.T) {
	c := Collection{}.withDefaults("Orders")

	doc := c.document(map[string]any{
		"id":                     int64(7),
		"order_id":               []byte("ORD-7"),
		"items":                  `[{"name":"Brake pad"}]`,
		"shipping_address__city": "Pune",
	})

	require.Equal(t, "7", doc.ID)
	require.Equal(t, "ORD-7", doc.String("orderId"))
	require.Equal(t, "Pune", doc.String("shippingAddress.city"))
	require.Len(t, doc.List("items"), 1)
}
