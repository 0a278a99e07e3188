package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/analytics"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
	"github.com/shubhamsharma16/SparekartAdmin/store/memstore"
)

func newTestServer(t *testing.T, store pager.Store) *Server {
	t.Helper()

	if store == nil {
		f, err := admin.DemoFixtures()
		require.NoError(t, err)

		s := memstore.New()
		_, err = admin.Seed(context.Background(), s, f)
		require.NoError(t, err)
		store = s
	}

	reg, err := admin.NewRegistry()
	require.NoError(t, err)

	srv, err := New(Config{
		Registry: reg,
		Store:    store,
		Logger:   zerolog.New(zerolog.NewTestWriter(t)),
	})
	require.NoError(t, err)

	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func decodeListing(t *testing.T, data []byte) admin.Listing {
	t.Helper()

	var l admin.Listing
	require.NoError(t, json.Unmarshal(data, &l))

	return l
}

func Test_Server_Healthz(t *testing.T) {
	resp, body := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func Test_Server_List(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodGet, "/all-complaints", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first := decodeListing(t, body)
	require.EqualValues(t, 25, first.Total)
	require.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Items, 10)
	require.True(t, first.HasNext)
	require.NotEmpty(t, first.Cursors)

	resp, body = do(t, srv, http.MethodGet, "/all-complaints?page=2&cursors="+url.QueryEscape(first.Cursors), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	second := decodeListing(t, body)
	require.Equal(t, 2, second.Page)
	require.Empty(t, second.Notice)
	require.Len(t, second.Items, 10)

	ids := map[string]bool{}
	for _, item := range append(first.Items, second.Items...) {
		require.False(t, ids[item.ID], "duplicate %s", item.ID)
		ids[item.ID] = true
	}
}

func Test_Server_List_CursorGap(t *testing.T) {
	resp, body := do(t, newTestServer(t, nil), http.MethodGet, "/all-complaints?page=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	l := decodeListing(t, body)
	require.Equal(t, 1, l.Page)
	require.Contains(t, l.Notice, "cursor gap")
}

func Test_Server_List_Filter(t *testing.T) {
	resp, body := do(t, newTestServer(t, nil), http.MethodGet, "/all-complaints?filter=zzzz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	l := decodeListing(t, body)
	require.Empty(t, l.Items)
	require.EqualValues(t, 25, l.Total)
	require.Equal(t, 10, l.Fetched)
}

func Test_Server_List_BadCursors(t *testing.T) {
	resp, _ := do(t, newTestServer(t, nil), http.MethodGet, "/users?page=2&cursors=%25%25", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_Server_List_ForeignCursors(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, srv, http.MethodGet, "/purchase-orders", "")
	orders := decodeListing(t, body)
	require.NotEmpty(t, orders.Cursors)

	resp, body := do(t, srv, http.MethodGet, "/products?page=2&cursors="+url.QueryEscape(orders.Cursors), "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(body), pager.ErrInvalidCursor.Error())
}

func Test_Server_List_CursorsOfAnotherFilter(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, srv, http.MethodGet, "/all-complaints", "")
	first := decodeListing(t, body)

	resp, body := do(t, srv, http.MethodGet, "/all-complaints?page=2&filter=CMP&cursors="+url.QueryEscape(first.Cursors), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	l := decodeListing(t, body)
	require.Equal(t, 1, l.Page)
	require.Contains(t, l.Notice, "cursor gap")
	require.Equal(t, "CMP", l.Filter)
}

func Test_Server_UnknownRoute(t *testing.T) {
	resp, _ := do(t, newTestServer(t, nil), http.MethodGet, "/complaints", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_Server_Update(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "ok", target: "/all-complaints/cmp-02", body: `{"isCompleted": true}`, status: http.StatusOK},
		{name: "wrong type", target: "/all-complaints/cmp-02", body: `{"isCompleted": "yes"}`, status: http.StatusUnprocessableEntity},
		{name: "read-only field", target: "/all-complaints/cmp-02", body: `{"driverName": "x"}`, status: http.StatusUnprocessableEntity},
		{name: "no editable fields", target: "/purchase-orders/po-01", body: `{"orderId": "x"}`, status: http.StatusUnprocessableEntity},
		{name: "missing document", target: "/all-complaints/missing", body: `{"isCompleted": true}`, status: http.StatusNotFound},
		{name: "malformed", target: "/all-complaints/cmp-02", body: `{`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, srv, http.MethodPatch, tt.target, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func Test_Server_Delete(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := do(t, srv, http.MethodDelete, "/all-complaints/cmp-02", "")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/shopkeeper-request/req-01", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/shopkeeper-request/req-01", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := do(t, srv, http.MethodGet, "/shopkeeper-request", "")
	require.EqualValues(t, 5, decodeListing(t, body).Total)
}

func Test_Server_OrderDetail(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodGet, "/order-detail/ORD-1003", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var order admin.OrderDetail
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "po-04", order.ID)
	assert.Equal(t, "UPI", order.BillingDetails.PaymentMethod)

	resp, _ = do(t, srv, http.MethodGet, "/order-detail/ORD-9999", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_Server_Metrics(t *testing.T) {
	resp, body := do(t, newTestServer(t, nil), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"users":12,"purchaseOrders":12,"complaints":25}`, string(body))
}

func Test_Server_Analytics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodGet, "/analytics?products=pie&orders=bar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, string(body), "Products by Category")

	resp, _ = do(t, srv, http.MethodGet, "/analytics?products=line", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/analytics/series", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d analytics.Dashboard
	require.NoError(t, json.Unmarshal(body, &d))
	require.Len(t, d.OrdersPerDay, 6)
}

type failingStore struct{}

var errUnavailable = errors.New("store unavailable")

func (failingStore) Count(context.Context, pager.Query) (int64, error) { return 0, errUnavailable }

func (failingStore) Find(context.Context, pager.Query) ([]pager.Document, error) {
	return nil, errUnavailable
}

func (failingStore) Update(context.Context, string, string, map[string]any) error {
	return errUnavailable
}

func (failingStore) Delete(context.Context, string, string) error { return errUnavailable }

func Test_Server_StoreFailures(t *testing.T) {
	srv := newTestServer(t, failingStore{})

	for _, target := range []string{"/metrics", "/users", "/analytics/series"} {
		resp, body := do(t, srv, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadGateway, resp.StatusCode, target)

		var e errorBody
		require.NoError(t, json.Unmarshal(body, &e))
		require.True(t, e.Retryable, target)
	}

	resp, body := do(t, srv, http.MethodPatch, "/all-complaints/cmp-02", `{"isCompleted": true}`)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	require.False(t, e.Retryable)
	require.Contains(t, e.Error, "mutation failed")
}

func Test_New_Validation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	reg, err := admin.NewRegistry()
	require.NoError(t, err)

	_, err = New(Config{Registry: reg, Store: memstore.New(), Charts: analytics.ChartOptions{Products: analytics.ChartLine}})
	require.ErrorIs(t, err, analytics.ErrUnsupportedChart)
}
