package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/analytics"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, pager.ErrDocumentNotFound), errors.Is(err, admin.ErrUnknownResource):
		return fiber.StatusNotFound, false
	case errors.Is(err, admin.ErrInvalidPayload):
		return fiber.StatusUnprocessableEntity, false
	case errors.Is(err, admin.ErrNotDeletable):
		return fiber.StatusMethodNotAllowed, false
	case errors.Is(err, pager.ErrFetchFailed):
		return fiber.StatusBadGateway, true
	case errors.Is(err, pager.ErrMutationFailed):
		return fiber.StatusBadGateway, false
	case errors.Is(err, errBadRequest), errors.Is(err, pager.ErrPageOutOfRange),
		errors.Is(err, pager.ErrInvalidCursor), errors.Is(err, analytics.ErrUnsupportedChart):
		return fiber.StatusBadRequest, false
	default:
		return fiber.StatusInternalServerError, false
	}
}

func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status, retryable := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(errorBody{Error: err.Error(), Retryable: retryable})
}

// handleList serves ?page=&filter=&cursors= where cursors is the token
// returned by the previous page. A token of another filter or total starts
// over from page 1.
func (s *Server) handleList(res admin.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table, err := pager.DecodeCursorTable(c.Query("cursors"))
		if err != nil {
			return s.respondError(c, fmt.Errorf("%w: %w", errBadRequest, err))
		}

		listing, err := res.Fetch(c.UserContext(), s.store, pager.Request{
			Page:   c.QueryInt("page", 1),
			Filter: c.Query("filter"),
			Table:  table,
		})
		if err != nil {
			return s.respondError(c, err)
		}

		return c.JSON(listing)
	}
}

func (s *Server) handleUpdate(res admin.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields map[string]any
		if err := json.Unmarshal(c.Body(), &fields); err != nil {
			return s.respondError(c, fmt.Errorf("%w: %w", errBadRequest, err))
		}

		if err := res.Update(c.UserContext(), s.store, c.Params("id"), fields); err != nil {
			return s.respondError(c, err)
		}

		return c.JSON(fiber.Map{"status": "updated", "id": c.Params("id")})
	}
}

func (s *Server) handleDelete(res admin.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := res.Delete(c.UserContext(), s.store, c.Params("id")); err != nil {
			return s.respondError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (s *Server) handleOrderDetail(c *fiber.Ctx) error {
	order, err := admin.FindOrder(c.UserContext(), s.store, c.Params("orderId"))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(order)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	m, err := analytics.FetchMetrics(c.UserContext(), s.store)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(m)
}

func (s *Server) handleSeries(c *fiber.Ctx) error {
	d, err := analytics.LoadDashboard(c.UserContext(), s.store)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(d)
}

// handleAnalytics renders the charts page. ?complaints=, ?orders= and
// ?products= select the chart kinds.
func (s *Server) handleAnalytics(c *fiber.Ctx) error {
	o := s.charts
	if v := c.Query("complaints"); v != "" {
		o.Complaints = analytics.ChartKind(v)
	}
	if v := c.Query("orders"); v != "" {
		o.Orders = analytics.ChartKind(v)
	}
	if v := c.Query("products"); v != "" {
		o.Products = analytics.ChartKind(v)
	}

	if err := o.Validate(); err != nil {
		return s.respondError(c, err)
	}

	d, err := analytics.LoadDashboard(c.UserContext(), s.store)
	if err != nil {
		return s.respondError(c, err)
	}

	var buf bytes.Buffer
	if err = d.Render(&buf, o); err != nil {
		return s.respondError(c, err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
