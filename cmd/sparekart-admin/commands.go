package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ettle/strcase"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/analytics"
	"github.com/shubhamsharma16/SparekartAdmin/config"
	"github.com/shubhamsharma16/SparekartAdmin/httpapi"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
	"github.com/shubhamsharma16/SparekartAdmin/tui"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

var errEphemeralStore = errors.New("the memory store is not persistent, pick another --driver")

type serveCmd struct {
	Addr       string `env:"SPAREKART_ADDR" help:"Listen address, overrides server.addr."`
	Complaints string `enum:"line,bar" default:"line" help:"Chart kind of complaints per day."`
	Orders     string `enum:"line,bar" default:"line" help:"Chart kind of orders per day."`
	Products   string `enum:"bar,pie" default:"bar" help:"Chart kind of products by category."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	return g.withApp(ctx, func(a *app) error {
		srv, err := httpapi.New(httpapi.Config{
			Registry: a.registry,
			Store:    a.store,
			Logger:   a.logger,
			Charts: analytics.ChartOptions{
				Complaints: analytics.ChartKind(cmd.Complaints),
				Orders:     analytics.ChartKind(cmd.Orders),
				Products:   analytics.ChartKind(cmd.Products),
			},
		})
		if err != nil {
			return err
		}

		addr := lo.CoalesceOrEmpty(cmd.Addr, a.cfg.Server.Addr, config.DefaultAddr)
		a.logger.Info().Str("addr", addr).Msg("serving")

		return srv.Run(ctx, addr)
	})
}

type listCmd struct {
	Resource string `arg:"" enum:"${resources}" help:"Resource to list (${resources})."`
	Page     int    `short:"p" default:"1" help:"Page number."`
	Filter   string `short:"f" help:"Free text filter."`
	Format   string `enum:"table,json" default:"table" help:"Output format (table, json)."`
}

func (cmd *listCmd) Run(ctx context.Context, g *Globals) error {
	if cmd.Page < 1 {
		return fmt.Errorf("cannot list page %d: %w", cmd.Page, pager.ErrPageOutOfRange)
	}

	return g.withApp(ctx, func(a *app) error {
		res, err := a.registry.Get(cmd.Resource)
		if err != nil {
			return err
		}

		l, err := walkTo(ctx, res, a.store, cmd.Page, cmd.Filter)
		if err != nil {
			return err
		}

		if cmd.Format == formatJSON {
			return writeJSON(g, l)
		}

		return writeListing(g, l)
	})
}

// walkTo opens a session and moves forward to page. The session stops early
// at the last page.
func walkTo(ctx context.Context, res admin.Resource, r pager.Reader, page int, filter string) (*admin.Listing, error) {
	b, err := res.Browse(ctx, r)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	var l *admin.Listing
	if filter != "" {
		l, err = b.SetFilter(ctx, filter)
	} else {
		l, err = b.Load(ctx, 1)
	}

	for err == nil && l.Page < page && l.HasNext {
		l, err = b.Next(ctx)
	}

	return l, err
}

func writeListing(g *Globals, l *admin.Listing) error {
	rows := lo.Map(l.Items, func(it admin.Item, _ int) []string {
		return it.Cells
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.StatusStyle).
		Headers(l.Headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(g.out, t.String())
	fmt.Fprintf(g.out, "Page %d of %d  |  %d total\n", l.Page, l.TotalPages, l.Total)
	if l.Notice != "" {
		fmt.Fprintln(g.out, l.Notice)
	}

	return nil
}

func writeJSON(g *Globals, v any) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

type browseCmd struct {
	Resource string `arg:"" optional:"" enum:"${resources}," default:"" help:"Resource to open first."`
}

func (cmd *browseCmd) Run(ctx context.Context, g *Globals) error {
	return g.withApp(ctx, func(a *app) error {
		var opts []tui.Option
		if cmd.Resource != "" {
			opts = append(opts, tui.WithResource(cmd.Resource))
		}
		// Log lines would tear the alternate screen, keep them for debugging.
		if a.logger.GetLevel() <= zerolog.DebugLevel {
			opts = append(opts, tui.WithLogger(a.logger))
		}

		return tui.Run(ctx, a.registry, a.store, opts...)
	})
}

type detailCmd struct {
	OrderID string `arg:"" name:"order-id" help:"Order id, or document id for orders without one."`
}

func (cmd *detailCmd) Run(ctx context.Context, g *Globals) error {
	return g.withApp(ctx, func(a *app) error {
		order, err := admin.FindOrder(ctx, a.store, cmd.OrderID)
		if err != nil {
			return err
		}

		return writeJSON(g, order)
	})
}

type updateCmd struct {
	Resource  string   `arg:"" enum:"${resources}" help:"Resource of the document."`
	ID        string   `arg:"" help:"Document id."`
	Set       []string `short:"s" sep:"none" help:"Field assignment key=value, the value parsed as JSON."`
	SetString []string `sep:"none" name:"set-string" help:"Field assignment key=value, the value kept as a string."`
}

func (cmd *updateCmd) Run(ctx context.Context, g *Globals) error {
	fields, err := parseAssignments(cmd.Set, cmd.SetString)
	if err != nil {
		return err
	}

	return g.withApp(ctx, func(a *app) error {
		res, err := a.registry.Get(cmd.Resource)
		if err != nil {
			return err
		}

		if err := res.Update(ctx, a.store, cmd.ID, fields); err != nil {
			return err
		}

		fmt.Fprintf(g.out, "updated %s %s\n", res.Name(), cmd.ID)
		return nil
	})
}

// parseAssignments builds an update payload. Values in set are decoded as
// JSON and fall back to the raw text when they are not valid JSON.
func parseAssignments(set, setString []string) (map[string]any, error) {
	fields := make(map[string]any, len(set)+len(setString))

	for _, raw := range set {
		key, value, err := splitAssignment(raw)
		if err != nil {
			return nil, err
		}

		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		fields[key] = v
	}

	for _, raw := range setString {
		key, value, err := splitAssignment(raw)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", admin.ErrInvalidPayload)
	}

	return fields, nil
}

func splitAssignment(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: assignment '%s' is not key=value", admin.ErrInvalidPayload, raw)
	}

	return key, value, nil
}

type deleteCmd struct {
	Resource string `arg:"" enum:"${resources}" help:"Resource of the document."`
	ID       string `arg:"" help:"Document id."`
}

func (cmd *deleteCmd) Run(ctx context.Context, g *Globals) error {
	return g.withApp(ctx, func(a *app) error {
		res, err := a.registry.Get(cmd.Resource)
		if err != nil {
			return err
		}

		if err := res.Delete(ctx, a.store, cmd.ID); err != nil {
			return err
		}

		fmt.Fprintf(g.out, "deleted %s %s\n", res.Name(), cmd.ID)
		return nil
	})
}

type metricsCmd struct {
	Format string `enum:"table,json" default:"table" help:"Output format (table, json)."`
}

func (cmd *metricsCmd) Run(ctx context.Context, g *Globals) error {
	return g.withApp(ctx, func(a *app) error {
		m, err := analytics.FetchMetrics(ctx, a.store)
		if err != nil {
			return err
		}

		if cmd.Format == formatJSON {
			return writeJSON(g, m)
		}

		rows := [][]string{
			metricRow("users", m.Users),
			metricRow("purchaseOrders", m.PurchaseOrders),
			metricRow("complaints", m.Complaints),
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tui.StatusStyle).
			Headers("Metric", "Count").
			Rows(rows...)

		fmt.Fprintln(g.out, t.String())
		return nil
	})
}

func metricRow(key string, n int64) []string {
	return []string{strcase.ToCase(key, strcase.TitleCase, ' '), fmt.Sprint(n)}
}

type chartsCmd struct {
	Out        string `short:"o" default:"analytics.html" type:"path" help:"HTML file to write."`
	Complaints string `enum:"line,bar" default:"line" help:"Chart kind of complaints per day."`
	Orders     string `enum:"line,bar" default:"line" help:"Chart kind of orders per day."`
	Products   string `enum:"bar,pie" default:"bar" help:"Chart kind of products by category."`
}

func (cmd *chartsCmd) Run(ctx context.Context, g *Globals) error {
	opts := analytics.ChartOptions{
		Complaints: analytics.ChartKind(cmd.Complaints),
		Orders:     analytics.ChartKind(cmd.Orders),
		Products:   analytics.ChartKind(cmd.Products),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	return g.withApp(ctx, func(a *app) (err error) {
		d, err := analytics.LoadDashboard(ctx, a.store)
		if err != nil {
			return err
		}

		f, err := os.Create(cmd.Out)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", cmd.Out, err)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()

		if err := d.Render(f, opts); err != nil {
			return err
		}

		fmt.Fprintf(g.out, "wrote %s\n", cmd.Out)
		return nil
	})
}

type seedCmd struct {
	File string `short:"f" type:"existingfile" help:"YAML fixtures to insert instead of the demo set."`
}

func (cmd *seedCmd) Run(ctx context.Context, g *Globals) error {
	fixtures, err := cmd.fixtures()
	if err != nil {
		return err
	}
	g.noSeed = true

	return g.withApp(ctx, func(a *app) error {
		if a.cfg.Store.Driver == config.DriverMemory {
			return errEphemeralStore
		}

		ins, ok := a.store.(pager.Inserter)
		if !ok {
			return fmt.Errorf("store driver '%s' cannot insert", a.cfg.Store.Driver)
		}

		n, err := admin.Seed(ctx, ins, fixtures)
		if err != nil {
			return err
		}

		fmt.Fprintf(g.out, "inserted %d documents into %s\n", n, strings.Join(fixtures.Collections(), ", "))
		return nil
	})
}

func (cmd *seedCmd) fixtures() (admin.Fixtures, error) {
	if cmd.File == "" {
		return admin.DemoFixtures()
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return nil, fmt.Errorf("cannot open fixtures: %w", err)
	}
	defer f.Close()

	return admin.LoadFixtures(f)
}
