package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

var ErrUnsupportedChart = errors.New("unsupported chart type")

const defaultChartHeight = "320px"

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

// Dashboard holds the series of the analytics page.
type Dashboard struct {
	ComplaintsPerDay []Point `json:"complaintsPerDay"`
	OrdersPerDay     []Point `json:"ordersPerDay"`
	ProductsByType   []Point `json:"productsByCategory"`
}

// LoadDashboard scans the three collections concurrently.
func LoadDashboard(ctx context.Context, r pager.Reader) (*Dashboard, error) {
	var d Dashboard

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.ComplaintsPerDay, err = DailyCounts(gCtx, r, admin.ComplaintsCollection, "createdAt")
		return err
	})
	g.Go(func() (err error) {
		d.OrdersPerDay, err = DailyCounts(gCtx, r, admin.PurchaseOrdersCollection, "orderPlacedAt")
		return err
	})
	g.Go(func() (err error) {
		d.ProductsByType, err = CategoryCounts(gCtx, r)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &d, nil
}

// ChartOptions selects the chart kind per series. Complaints and orders
// accept line or bar, products accept bar or pie.
type ChartOptions struct {
	Complaints ChartKind
	Orders     ChartKind
	Products   ChartKind
	Theme      string
}

func (o ChartOptions) withDefaults() ChartOptions {
	o.Complaints = lo.CoalesceOrEmpty(o.Complaints, ChartLine)
	o.Orders = lo.CoalesceOrEmpty(o.Orders, ChartLine)
	o.Products = lo.CoalesceOrEmpty(o.Products, ChartBar)
	o.Theme = lo.CoalesceOrEmpty(o.Theme, types.ThemeWesteros)

	return o
}

func (o ChartOptions) Validate() error {
	o = o.withDefaults()

	if !lo.Contains([]ChartKind{ChartLine, ChartBar}, o.Complaints) {
		return fmt.Errorf("%w for complaints: '%s'", ErrUnsupportedChart, o.Complaints)
	}

	if !lo.Contains([]ChartKind{ChartLine, ChartBar}, o.Orders) {
		return fmt.Errorf("%w for orders: '%s'", ErrUnsupportedChart, o.Orders)
	}

	if !lo.Contains([]ChartKind{ChartBar, ChartPie}, o.Products) {
		return fmt.Errorf("%w for products: '%s'", ErrUnsupportedChart, o.Products)
	}

	return nil
}

// Render writes the dashboard as a standalone HTML page.
func (d *Dashboard) Render(w io.Writer, o ChartOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	o = o.withDefaults()

	page := components.NewPage()
	page.PageTitle = "Sparekart Analytics"
	page.AddCharts(
		seriesChart(o.Complaints, "Complaints per Day", "Complaints", d.ComplaintsPerDay, o.Theme),
		seriesChart(o.Orders, "Purchase Orders per Day", "Orders", d.OrdersPerDay, o.Theme),
		seriesChart(o.Products, "Products by Category", "Products", d.ProductsByType, o.Theme),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("cannot render analytics: %w", err)
	}

	return nil
}

func seriesChart(kind ChartKind, title, name string, points []Point, theme string) components.Charter {
	labels := lo.Map(points, func(p Point, _ int) string { return p.Label })

	switch kind {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globalChartOptions(title, theme)...)
		bar.SetXAxis(labels)
		bar.AddSeries(name, lo.Map(points, func(p Point, _ int) opts.BarData {
			return opts.BarData{Name: p.Label, Value: p.Count}
		}))
		return bar
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(globalChartOptions(title, theme)...)
		pie.AddSeries(name, lo.Map(points, func(p Point, _ int) opts.PieData {
			return opts.PieData{Name: p.Label, Value: p.Count}
		}))
		return pie
	default:
		line := charts.NewLine()
		line.SetGlobalOptions(globalChartOptions(title, theme)...)
		line.SetXAxis(labels)
		line.AddSeries(name, lo.Map(points, func(p Point, _ int) opts.LineData {
			return opts.LineData{Name: p.Label, Value: p.Count}
		}))
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return line
	}
}

func globalChartOptions(title, theme string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  theme,
			Width:  "100%",
			Height: defaultChartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
