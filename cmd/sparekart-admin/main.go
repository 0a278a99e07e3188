package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/shubhamsharma16/SparekartAdmin/admin"
	"github.com/shubhamsharma16/SparekartAdmin/config"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Serve the admin HTTP API and analytics page."`
	List    listCmd    `cmd:"" help:"Print one page of a resource."`
	Browse  browseCmd  `cmd:"" help:"Browse resources interactively."`
	Detail  detailCmd  `cmd:"" help:"Print a purchase order by order id."`
	Update  updateCmd  `cmd:"" help:"Update fields of a document."`
	Delete  deleteCmd  `cmd:"" help:"Delete a document."`
	Metrics metricsCmd `cmd:"" help:"Print the dashboard counts."`
	Charts  chartsCmd  `cmd:"" help:"Render the analytics charts to an HTML file."`
	Seed    seedCmd    `cmd:"" help:"Insert fixtures into the configured store."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cli{Globals: Globals{out: os.Stdout}}
	kctx := kong.Parse(&c,
		kong.Name("sparekart-admin"),
		kong.Description("Back office for the Sparekart marketplace."),
		kong.UsageOnError(),
		kong.Vars{
			"config_path": config.DefaultPath,
			"resources":   strings.Join(admin.Names(), ","),
		},
	)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(&c.Globals)
	kctx.FatalIfErrorf(err)
}
