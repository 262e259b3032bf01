package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"caradmin/internal/backend"
	"caradmin/internal/database"
	"caradmin/internal/domain"
	"caradmin/internal/modules/export"
	"caradmin/internal/pkg/slogx"
	"caradmin/internal/pkg/ymlfeed"
	"caradmin/internal/repository"
)

type cli struct {
	LogLevel string `default:"warn" env:"LOG_LEVEL" help:"Log level (debug, info, warn, error)."`

	Export  exportCmd  `cmd:"" default:"withargs" help:"Generate the YML catalog."`
	History historyCmd `cmd:"" help:"Show recent catalog exports."`
}

type exportCmd struct {
	API     string        `default:"http://localhost:3001" env:"UPSTREAM_API_URL" help:"Backend base URL."`
	Timeout time.Duration `default:"30s" env:"UPSTREAM_TIMEOUT" help:"Backend request timeout."`
	Shop    string        `type:"path" env:"FEED_SHOP_CONFIG" help:"YAML shop description."`
	Out     string        `short:"o" type:"path" help:"Output file; stdout when empty."`
	DB      string        `env:"DATABASE_URL" help:"Record the export in this database."`
}

type historyCmd struct {
	DB    string `required:"" env:"DATABASE_URL" help:"Console database."`
	Limit int    `default:"20" help:"How many exports to show."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("ymlexport"),
		kong.Description("Yandex.Market YML catalog of the cars on sale."),
		kong.UsageOnError(),
	)
	slogx.New(slogx.Config{Service: "ymlexport", Level: c.LogLevel, Output: os.Stderr})
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *exportCmd) Run(ctx context.Context) error {
	shop := ymlfeed.DefaultShop()
	if cmd.Shop != "" {
		var err error
		if shop, err = ymlfeed.LoadShopConfig(cmd.Shop); err != nil {
			return err
		}
	}

	var history export.History
	if cmd.DB != "" {
		db, err := database.Connect(cmd.DB)
		if err != nil {
			return fmt.Errorf("ymlexport: connect: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		history = repository.NewFeedExportRepository(db)
	}

	svc := export.NewService(history, shop, nil)
	client := backend.New(cmd.API, backend.WithTimeout(cmd.Timeout))

	exp, err := svc.Generate(ctx, client, domain.FeedTriggerCLI, nil)
	if err != nil {
		return fmt.Errorf("ymlexport: %w", err)
	}

	var w io.Writer = os.Stdout
	if cmd.Out != "" {
		f, err := os.Create(cmd.Out)
		if err != nil {
			return fmt.Errorf("ymlexport: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, exp.Document); err != nil {
		return fmt.Errorf("ymlexport: write: %w", err)
	}

	fmt.Fprintf(os.Stderr, "offers=%d skipped=%d bytes=%d sha256=%s\n",
		exp.Record.Offers, exp.Record.Skipped, exp.Record.Bytes, exp.Record.SHA256)
	return nil
}

func (cmd *historyCmd) Run(ctx context.Context) error {
	db, err := database.Connect(cmd.DB)
	if err != nil {
		return fmt.Errorf("ymlexport: connect: %w", err)
	}
	list, err := repository.NewFeedExportRepository(db).List(ctx, cmd.Limit)
	if err != nil {
		return fmt.Errorf("ymlexport: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tTRIGGER\tOFFERS\tSKIPPED\tBYTES\tSHA256")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.12s\n",
			e.CreatedAt.Format(time.RFC3339), e.Trigger, e.Offers, e.Skipped, e.Bytes, e.SHA256)
	}
	return tw.Flush()
}
