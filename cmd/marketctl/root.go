package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/agrimarket/internal/offers"
	"github.com/angelmondragon/agrimarket/internal/orders"
	"github.com/angelmondragon/agrimarket/internal/reports"
	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
)

// app holds the services a command needs. Tests fill it directly; the binary
// builds it from the environment on first use.
type app struct {
	out        io.Writer
	jsonOutput bool
	verbose    bool

	client *db.Client
	logg   *logger.Logger
	offers offers.Service
	orders orders.Service
	reader *reports.Reader
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "marketctl",
		Short: "Operate the agrimarket data model",
		Long: `marketctl reads the marketplace reporting views and flips the few
stored states operators manage by hand: offer activation and order status.

Configuration comes from AGRIMARKET_* environment variables (a .env file is
loaded when present).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Print the full error chain on failure")
	root.SetOut(a.out)

	root.AddCommand(newOffersCmd(a), newOrdersCmd(a), newReportsCmd(a))
	return root
}

func (a *app) init(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.logg = logger.New(logger.Options{
		ServiceName: "marketctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	client, err := db.New(ctx, cfg.DB, a.logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, a.logg, client, nil); err != nil {
		_ = client.Close()
		return err
	}
	return a.wire(client, metrics.NewWriteMetrics(nil))
}

// wire builds every service on top of client.
func (a *app) wire(client *db.Client, m *metrics.WriteMetrics) error {
	if a.logg == nil {
		a.logg = logger.Nop()
	}
	offerSvc, err := offers.NewService(client, offers.NewRepository(client.DB()), a.logg, m)
	if err != nil {
		return err
	}
	orderSvc, err := orders.NewService(client, orders.NewRepository(client.DB()), a.logg, m)
	if err != nil {
		return err
	}
	reader, err := reports.NewReaderFromClient(client, a.logg)
	if err != nil {
		return err
	}
	a.client, a.offers, a.orders, a.reader = client, offerSvc, orderSvc, reader
	return nil
}

func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
		a.client = nil
	}
}
