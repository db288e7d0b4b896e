package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/events"
	"github.com/simonvc/minibooks/internal/events/kafka"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/server"
	"github.com/simonvc/minibooks/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, book, err := openBook(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pub, closePub := newPublisher()
		defer closePub()

		addr := cfg.Server.Listen
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := server.New(book, addr, serverOptions(pub))
		return srv.ListenAndServe(ctx)
	},
}

// openBook opens the configured database and loads the ledger from it,
// seeding the chart of accounts on first use.
func openBook(ctx context.Context) (*store.Store, *ledger.Book, error) {
	chart, err := cfg.SeedChart()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	book, err := ledger.Open(ctx, ledger.WithBackend(st), ledger.WithChart(chart))
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}
	return st, book, nil
}

func newPublisher() (events.Publisher, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.LogPublisher{}, func() {}
	}
	p := kafka.NewPublisher(cfg.Kafka.Brokers)
	log.Printf("publishing events to kafka %v", cfg.Kafka.Brokers)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Printf("closing kafka publisher: %v", err)
		}
	}
}

func serverOptions(pub events.Publisher) server.Options {
	return server.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		PostRate:    cfg.Server.PostRate,
		PostBurst:   cfg.Server.PostBurst,
		ReportTTL:   time.Duration(cfg.Server.CacheSeconds) * time.Second,
		Publisher:   pub,
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}
