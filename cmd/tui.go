package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/events"
	"github.com/simonvc/minibooks/internal/server"
	"github.com/simonvc/minibooks/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Long:  "Opens the books in a terminal UI. Without --server the local database is served on a private loopback port for the session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		addr := flagServer
		if !cmd.Flags().Changed("server") {
			local, stop, err := serveLocal(ctx)
			if err != nil {
				return err
			}
			defer stop()
			addr = local
		}

		app := tui.NewApp(client.New(addr), cfg.Business.Name)
		_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
		return err
	},
}

// serveLocal opens the configured database and serves it on an ephemeral
// loopback port. stop shuts the server down and closes the database.
func serveLocal(ctx context.Context) (string, func(), error) {
	st, book, err := openBook(ctx)
	if err != nil {
		return "", nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		st.Close()
		return "", nil, fmt.Errorf("embedded server: %w", err)
	}

	opts := serverOptions(events.Nop{})
	opts.Quiet = true
	opts.PostRate = 0

	srvCtx, shutdown := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.New(book, ln.Addr().String(), opts).Serve(srvCtx, ln); err != nil {
			log.Printf("embedded server: %v", err)
		}
	}()
	stop := func() {
		shutdown()
		<-done
		st.Close()
	}

	addr := "http://" + ln.Addr().String()
	if err := waitReady(ctx, client.New(addr), 5*time.Second); err != nil {
		stop()
		return "", nil, err
	}
	return addr, stop, nil
}

func waitReady(ctx context.Context, c *client.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		if c.Ping(ctx) == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.New("timeout waiting for embedded server")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
