package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
	"github.com/vovakirdan/tui-skybattle/internal/server"
)

var (
	serveAddr     string
	serveHTTPAddr string
	serveNoHTTP   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the game over SSH",
	Long: `Start an SSH server that lets players fly the campaign remotely,
with an HTTP API for levels, best times, live spectating and metrics.

Examples:
  skybattle serve
  skybattle serve --addr :2222 --http :9090
  skybattle serve --no-http

Players connect with:
  ssh -p 23234 localhost

Spectators connect with:
  websocat ws://localhost:8080/ws`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "SSH listen address")
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveNoHTTP, "no-http", false, "Disable the HTTP API")

	cobra.CheckErr(bindFlags(v, serveCmd.Flags(), map[string]string{
		"ssh.address":  "addr",
		"http.address": "http",
	}))
}

func runServe(_ *cobra.Command, _ []string) error {
	// Server logs go to stderr.
	logger := newLogger(os.Stderr, "skybattle")

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	env := newEnv(catalog, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if settings.HTTP.Enabled && !serveNoHTTP {
		var times server.TimeSource
		if store != nil {
			times = store
		}
		srv := server.New(server.Config{
			Address:      settings.HTTP.Address,
			SnapshotRate: settings.HTTP.SnapshotRate,
		}, catalog, times, logger.WithPrefix("http"))
		env.Observe = srv.Observe

		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})
	}

	sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     settings.SSH.Address,
		HostKeyPath: settings.SSH.HostKey,
		IdleTimeout: settings.SSH.IdleTimeout,
		Bell:        settings.Bell,
	}, env)
	if err != nil {
		return err
	}

	g.Go(func() error {
		err := sshServer.ListenAndServe(ctx)
		// Stop the HTTP server along with SSH.
		stop()
		return err
	})

	return g.Wait()
}
