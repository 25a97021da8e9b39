// Command mcp-test-server runs the three demo tool endpoints (directory,
// credentials and alerts) on local ports, backed by a sample roster.
//
// With the defaults the endpoints match the credentialwatch defaults:
//
//	http://localhost:8001/sse  directory
//	http://localhost:8002/sse  credentials
//	http://localhost:8003/sse  alerts
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rhuss/credentialwatch/pkg/debug"
	"github.com/rhuss/credentialwatch/pkg/demo"
)

type options struct {
	host            string
	directoryPort   int
	credentialsPort int
	alertsPort      int
	transport       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := options{
		host:            "localhost",
		directoryPort:   8001,
		credentialsPort: 8002,
		alertsPort:      8003,
		transport:       "sse",
	}

	cmd := &cobra.Command{
		Use:          "mcp-test-server",
		Short:        "Serve the demo directory, credentials and alerts tool endpoints",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := debug.Setup(debug.Options{})
			return run(cmd.Context(), opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", opts.host, "listen host")
	cmd.Flags().IntVar(&opts.directoryPort, "directory-port", opts.directoryPort, "directory endpoint port")
	cmd.Flags().IntVar(&opts.credentialsPort, "credentials-port", opts.credentialsPort, "credentials endpoint port")
	cmd.Flags().IntVar(&opts.alertsPort, "alerts-port", opts.alertsPort, "alerts endpoint port")
	cmd.Flags().StringVar(&opts.transport, "transport", opts.transport, "transport: sse or streamable-http")
	return cmd
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	roster := demo.NewRoster()
	ports := []struct {
		endpoint string
		port     int
	}{
		{demo.Directory, opts.directoryPort},
		{demo.Credentials, opts.credentialsPort},
		{demo.Alerts, opts.alertsPort},
	}

	path := "/sse"
	if opts.transport == "streamable-http" {
		path = "/mcp"
	}

	servers := make([]*http.Server, 0, len(ports))
	for _, p := range ports {
		mcpServer, err := demo.NewServer(p.endpoint, roster)
		if err != nil {
			return err
		}
		handler, err := demo.Handler(mcpServer, opts.transport)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle(path, handler)
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok\n"))
		})

		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf("%s:%d", opts.host, p.port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
		logger.Info("endpoint listening", "endpoint", p.endpoint, "url", fmt.Sprintf("http://%s:%d%s", opts.host, p.port, path))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			srv.Shutdown(shutdownCtx)
		}
		logger.Info("endpoints stopped")
		return nil
	})
	return g.Wait()
}
