package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caddyserver/webdir"
	"github.com/caddyserver/webdir/internal/config"
	"github.com/caddyserver/webdir/internal/metrics"
	"github.com/caddyserver/webdir/internal/processor"
	"github.com/caddyserver/webdir/internal/serviceadapter"
	"github.com/caddyserver/webdir/internal/transport"
)

func newRootCommand(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "webdir",
		Short: "webdir serves a directory tree over HTTP/HTTPS",
		Long: `webdir is a static file server: it resolves request paths against a
configured root, evaluates conditional and range headers, and streams
file or directory-listing bodies back to the client.`,
		SilenceUsage: true,
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "webdir.toml", "path to the TOML configuration file")

	root.AddCommand(newServeCommand(logger, &configPath))
	root.AddCommand(newOnceCommand(logger, &configPath))

	return root
}

// newServeCommand runs webdir as a long-lived daemon accepting
// connections on a listening socket — the default way to run the server.
func newServeCommand(logger *zap.Logger, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the server in the foreground, accepting connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			wd, err := webdir.New(cfg.Root, cfg.Index)
			if err != nil {
				return fmt.Errorf("building webdir config: %w", err)
			}
			proc := processor.New(wd)
			handler := mountWithMetrics(proc, logger)

			listener, err := net.Listen("tcp", cfg.Listen.Address)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Listen.Address, err)
			}
			if cfg.Listen.UseProxy {
				listener = transport.ProxyListener(listener)
			}

			var tlsConfig *tls.Config
			if cfg.Listen.TLSCert != "" && cfg.Listen.TLSKey != "" {
				cert, err := tls.LoadX509KeyPair(cfg.Listen.TLSCert, cfg.Listen.TLSKey)
				if err != nil {
					return fmt.Errorf("loading TLS keypair: %w", err)
				}
				tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
			}

			server := &http.Server{
				Handler:   handler,
				TLSConfig: tlsConfig,
			}

			logger.Info("serving", zap.String("root", cfg.Root), zap.String("address", cfg.Listen.Address))

			if tlsConfig != nil {
				return server.ServeTLS(listener, "", "")
			}
			return server.Serve(listener)
		},
	}
}

// newOnceCommand serves a single connection over an inherited socket
// (fd 0) and exits, mirroring an inetd-style one-shot invocation.
func newOnceCommand(logger *zap.Logger, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "serve a single inherited connection on stdin and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			conn, err := net.FileConn(os.Stdin)
			if err != nil {
				return fmt.Errorf("adopting inherited socket: %w", err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			stream, err := transport.New(ctx, conn, nil)
			if err != nil {
				return fmt.Errorf("establishing transport: %w", err)
			}

			wd, err := webdir.New(cfg.Root, cfg.Index)
			if err != nil {
				return fmt.Errorf("building webdir config: %w", err)
			}
			proc := processor.New(wd)

			return http.Serve(&singleConnListener{conn: stream}, mountWithMetrics(proc, logger))
		},
	}
}

// mountWithMetrics wires a fresh prometheus.Registry and metrics.Recorder
// into the adapter's completion callback and exposes it on /metrics,
// alongside the /healthz route and middleware chain Mount always installs.
func mountWithMetrics(proc *processor.Processor, logger *zap.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)
	adapter := serviceadapter.New(proc, logger)
	return adapter.Mount(reg, func(m httpsnoop.Metrics, method, path string) {
		recorder.Observe(method, m.Code, m.Duration.Seconds(), m.Written)
	})
}

// singleConnListener adapts one already-accepted net.Conn into a
// net.Listener that yields it once, then blocks until closed.
type singleConnListener struct {
	conn net.Conn
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	if l.conn == nil {
		select {}
	}
	c := l.conn
	l.conn = nil
	return c, nil
}

func (l *singleConnListener) Close() error   { return l.conn.Close() }
func (l *singleConnListener) Addr() net.Addr { return l.conn.LocalAddr() }
