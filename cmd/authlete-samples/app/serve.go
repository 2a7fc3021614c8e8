package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	samples "github.com/authlete/authlete-go-samples"
	"github.com/authlete/authlete-go-samples/authlete"
)

const shutdownTimeout = 10 * time.Second

func newAuthenticationServerCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "authentication-server",
		Short: "Run the authentication callback server",
		Long: `Run the authentication callback server. Authlete calls POST /authentication
with Basic credentials AUTHENTICATION_API_KEY / AUTHENTICATION_API_SECRET.
An end-user is authenticated when id equals password.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), addr, func(cfg *samples.Config) string { return cfg.AuthenticationAddr },
				func(h *samples.Handler) func(chi.Router) { return h.AuthenticationRoutes },
				nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $AUTHENTICATION_ADDR or :4567)")
	return cmd
}

func newResourceServerCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "resource-server",
		Short: "Run the resource server",
		Long: `Run the resource server. GET /me requires the "profile" scope and GET /saying
the "saying" scope; access tokens are introspected with SERVICE_API_KEY /
SERVICE_API_SECRET at AUTHLETE_HOST.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), addr, func(cfg *samples.Config) string { return cfg.ResourceAddr },
				func(h *samples.Handler) func(chi.Router) { return h.ResourceRoutes },
				withIntrospector)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $RESOURCE_ADDR or :4568)")
	return cmd
}

// withIntrospector attaches the Authlete API client to the server.
func withIntrospector(cfg *samples.Config, srv *samples.Server) error {
	if err := cfg.ValidateResourceServer(); err != nil {
		return err
	}
	client, err := authlete.NewClient(cfg.AuthleteClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create Authlete client: %w", err)
	}
	srv.Introspector = client
	return nil
}

func serve(
	ctx context.Context,
	addrFlag string,
	defaultAddr func(*samples.Config) string,
	routes func(*samples.Handler) func(chi.Router),
	configure func(*samples.Config, *samples.Server) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := samples.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	srv, cleanup, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if configure != nil {
		if err := configure(cfg, srv); err != nil {
			return err
		}
	}

	addr := addrFlag
	if addr == "" {
		addr = defaultAddr(cfg)
	}

	h := samples.NewHandler(srv, logger)
	return runHTTPServer(ctx, addr, h.NewRouter(routes(h)), logger)
}

// runHTTPServer serves handler on addr until ctx is done, then shuts down
// gracefully.
func runHTTPServer(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return serveListener(ctx, ln, handler, logger)
}

func serveListener(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
