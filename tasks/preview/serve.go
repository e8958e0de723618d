package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fredrikaverpil/uibundle"
	"github.com/fredrikaverpil/uibundle/internal/livereload"
	"github.com/fredrikaverpil/uibundle/pk"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 5 * time.Second

// ListenFunc is called once the server accepts connections. addr is the
// listening address, which differs from the configured one for port 0.
type ListenFunc func(ctx context.Context, addr string) error

// ServeOpt configures Serve.
type ServeOpt func(*serveConfig)

type serveConfig struct {
	hub *livereload.Hub
}

// WithLiveReload injects the reload script into pages and streams hub
// events to browsers.
func WithLiveReload(hub *livereload.Hub) ServeOpt {
	return func(cfg *serveConfig) {
		cfg.hub = hub
	}
}

// Serve returns a runnable serving the files under root until the context
// is canceled or onListen fails.
func Serve(root string, server uibundle.Server, onListen ListenFunc, opts ...ServeOpt) pk.Runnable {
	cfg := &serveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return pk.Do(func(ctx context.Context) error {
		var handler http.Handler = http.FileServer(http.Dir(pk.FromRoot(ctx, root)))
		if cfg.hub != nil {
			handler = cfg.hub.Handler(handler)
		}

		ln, err := net.Listen("tcp", net.JoinHostPort(server.Host, strconv.Itoa(server.Port)))
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		addr := ln.Addr().String()

		srv := &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() { serveErr <- srv.Serve(ln) }()

		log := pk.Logger(ctx)
		log.Info().Msgf("Server started http://%s", displayAddr(ln.Addr()))
		if cfg.hub != nil {
			log.Info().Msg("LiveReload started")
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		listenErr := make(chan error, 1)
		if onListen != nil {
			go func() { listenErr <- onListen(ctx, addr) }()
		}

		var runErr error
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = err
			}
		case err := <-listenErr:
			if err != nil {
				runErr = err
				break
			}
			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					runErr = err
				}
			}
		}

		if cfg.hub != nil {
			cfg.hub.Close()
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("Server stopped")
		return runErr
	})
}

// displayAddr renders a wildcard listen address as localhost.
func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
}
