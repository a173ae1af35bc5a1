package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/imkarma/trophy/internal/api"
	"github.com/imkarma/trophy/internal/observability"
)

var (
	serveAddr        string
	servePurgeEvery  time.Duration
	serveShutdownMax = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long:  "Starts the HTTP API with signup/login sessions. Stops cleanly on SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().DurationVar(&servePurgeEvery, "purge-every", time.Hour, "How often expired sessions are deleted")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := mustConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := observability.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	log := observability.WithFields("component", "serve")

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(a.tracker, a.auth, api.Options{
		CookieName:        cfg.Server.CookieName,
		SecureCookie:      cfg.Server.SecureCookie,
		AuthRatePerMinute: cfg.Server.AuthRatePerMinute,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr, "db", cfg.Database.Path, "tz", a.tracker.Location().String())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownMax)
		defer cancel()
		log.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if servePurgeEvery <= 0 {
			return nil
		}
		ticker := time.NewTicker(servePurgeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				n, err := a.store.DeleteExpiredSessions(gctx, now)
				if err != nil {
					log.Warn("purge sessions", "error", err)
					continue
				}
				if n > 0 {
					log.Debug("purged sessions", "count", n)
				}
			}
		}
	})

	return g.Wait()
}
