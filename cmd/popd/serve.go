package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"solana-pop/internal/claims"
	"solana-pop/internal/config"
	"solana-pop/internal/feed"
	"solana-pop/internal/logging"
	"solana-pop/internal/solana/stub"
	httptransport "solana-pop/internal/transport/http"
)

const readHeaderTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("close storage")
		}
	}()

	activity, closeActivity, err := openActivity(ctx, cfg.Analytics, logger)
	if err != nil {
		return err
	}
	defer closeActivity()

	hub := feed.NewHub(cfg.Feed.Buffer)
	defer hub.Close()

	svc := claims.NewService(store, activity, stub.NewMinter(stub.WithDelay(cfg.Minting.Delay)),
		claims.WithPublisher(hub),
		claims.WithLogger(logger.WithField("component", "claims")),
	)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Service:      svc,
			Feed:         hub,
			PublicURL:    cfg.Server.PublicURL,
			PingInterval: cfg.Feed.PingInterval,
			Logger:       logger.WithField("component", "http"),
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"backend": cfg.Storage.Backend,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Websocket connections are hijacked and not tracked by Shutdown; closing
		// the hub ends their streams.
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
