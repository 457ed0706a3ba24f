package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stake-plus/castlotto/src/config"
	"github.com/stake-plus/castlotto/src/data"
	"github.com/stake-plus/castlotto/src/lottery"
	"github.com/stake-plus/castlotto/src/neynar"
	"github.com/stake-plus/castlotto/src/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the players report over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		limiter, closeLimiter, err := buildLimiter(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeLimiter()

		client := neynar.NewClient(cfg.NeynarOptions(logger))
		gin.SetMode(gin.ReleaseMode)
		router := webserver.New(webserver.Deps{
			Runner:         lottery.NewPipeline(client, logger),
			Snapshots:      data.NewSnapshotStore(cfg.SnapshotPath),
			Limiter:        limiter,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		})
		httpSrv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("castlotto listening", zap.String("addr", httpSrv.Addr), zap.String("cast", cfg.CastHash))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutCtx)
		})
		return g.Wait()
	},
}

func buildLimiter(ctx context.Context, cfg config.Config) (webserver.Limiter, func(), error) {
	if cfg.RateLimit <= 0 {
		return nil, func() {}, nil
	}
	if cfg.RedisURL == "" {
		return webserver.NewRateLimiter(cfg.RateLimit, time.Minute), func() {}, nil
	}
	rdb, err := data.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return webserver.NewRedisRateLimiter(rdb, cfg.RateLimit, time.Minute), func() { _ = rdb.Close() }, nil
}
