package webserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stake-plus/castlotto/src/lottery"
	"go.uber.org/zap"
)

// Runner computes a fresh lottery result.
type Runner interface {
	Run(ctx context.Context) (*lottery.Result, error)
}

// SnapshotWriter persists accepted claims.
type SnapshotWriter interface {
	Write(players []lottery.Claim) error
}

// Deps bundles what the HTTP surface needs.
type Deps struct {
	Runner         Runner
	Snapshots      SnapshotWriter
	Limiter        Limiter
	AllowedOrigins []string
	Logger         *zap.Logger
}

// New builds the gin engine serving the players report.
func New(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	g := gin.New()
	g.Use(requestLogger(deps.Logger), gin.Recovery())
	attachRoutes(g, deps)
	return g
}

func attachRoutes(r *gin.Engine, deps Deps) {
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  deps.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}

	if err := setTemplates(r); err != nil {
		deps.Logger.Fatal("parse templates", zap.Error(err))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	playersH := NewPlayers(deps.Runner, deps.Snapshots, deps.Logger)
	limited := r.Group("/")
	if deps.Limiter != nil {
		limited.Use(RateLimitMiddleware(deps.Limiter, deps.Logger))
	}
	limited.GET("/", playersH.Page)
	limited.GET("/api/players", playersH.List)
	limited.POST("/api/snapshot", playersH.Snapshot)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client", c.ClientIP()),
			zap.Duration("took", time.Since(start)))
	}
}
