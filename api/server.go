// Package api exposes stored runs and on-demand simulations over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rleiva87/candlesim/config"
	"github.com/rleiva87/candlesim/storage"
)

type Server struct {
	engine *gin.Engine
	server *http.Server
}

func NewServer(addr string, store *storage.Store, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine: engine,
		server: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
	}

	handler := NewHandler(store, cfg)

	api := engine.Group("/api")
	{
		api.GET("/runs", handler.ListRuns)
		api.GET("/runs/:id", handler.GetRun)
		api.POST("/backtest", handler.RunBacktest)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return s
}

func (s *Server) Start() error {
	slog.Info("api listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the engine for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		slog.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
