// Package server exposes the ledger over HTTP: signed transaction
// submission plus address-keyed reads of records, slots, and receipts.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Calindra/solana-twitter/internal/engine"
)

// Handler serves the HTTP routes for one engine.
type Handler struct {
	Engine *engine.Engine
}

// NewRouter builds the gin router with every route registered.
func NewRouter(eng *engine.Engine) *gin.Engine {
	h := &Handler{Engine: eng}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", h.Health)

	v1 := r.Group("/v1")
	v1.POST("/transactions", h.SubmitTransaction)
	v1.GET("/transactions", h.ListTransactions)
	v1.GET("/transactions/:id", h.GetTransaction)
	v1.GET("/posts/:address", h.GetPost)
	v1.GET("/profiles/:owner", h.GetProfile)
	v1.GET("/accounts/:address", h.GetAccount)
	v1.GET("/balances/:address", h.GetBalance)
	v1.GET("/address/post", h.PostAddress)
	v1.GET("/address/profile", h.ProfileAddress)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

// Serve runs the engine loop and an HTTP server on listen until ctx ends.
func Serve(ctx context.Context, eng *engine.Engine, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           NewRouter(eng),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	engineDone := make(chan error, 1)
	go func() { engineDone <- eng.Run(runCtx) }()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", listen)
		serveErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		slog.Info("http server shutting down")
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = fmt.Errorf("shutdown: %w", shutdownErr)
	}

	stop()
	<-engineDone
	return err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
