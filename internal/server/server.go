// Package server exposes pool-key derivation, unsigned transaction assembly
// and payload decoding over HTTP for browser wallets.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/lugondev/go-amm/internal/amm"
	"github.com/lugondev/go-amm/internal/config"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/journal"
	"github.com/lugondev/go-amm/pkg/decoder"
)

// Builder assembles unsigned transactions.
type Builder interface {
	BuildUnsigned(ctx context.Context, payer solana.PublicKey, ixs []solana.Instruction) (*solana.Transaction, error)
}

// Server is the HTTP API.
type Server struct {
	engine     *gin.Engine
	builder    Builder
	programs   config.Programs
	registry   *decoder.Registry
	journal    journal.Repository
	logger     *slog.Logger
	now        func() time.Time
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithJournal serves journal entries from repo.
func WithJournal(repo journal.Repository) Option {
	return func(s *Server) { s.journal = repo }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the clock used for default open times.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server. programs supplies defaults for requests that omit
// program ids; a zero AMM id makes program_id mandatory per request.
func New(builder Builder, programs config.Programs, opts ...Option) *Server {
	s := &Server{
		builder:  builder,
		programs: programs,
		registry: decoder.NewRegistry(),
		journal:  journal.NopRepository{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !programs.AMM.IsZero() {
		amm.RegisterDecoders(s.registry, programs.AMM)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.health)
	api.GET("/pool-keys", s.poolKeys)
	api.POST("/tx/init-pool", s.initPoolTx)
	api.POST("/tx/deposit", s.depositTx)
	api.POST("/tx/swap", s.swapTx)
	api.POST("/decode", s.decode)
	api.GET("/journal", s.journalRecent)
	api.GET("/journal/:signature", s.journalBySignature)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fail writes err with a status derived from its code.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := amerrors.Code(err)
	switch code {
	case amerrors.ErrCodeMissingConfig, amerrors.ErrCodeInvalidConfig, amerrors.ErrCodeDecodeFailed:
		status = http.StatusBadRequest
	case amerrors.ErrCodeDerivationExhausted:
		status = http.StatusUnprocessableEntity
	case amerrors.ErrCodeRemoteRejected:
		status = http.StatusBadGateway
	}
	if code == "" {
		code = "INTERNAL"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{Code: code, Message: err.Error()}})
}

func (s *Server) health(c *gin.Context) {
	if err := s.journal.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "journal": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
