// ABOUTME: Development API server: gin engine, routes and lifecycle
// ABOUTME: Run serves until the context is cancelled, then shuts down gracefully

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/2389/antecedentes/internal/auth"
	"github.com/2389/antecedentes/internal/config"
	"github.com/2389/antecedentes/internal/store"
)

// Version is reported by /health.
const Version = "0.1.0"

// Server serves the REST API over a Store.
type Server struct {
	cfg        *config.Server
	store      store.Store
	issuer     *auth.JWTIssuer
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a server. Pass nil logger for default.
func New(cfg *config.Server, st store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Files.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating files directory: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		store:  st,
		issuer: auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret)),
		logger: logger.With("component", "server"),
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler, for mounting in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.POST("/login", s.handleLogin)
	r.GET("/health", s.handleHealth)

	api := r.Group("/", auth.Middleware(s.store, s.issuer))
	write := auth.RequireWrite()

	api.GET("/persons", s.handleListPersons)
	api.POST("/persons", write, s.handleCreatePerson)
	api.GET("/persons/search/person/", s.handleSearchPersons)
	api.GET("/persons/:id", s.handleGetPerson)
	api.PATCH("/persons/:id", write, s.handleUpdatePerson)
	api.DELETE("/persons/:id", write, s.handleDeletePerson)
	api.GET("/persons/:id/linked", s.handleLinked)
	api.POST("/persons/:id/record/:otherId", write, s.handleLinkRecord)
	api.DELETE("/persons/:id/record/:otherId", write, s.handleUnlinkRecord)
	api.DELETE("/persons/:id/connection/:otherId", write, s.handleUnlinkPerson)
	api.POST("/persons/linked-person/:id/:otherId", write, s.handleLinkPerson)

	api.GET("/records", s.handleListRecords)
	api.POST("/records", write, s.handleCreateRecord)
	api.GET("/records/search", s.handleSearchRecords)
	api.GET("/records/stats/", s.handleRecordStats)
	api.GET("/records/:id", s.handleGetRecord)
	api.PUT("/records/:id", write, s.handleUpdateRecord)
	api.DELETE("/records/:id", write, s.handleDeleteRecord)

	api.POST("/files/upload", write, s.handleUploadFile)
	api.GET("/files/:id/download", s.handleDownloadFile)
	api.DELETE("/files/:id", write, s.handleDeleteFile)

	api.GET("/roles", s.handleListRoles)

	admin := api.Group("/users", auth.RequireAdmin())
	admin.GET("", s.handleListUsers)
	admin.POST("", s.handleCreateUser)
	admin.GET("/:id", s.handleGetUser)
	admin.PUT("/:id", s.handleUpdateUser)
	admin.DELETE("/:id", s.handleDeleteUser)
}

// requestLogger logs each request with a request id.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header("X-Request-ID", reqID)

		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Bootstrap creates the configured admin account if it is missing.
func (s *Server) Bootstrap(ctx context.Context) error {
	b := s.cfg.Bootstrap
	if b.AdminUsername == "" {
		return nil
	}
	created, err := s.store.EnsureAdmin(ctx, b.AdminUsername, b.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}
	if created {
		s.logger.Info("bootstrap admin created", "username", b.AdminUsername)
	}
	return nil
}

// Run serves HTTP and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	// The run context is already canceled, so shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := s.httpServer.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}
