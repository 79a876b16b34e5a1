// Package server is a development Notification Store: the REST API the
// feed talks to, backed by SQLite.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithToken requires every request except /health to carry
// "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request and error logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// Server serves the Notification Store REST API.
type Server struct {
	router *gin.Engine
	store  store.Store
	token  string
	log    *zap.Logger
}

// New builds the router over st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	s.router = router
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("notification store listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal", zap.String("reason", "context canceled"))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shCtx)
}

// setupRoutes registers the API.
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notifeed-store"})
	})

	notifications := s.router.Group("/notifications")
	notifications.Use(s.bearerAuth())
	{
		notifications.GET("", s.handleList())
		notifications.POST("", s.handleCreate())
		notifications.GET("/:id", s.handleGet())
		notifications.PATCH("/:id/read", s.handleMarkRead())
		notifications.PATCH("/read-all", s.handleMarkAllRead())
	}
}

// bearerAuth rejects requests without the configured token. With no token
// configured every request passes.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.ListFilter{
			Type:       c.Query("type"),
			UnreadOnly: c.Query("unread") == "true",
		}
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			filter.Limit = limit
		}

		list, err := s.store.ListNotifications(c.Request.Context(), filter)
		if err != nil {
			s.internalError(c, "listing notifications failed", err)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func (s *Server) handleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.store.GetNotification(c.Request.Context(), model.ID(c.Param("id")))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		if err != nil {
			s.internalError(c, "getting notification failed", err)
			return
		}

		c.JSON(http.StatusOK, n)
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := model.ID(c.Param("id"))

		err := s.store.MarkNotificationRead(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		if err != nil {
			s.internalError(c, "marking notification read failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "read": true})
	}
}

func (s *Server) handleMarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := s.store.MarkAllRead(c.Request.Context())
		if err != nil {
			s.internalError(c, "marking all notifications read failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

// createRequest is the body of POST /notifications.
type createRequest struct {
	Message  string `json:"message" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		n, err := s.store.CreateNotification(c.Request.Context(), model.Notification{
			Message:  req.Message,
			Type:     strings.ToUpper(req.Type),
			Priority: req.Priority,
		})
		if err != nil {
			s.internalError(c, "creating notification failed", err)
			return
		}

		c.JSON(http.StatusCreated, n)
	}
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
