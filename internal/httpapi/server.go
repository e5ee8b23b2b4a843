// Package httpapi exposes the planning store over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emilianohg/waypoint/internal/metrics"
	"github.com/emilianohg/waypoint/internal/planner"
)

const shutdownTimeout = 5 * time.Second

// Server provides HTTP handlers for the planning store.
type Server struct {
	engine *gin.Engine
	store  *planner.Store
	logger *log.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *planner.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
	}
	router.Use(srv.observe)

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET("/:projectId", s.handleGetProject)
			projects.PUT("/:projectId", s.handleUpdateProject)
			projects.DELETE("/:projectId", s.handleDeleteProject)

			projects.POST("/:projectId/milestones", s.handleCreateMilestone)
			projects.PUT("/:projectId/milestones/:milestoneId", s.handleUpdateMilestone)
			projects.DELETE("/:projectId/milestones/:milestoneId", s.handleDeleteMilestone)

			projects.POST("/:projectId/milestones/:milestoneId/tasks", s.handleCreateTask)
			projects.PUT("/:projectId/milestones/:milestoneId/tasks/:taskId", s.handleUpdateTask)
			projects.DELETE("/:projectId/milestones/:milestoneId/tasks/:taskId", s.handleDeleteTask)
		}

		api.GET("/milestones", s.handleListMilestones)
		api.GET("/tasks", s.handleListTasks)
		api.GET("/summary", s.handleSummary)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// observe logs each request and records its latency.
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	elapsed := time.Since(start)
	status := c.Writer.Status()
	metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), status, elapsed)
	s.logger.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "elapsed", elapsed)
}

// respondStoreError maps a store error to a status code. Anything that is
// not a lookup or input problem is reported as a generic failure.
func (s *Server) respondStoreError(c *gin.Context, op string, err error) {
	metrics.RecordStoreOperation(op, err)
	switch {
	case errors.Is(err, planner.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "op", op, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// respondBadRequest reports a payload that could not be bound.
func (s *Server) respondBadRequest(c *gin.Context, op string, err error) {
	metrics.RecordStoreOperation(op, &planner.ValidationError{Err: err})
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func respondSuccess(c *gin.Context, op string, status int, payload any) {
	metrics.RecordStoreOperation(op, nil)
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// respondDeleted answers a delete: 404 when nothing matched.
func (s *Server) respondDeleted(c *gin.Context, op string, removed bool, err error, missing error) {
	if err == nil && !removed {
		err = missing
	}
	if err != nil {
		s.respondStoreError(c, op, err)
		return
	}
	respondSuccess(c, op, http.StatusOK, gin.H{"success": true})
}
