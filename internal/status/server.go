package status

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeoDroves/mtga-log-client/internal/logger"
	"github.com/LeoDroves/mtga-log-client/internal/tracker"
	"github.com/LeoDroves/mtga-log-client/pkg/health"
)

// Server exposes a local observability surface for the follower: liveness,
// prometheus metrics, and a snapshot of the tracker's identity state.
type Server struct {
	server   *http.Server
	tracker  *tracker.Tracker
	checkers *health.CheckerRegistry
	log      logger.Logger
}

func New(port int, tr *tracker.Tracker, checkers *health.CheckerRegistry, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		tracker:  tr,
		checkers: checkers,
		log:      log,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	return s
}

func (s *Server) handleHealth(c *gin.Context) {
	result := s.checkers.Check(c.Request.Context())
	code := http.StatusOK
	if result.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Stats())
}

func (s *Server) Start() error {
	s.log.Infow("Status server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
