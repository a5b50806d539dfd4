// Package api exposes the launchpad over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/authority"
	"github.com/rthefinder/USDG/internal/launchpad"
	"github.com/rthefinder/USDG/internal/notify"
	"github.com/rthefinder/USDG/internal/observability"
	"github.com/rthefinder/USDG/internal/storage"
)

// Server wires HTTP routes to the launchpad service and its read-side
// collaborators.
type Server struct {
	svc     *launchpad.Service
	events  storage.EventStore
	hub     *notify.Hub
	checker authority.Checker
	clock   launchpad.Clock
	log     *logrus.Entry
}

// ServerConfig wires the server's collaborators. Hub and Checker are
// optional: without a hub the event feed is disabled, without a checker
// verification reports grade authorities as unverified.
type ServerConfig struct {
	Service *launchpad.Service
	Events  storage.EventStore
	Hub     *notify.Hub
	Checker authority.Checker
	Clock   launchpad.Clock
	Log     *logrus.Entry
}

// NewServer creates a Server.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Clock == nil {
		cfg.Clock = launchpad.SystemClock()
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		svc:     cfg.Service,
		events:  cfg.Events,
		hub:     cfg.Hub,
		checker: cfg.Checker,
		clock:   cfg.Clock,
		log:     cfg.Log,
	}
}

// Router builds the gin engine with all routes configured.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	api := r.Group("/api")
	{
		api.POST("/launches", s.createLaunch)
		api.GET("/launches", s.listLaunches)
		api.GET("/launches/:id", s.getLaunch)
		api.GET("/launches/mint/:mint", s.getLaunchByMint)

		api.POST("/launches/:id/revoke-authorities", s.revokeAuthorities)
		api.POST("/launches/:id/enable-trading", s.enableTrading)
		api.POST("/launches/:id/purchase", s.purchase)
		api.POST("/launches/:id/liquidity", s.registerLiquidity)
		api.POST("/launches/:id/finalize", s.finalize)

		api.GET("/launches/:id/participants", s.listParticipants)
		api.GET("/launches/:id/liquidity", s.listLiquidity)
		api.GET("/launches/:id/events", s.listEvents)
		api.GET("/launches/:id/purchases", s.listPurchases)
		api.GET("/launches/:id/stats", s.getStats)
		api.GET("/launches/:id/verification", s.getVerification)

		if s.hub != nil {
			api.GET("/launches/feed", gin.WrapH(s.hub))
		}
	}

	return r
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	}
}
