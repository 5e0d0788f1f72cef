package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jmehdipour/dialer/internal/config"
	"github.com/jmehdipour/dialer/internal/dispatcher"
	"github.com/jmehdipour/dialer/internal/http/middleware"
	"github.com/jmehdipour/dialer/internal/interpreter"
	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/metrics"
	"github.com/jmehdipour/dialer/internal/telephony"
	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps carries everything the route layer needs; tests substitute fakes.
type Deps struct {
	Config   config.Config
	Provider telephony.Provider
	Store    logstore.Store
	Commands *interpreter.Chain
	Redis    *redis.Client // optional
}

type Server struct{ e *echo.Echo }

var registerMetricsOnce sync.Once

func NewServer(d Deps) *Server {
	disp := dispatcher.New(d.Provider, d.Store)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = newRenderer()
	e.Use(echoMid.Recover(), echoMid.Logger())

	registerMetricsOnce.Do(func() {
		metrics.MustRegister(prometheus.DefaultRegisterer)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// pages
	e.GET("/", homeHandler())
	e.GET("/logs", logsPageHandler(d.Store))

	// middlewares for the call-placing routes
	authMW := middleware.StaticAPIKey(d.Config.HTTP.APIKey)
	rlMW := middleware.RateLimit(middleware.RateLimitConfig{
		Redis:  d.Redis,
		RPS:    d.Config.RateLimit.RPS,
		Window: time.Second,
	})

	e.POST("/call", callHandler(disp, d.Provider), authMW, rlMW)
	e.POST("/ai-command", aiCommandHandler(disp, d.Provider, d.Commands), authMW, rlMW)

	// api
	e.GET("/api/logs", apiLogsHandler(d.Store))
	e.POST("/api/cleanup-logs", cleanupLogsHandler(d.Store), authMW)
	e.GET("/api/check-verification/:number", checkVerificationHandler(d.Provider))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func homeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "index.html", nil)
	}
}
