package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medibook/medibook-api/internal/handler"
	appointmentHandler "github.com/medibook/medibook-api/internal/handler/appointment"
	authHandler "github.com/medibook/medibook-api/internal/handler/auth"
	doctorHandler "github.com/medibook/medibook-api/internal/handler/doctor"
	"github.com/medibook/medibook-api/internal/middleware"
	"github.com/medibook/medibook-api/pkg/metrics"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authHandler.Handler
	doctorH      *doctorHandler.Handler
	appointmentH *appointmentHandler.Handler
	healthH      *handler.Handler
}

type Config struct {
	Mode       string
	RateLimit  middleware.RateLimiterConfig
	CORSConfig middleware.CORSConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	doctorH *doctorHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	healthH *handler.Handler,
	m *metrics.Metrics,
	config Config,
) *Router {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)

	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		doctorH:      doctorH,
		appointmentH: appointmentH,
		healthH:      healthH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/healthz", r.healthH.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.authH.RegisterRoutes(api, r.auth)
	r.doctorH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
