package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/walterreed/referral-api/internal/middleware"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// MetricsHandler additionally instruments requests and serves the scrape
// endpoint.
type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Router struct {
	engine    *gin.Engine
	referralH Handler
	healthH   Handler
	metricsH  MetricsHandler
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Timeout   time.Duration
}

func NewRouter(referralH, healthH Handler, metricsH MetricsHandler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:    engine,
		referralH: referralH,
		healthH:   healthH,
		metricsH:  metricsH,
	}

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 50
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 100
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Validation(),
		metricsH.Middleware(),
		middleware.Timeout(config.Timeout),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")
	r.referralH.RegisterRoutes(api)
	r.healthH.RegisterRoutes(api)

	r.engine.GET("/metrics", r.metricsH.Handler())
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
