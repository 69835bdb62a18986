package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthHandler "github.com/petfans/petfans-api/internal/handler/health"
	"github.com/petfans/petfans-api/internal/middleware"
	"github.com/petfans/petfans-api/pkg/logger"
)

// Handler registers a group of routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
}

// New assembles the gin engine: global middleware, public auth routes,
// and the authenticated API group.
func New(
	log *logger.Logger,
	auth *middleware.AuthMiddleware,
	health *healthHandler.Handler,
	authH Handler,
	protected []Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.RateLimitRPS <= 0 {
		config.RateLimitRPS = 20
	}
	if config.RateLimitBurst <= 0 {
		config.RateLimitBurst = 40
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.CORS(config.CORS),
		middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst).RateLimit(),
	)

	health.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	authH.RegisterRoutes(v1)

	api := engine.Group("/api/v1")
	api.Use(auth.Authenticate())
	for _, h := range protected {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
