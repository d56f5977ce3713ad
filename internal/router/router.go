package router

import (
	"github.com/gin-gonic/gin"

	"github.com/idib19/glamstore-sub001/internal/handler"
	appointmenth "github.com/idib19/glamstore-sub001/internal/handler/appointment"
	authh "github.com/idib19/glamstore-sub001/internal/handler/auth"
	availabilityh "github.com/idib19/glamstore-sub001/internal/handler/availability"
	customerh "github.com/idib19/glamstore-sub001/internal/handler/customer"
	promh "github.com/idib19/glamstore-sub001/internal/handler/prometheus"
	servicecatalogh "github.com/idib19/glamstore-sub001/internal/handler/servicecatalog"
	"github.com/idib19/glamstore-sub001/internal/middleware"
)

type Config struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORS             middleware.CORSConfig
}

type Router struct {
	engine          *gin.Engine
	auth            *middleware.AuthMiddleware
	h               *handler.Handler
	prometheusH     *promh.Handler
	authH           *authh.Handler
	availabilityH   *availabilityh.Handler
	appointmentH    *appointmenth.Handler
	servicecatalogH *servicecatalogh.Handler
	customerH       *customerh.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	prometheusH *promh.Handler,
	authH *authh.Handler,
	availabilityH *availabilityh.Handler,
	appointmentH *appointmenth.Handler,
	servicecatalogH *servicecatalogh.Handler,
	customerH *customerh.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()
	engine := gin.New()

	r := &Router{
		engine:          engine,
		auth:            auth,
		h:               h,
		prometheusH:     prometheusH,
		authH:           authH,
		availabilityH:   availabilityH,
		appointmentH:    appointmentH,
		servicecatalogH: servicecatalogH,
		customerH:       customerH,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		prometheusH.Middleware(),
	)
	engine.Use(middleware.CORS(config.CORS))

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimitRPS,
			Burst: config.RateLimitBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", r.prometheusH.Handler())

	api := r.engine.Group("/api/v1")

	// Public surface: browse the catalog, check availability, book.
	r.authH.RegisterRoutes(api)
	r.servicecatalogH.RegisterRoutes(api)
	r.availabilityH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)

	// Owner surface behind the JWT gate.
	admin := api.Group("/admin")
	admin.Use(r.auth.Authenticate())
	r.appointmentH.RegisterAdminRoutes(admin)
	r.servicecatalogH.RegisterAdminRoutes(admin)
	r.customerH.RegisterAdminRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
