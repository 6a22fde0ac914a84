package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-api/config"
	"github.com/medibook/booking-api/internal/gateway"
	appointmenthandler "github.com/medibook/booking-api/internal/handler/appointment"
	authhandler "github.com/medibook/booking-api/internal/handler/auth"
	healthhandler "github.com/medibook/booking-api/internal/handler/health"
	itemhandler "github.com/medibook/booking-api/internal/handler/item"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
}

func DefaultConfig() Config {
	return Config{
		RateLimit: 100,
		RateBurst: 200,
		CORS:      middleware.DefaultCORSConfig(),
	}
}

type Router struct {
	engine  *gin.Engine
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New builds the engine with the shared middleware chain. Route wiring is
// done by the per-service Setup methods.
func New(cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("appointment_status", model.ValidAppointmentStatus)
	}

	r := &Router{
		engine:  engine,
		metrics: initRouterMetrics(),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.CORS(cfg.CORS),
	)

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  cfg.RateLimit,
			Burst: cfg.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// SetupAPI wires the public-facing service: auth endpoints, the gateway
// routes, and either native or proxied appointment routes depending on
// configuration. Items are always proxied.
func (r *Router) SetupAPI(
	healthH *healthhandler.Handler,
	authH *authhandler.Handler,
	authMW *middleware.AuthMiddleware,
	bookingH *appointmenthandler.Handler,
	proxy *gateway.Proxy,
	gw config.GatewayConfig,
) {
	api := r.apiGroup()
	r.setupHealth(api, healthH)

	api.POST("/login/access-token", authH.Login)
	api.POST("/users/signup", authH.Signup)

	protected := api.Group("")
	protected.Use(authMW.Authenticate())
	protected.GET("/users/me", authH.Me)
	protected.POST("/login/test-token", authH.TestToken)

	if gw.ProxyAppointments {
		appts := api.Group("/appointments")
		appts.Any("", proxy.Handler("appointments", gw.AppointmentsURL))
		appts.Any("/*path", proxy.Handler("appointments", gw.AppointmentsURL))
	} else {
		appts := protected.Group("/appointments")
		appts.GET("/hospitals", bookingH.ListHospitals)
		appts.GET("/hospitals/:id/doctors", bookingH.ListHospitalDoctors)
		appts.GET("/doctors/:id/time-slots", bookingH.ListDoctorTimeSlots)
		appts.POST("/validate-user", bookingH.ValidateUser)
		appts.POST("", bookingH.CreateAppointment)
		appts.GET("", bookingH.ListAppointments)
		appts.GET("/:id", bookingH.GetAppointment)
		appts.PUT("/:id", bookingH.UpdateAppointment)
		appts.DELETE("/:id", bookingH.DeleteAppointment)
	}

	items := api.Group("/items")
	items.Any("", proxy.Handler("items", gw.ItemsURL))
	items.Any("/*path", proxy.Handler("items", gw.ItemsURL))
}

// SetupAppointmentsService wires the standalone appointments microservice.
func (r *Router) SetupAppointmentsService(
	healthH *healthhandler.Handler,
	svcH *appointmenthandler.ServiceHandler,
) {
	api := r.apiGroup()
	r.setupHealth(api, healthH)

	appts := api.Group("/appointments")
	appts.GET("/hospitals", svcH.ListHospitals)
	appts.GET("/hospitals/:id/doctors", svcH.ListHospitalDoctors)
	appts.GET("/doctors/:id/time-slots", svcH.ListDoctorTimeSlots)
	appts.POST("/validate-user", svcH.ValidateUser)
	appts.POST("", svcH.CreateAppointment)
	appts.GET("", svcH.ListAppointments)
	appts.GET("/:id", svcH.GetAppointment)
	appts.PUT("/:id", svcH.UpdateAppointment)
	appts.DELETE("/:id", svcH.DeleteAppointment)
}

// SetupItemsService wires the standalone items microservice.
func (r *Router) SetupItemsService(
	healthH *healthhandler.Handler,
	itemH *itemhandler.Handler,
) {
	api := r.apiGroup()
	r.setupHealth(api, healthH)

	items := api.Group("/items")
	items.POST("", itemH.CreateItem)
	items.GET("", itemH.ListItems)
	items.GET("/:id", itemH.GetItem)
	items.PUT("/:id", itemH.UpdateItem)
	items.DELETE("/:id", itemH.DeleteItem)
}

func (r *Router) apiGroup() *gin.RouterGroup {
	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})
	return api
}

func (r *Router) setupHealth(rg *gin.RouterGroup, h *healthhandler.Handler) {
	health := rg.Group("/health")
	{
		health.GET("/live", h.Live)
		health.GET("/ready", h.Ready)
		health.GET("/metrics", h.Metrics())
	}
}

func initRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
