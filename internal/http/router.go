package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/profilehub/internal/auth"
	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/http/handlers"
	"github.com/geocoder89/profilehub/internal/http/middlewares"
	"github.com/geocoder89/profilehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs. Prom and Gatherer may be nil.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Tokens    *auth.Manager
	Auth      handlers.Authenticator
	Profile   handlers.ProfileService
	Directory handlers.DirectoryService

	ReadyChecks map[string]handlers.Pinger
}

// route binds a protected endpoint to the roles allowed to call it.
type route struct {
	method  string
	path    string
	roles   []string
	handler gin.HandlerFunc
}

var (
	anyRole   = []string{user.RoleUser, user.RoleAdmin}
	adminOnly = []string{user.RoleAdmin}
)

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	health := handlers.NewHealthHandler(d.ReadyChecks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handlers.NewAuthHandler(d.Auth, d.Prom)
	profileHandler := handlers.NewProfileHandler(d.Profile)
	directoryHandler := handlers.NewDirectoryHandler(d.Directory)

	limiter := middlewares.NewRateLimiter(d.Config.AuthRateLimitPerMinute, time.Minute)
	authGroup := r.Group("/auth", limiter.Middleware(middlewares.KeyByIP))
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/login", authHandler.Login)

	gate := middlewares.NewAuthMiddleware(d.Tokens)

	routes := []route{
		{"GET", "/user", anyRole, profileHandler.Me},
		{"PATCH", "/user/:id", anyRole, profileHandler.Update},
		{"GET", "/user/getall", adminOnly, directoryHandler.ListUsers},
		{"GET", "/user/projects", adminOnly, directoryHandler.ListBySkills},
		{"GET", "/user/skills/top", adminOnly, directoryHandler.TopSkills},
		{"GET", "/user/search", adminOnly, directoryHandler.Search},
	}

	for _, rt := range routes {
		chain := []gin.HandlerFunc{gate.RequireAuth(), gate.RequireRoles(rt.roles...), rt.handler}
		r.Handle(rt.method, rt.path, chain...)
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	return r
}
