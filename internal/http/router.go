package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/idrissbado/taskhub/internal/auth"
	"github.com/idrissbado/taskhub/internal/config"
	"github.com/idrissbado/taskhub/internal/http/handlers"
	"github.com/idrissbado/taskhub/internal/http/middlewares"
	"github.com/idrissbado/taskhub/internal/observability"
	"github.com/idrissbado/taskhub/internal/redisclient"
	"github.com/idrissbado/taskhub/internal/repo/postgres"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("taskhub-api"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// metrics on a private registry so repeated router builds don't collide
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)

	// session tokens + gate
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// credential endpoints get a tighter rate limit
	var counters middlewares.CounterStore

	if rdb != nil {
		counters = middlewares.NewRedisCounterStore(rdb.Raw())
	} else {
		counters = middlewares.NewMemoryCounterStore()
	}

	limiter := middlewares.NewRateLimiter(counters, cfg.RateLimit, time.Duration(cfg.RateWindowSecs)*time.Second)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, cfg)
	tasksHandler := handlers.NewTasksHandler(tasksRepo)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", limiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	users.POST("/login", limiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	users.POST("/logout", authHandler.Logout)
	users.GET("/me", authMw.RequireSession(), authHandler.Me)

	tasks := api.Group("/tasks")
	tasks.Use(authMw.RequireSession())
	tasks.GET("", tasksHandler.List)
	tasks.POST("", tasksHandler.Create)
	tasks.GET("/:id", tasksHandler.Get)
	tasks.PUT("/:id", tasksHandler.Update)
	tasks.DELETE("/:id", tasksHandler.Delete)

	return r
}
