package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing
	"github.com/redis/go-redis/v9"

	"github.com/lmills91/task-manager/internal/config"
	"github.com/lmills91/task-manager/internal/handler"
	"github.com/lmills91/task-manager/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring systems to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth; the protected /v1/me endpoint runs
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterTasks registers the task lifecycle and history endpoints.
// Everything here is owner-scoped, so the whole group sits behind
// JWTAuth: handlers see only the resolved user id. The Redis-backed
// rate limiter covers the full group; the response cache applies only
// to the history listing, whose append-only data tolerates the cache
// TTL. Both middlewares become no-ops when rdb is nil.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, hist *handler.HistoryHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	g.POST("/tasks", t.CreateTask)
	g.GET("/tasks", t.ListTasks)
	g.GET("/tasks/:id", t.GetTask)
	g.PUT("/tasks/:id", t.UpdateTask)
	g.DELETE("/tasks/:id", t.DeleteTask)
	g.PATCH("/tasks/restore/:id", t.RestoreTask)

	g.GET("/history", hist.ListHistory, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}
