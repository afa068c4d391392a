package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/lmills91/task-manager/internal/config"
	"github.com/lmills91/task-manager/internal/database"
	"github.com/lmills91/task-manager/internal/handler"
	"github.com/lmills91/task-manager/internal/queue"
	"github.com/lmills91/task-manager/internal/repository"
	"github.com/lmills91/task-manager/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the cache and rate limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	history := repository.NewHistoryRepo(db)
	tasks := repository.NewTaskRepo(db, history)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	taskH := handler.NewTaskHandler(users, tasks)
	histH := handler.NewHistoryHandler(history)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterTasks(e, taskH, histH, cfg.JWTSecret, rdb)

	// Background consumer mirrors audit events into logs/audit.log. It
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
