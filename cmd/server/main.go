package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Praveenitis/CollabIDE/internal/api"
	"github.com/Praveenitis/CollabIDE/internal/engine"
	"github.com/Praveenitis/CollabIDE/internal/metrics"
	"github.com/Praveenitis/CollabIDE/internal/routers"
	"github.com/Praveenitis/CollabIDE/internal/session"
	"github.com/Praveenitis/CollabIDE/internal/store"
)

var (
	defaultPort      = "8080"
	defaultRedisAddr = "" // empty means in-memory fallback

	listenAndServe = http.ListenAndServe
	exit           = os.Exit
	exitFunc       = defaultExit
)

func defaultExit(err error) {
	log.Println(err)
	exit(1)
}

func run(_ context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = defaultRedisAddr
	}

	st := store.Open(redisAddr, logger)

	hub := session.NewHub()
	registry := session.NewRegistry()

	// Cross-instance broadcast only makes sense when the shared store
	// is up; in memory mode each instance is its own island anyway.
	var broker *session.Broker
	if rs, ok := st.(*store.RedisStore); ok {
		broker = session.NewBroker(rs.Client(), hub, logger)
		defer broker.Close()
	}

	eng := engine.New(st, hub, registry, broker, logger)
	h := api.NewHandlers(logger, st, eng)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}),
		metrics.Middleware("collabide"),
	)

	r.Mount("/", routers.New(h))
	r.Handle("/metrics", metrics.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	addr := ":" + port
	log.Printf("collabide listening on %s", addr)
	return listenAndServe(addr, r)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
