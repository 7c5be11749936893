package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"cribbage-live-go/internal/config"
	"cribbage-live-go/internal/database"
	"cribbage-live-go/internal/handlers"
	"cribbage-live-go/internal/middleware"
	"cribbage-live-go/internal/service"
	"cribbage-live-go/internal/tracing"
	"cribbage-live-go/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracing, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName: "cribbage-live-go",
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	db, err := database.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db open/migrate: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	svc := service.NewGameService(db, cfg)

	hubRef := websocket.NewHubRef(websocket.NewHub())
	go func() {
		for {
			panicked := false
			currentHub, ok := hubRef.Get()
			if !ok || currentHub == nil {
				// Should never happen (we always Store a *Hub), but avoid nil deref.
				time.Sleep(1 * time.Second)
				hubRef.Set(websocket.NewHub())
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						panicked = true
						log.Printf("hub.Run panic: %v\n%s", r, debug.Stack())
					}
				}()
				currentHub.Run()
			}()

			// If hub.Run returned normally (Stop() called), exit. Only restart
			// on panic.
			if !panicked {
				return
			}
			currentHub.Stop()
			hubRef.Set(websocket.NewHub())
			time.Sleep(1 * time.Second)
		}
	}()

	handlers.SetWebSocketOriginPolicy(cfg.AppEnv == "development", cfg.DevWebSocketsAllowAll, cfg.WSAllowedOrigins)
	handlers.SetHubProvider(hubRef.Get)

	r := gin.Default()
	r.Use(otelgin.Middleware("cribbage-live-go"))
	r.Use(middleware.DevCORS(cfg))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.RequireSession(cfg))
	handlers.RegisterGameRoutes(api, protected, svc, cfg)

	// WebSocket endpoint is auth-gated via cookie, Authorization header, or
	// (when enabled) token query param.
	r.GET("/ws", handlers.WebSocketHandler(hubRef.Get, svc, cfg))

	// cfg.Addr is fully resolved by config.LoadFromEnv() (BACKEND_ADDR or PORT).
	addr := cfg.Addr

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	if h, ok := hubRef.Get(); ok && h != nil {
		h.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
