package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/mediaforge/api/internal/config"
	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/handler"
	"github.com/mediaforge/api/internal/middleware"
	"github.com/mediaforge/api/internal/probe"
	"github.com/mediaforge/api/internal/registry"
	"github.com/mediaforge/api/internal/service"
	"github.com/mediaforge/api/internal/worker"
	ws "github.com/mediaforge/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	redisAvailable := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
		redisAvailable = false
	}

	// Without Redis the service still accepts pipelines, it just records
	// them without queueing execution.
	var asynqClient *asynq.Client
	if redisAvailable {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize engine and core components
	eng := engine.NewLaunchEngine()
	reg := registry.New()
	prober := probe.New(eng, probe.Config{
		Budget:        time.Duration(cfg.Probe.BudgetSeconds) * time.Second,
		PollInterval:  time.Duration(cfg.Probe.PollMS) * time.Millisecond,
		MaxConcurrent: cfg.Probe.MaxConcurrent,
	})

	// Initialize services
	pipelineService := service.NewPipelineService(reg, eng, asynqClient, cfg.Server.BaseURL)

	// Initialize handlers
	pipelineHandler := handler.NewPipelineHandler(pipelineService, validate)
	mediaHandler := handler.NewMediaHandler(pipelineService, prober, validate)
	systemHandler := handler.NewSystemHandler(eng)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Public routes
	app.Get("/", systemHandler.Health)
	app.Get("/health", systemHandler.Health)
	app.Get("/samples", systemHandler.Samples)

	if cfg.Auth.Enabled {
		app.Use(authMiddleware.Authenticate())
	}

	// Pipeline routes
	app.Post("/pipelines", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerMin), pipelineHandler.Create)
	app.Get("/pipelines", pipelineHandler.List)
	app.Get("/pipelines/:id", pipelineHandler.Get)
	app.Delete("/pipelines/:id", pipelineHandler.Stop)

	// Media routes
	app.Post("/convert", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerMin), mediaHandler.Convert)
	app.Post("/thumbnail", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerMin), mediaHandler.Thumbnail)
	app.Post("/stream", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerMin), mediaHandler.Stream)
	app.Get("/analyze/:url", rateLimiter.ProbeLimit(cfg.RateLimit.ProbePerMin), mediaHandler.Analyze)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/pipelines/:id", websocket.New(func(c *websocket.Conn) {
		pipelineID := c.Params("id")
		hub.HandleConnection(c, pipelineID)
	}))

	// Start Asynq worker server
	if cfg.Worker.Enabled && redisAvailable {
		go startWorkerServer(cfg, reg, eng, hub)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, reg *registry.Registry, eng engine.Engine, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				service.QueuePipelines: 10,
			},
		},
	)

	executeWorker := worker.NewExecuteWorker(reg, eng, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeExecute, executeWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
