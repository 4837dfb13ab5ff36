// Package bootstrap loads configuration, wires every component together,
// and owns the application lifecycle. A missing database or Redis at
// startup degrades the process to registry-only operation instead of
// killing it; the websocket surface keeps working either way.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/huzaifaabbasi630/sharehub-backend/internal/handler/http"
	wsHandler "github.com/huzaifaabbasi630/sharehub-backend/internal/handler/websocket"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/hub"
	gormpersistence "github.com/huzaifaabbasi630/sharehub-backend/internal/infra/persistence/gorm"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/infra/setup"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/middleware"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/registry"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/repository"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/service"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/tasks"
	"github.com/huzaifaabbasi630/sharehub-backend/internal/worker"
)

// Config holds everything loaded from the environment.
type Config struct {
	DBUser             string
	DBPassword         string
	DBHost             string
	DBPort             string
	DBName             string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ServerPort         string
	LogLevel           string
	AppEnv             string
	CORSAllowedOrigin  string
	RateLimitMax       int
	RateLimitWindow    time.Duration
	StaleRoomCutoffSec int64
}

// LoadConfig reads configuration from a .env file when present, then the
// environment. Only defaults are applied; DB and Redis settings may be
// absent, in which case the corresponding component degrades.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            os.Getenv("DB_NAME"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AppEnv:            os.Getenv("APP_ENV"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		RateLimitMax:      100,
		RateLimitWindow:   1 * time.Second,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.CORSAllowedOrigin == "" {
		cfg.CORSAllowedOrigin = "http://localhost:3000"
	}

	cfg.StaleRoomCutoffSec = 3600
	if raw := os.Getenv("STALE_ROOM_CUTOFF_SECONDS"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			cfg.StaleRoomCutoffSec = n
		}
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App holds the wired components and whatever needs closing on shutdown.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Hub         *hub.Hub
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
	scheduler      *asynq.Scheduler
}

// NewApp creates and wires all components. It returns an error only for
// configuration problems; infrastructure that cannot be reached is logged
// and replaced with a degraded stand-in.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(logLevel)
	log.Infof("Logger initialized (Level: %s)", logLevel.String())

	app := &App{Config: cfg, Log: log}

	// Durable store. Failure here is survivable.
	var (
		roomRepo    repository.RoomRepository    = repository.UnavailableRoomRepository{}
		messageRepo repository.MessageRepository = repository.UnavailableMessageRepository{}
		requestRepo repository.JoinRequestRepository = repository.UnavailableJoinRequestRepository{}
		callLogRepo repository.CallLogRepository = repository.UnavailableCallLogRepository{}
	)
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Warn("Database unreachable, running on session registry only")
	} else if err := setup.MigrateDB(db); err != nil {
		log.WithError(err).Warn("Database migration failed, running on session registry only")
	} else {
		app.DB = db
		roomRepo = gormpersistence.NewGormRoomRepository(db)
		messageRepo = gormpersistence.NewGormMessageRepository(db)
		requestRepo = gormpersistence.NewGormJoinRequestRepository(db)
		callLogRepo = gormpersistence.NewGormCallLogRepository(db)
		log.Info("Database initialized and migrated")
	}

	// Redis backs the rate limiter and the task broker. Also survivable.
	if cfg.RedisAddr != "" {
		redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("Redis unreachable, rate limiting and background tasks disabled")
		} else {
			app.RedisClient = redisClient
			app.redisClientOpt = asynq.RedisClientOpt{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}
			app.AsynqClient = asynq.NewClient(app.redisClientOpt)
			log.Info("Redis and Asynq clients initialized")
		}
	} else {
		log.Warn("REDIS_ADDR not set, rate limiting and background tasks disabled")
	}

	reg := registry.New()
	hubInstance := hub.NewHub()
	app.Hub = hubInstance

	var queue service.TaskQueue
	if app.AsynqClient != nil {
		queue = tasks.NewEnqueuer(app.AsynqClient)
	}

	roomService := service.NewRoomService(roomRepo, requestRepo, reg, hubInstance, queue)
	messageService := service.NewMessageService(messageRepo, reg, hubInstance)
	callService := service.NewCallService(callLogRepo, reg, hubInstance)
	log.Info("Services initialized")

	gateway := wsHandler.NewHandler(hubInstance, roomService, messageService, callService)
	hubInstance.SetHandler(gateway)

	roomHandler := httpHandler.NewRoomHandler(roomService, messageService)
	messageHandler := httpHandler.NewMessageHandler(messageService)

	if app.AsynqClient != nil && app.DB != nil {
		app.AsynqServer = worker.NewWorkerServer(app.redisClientOpt, roomRepo, cfg.StaleRoomCutoffSec, log)
		log.Info("Worker server initialized")
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware(cfg.CORSAllowedOrigin))
	if app.RedisClient != nil {
		router.Use(middleware.RateLimit(app.RedisClient, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	api := router.Group("/api")
	{
		api.POST("/rooms", roomHandler.CreateRoom)
		api.GET("/rooms/:code", roomHandler.GetRoomByCode)
		api.GET("/rooms/:code/messages", roomHandler.ListMessages)
		api.POST("/messages", messageHandler.CreateMessage)
		api.PUT("/messages/:messageId/read", messageHandler.MarkRead)
	}
	router.GET("/ws", gateway.HandleConnection)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"database":  app.DB != nil,
			"broker":    app.AsynqClient != nil,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	log.Info("Router setup complete")

	app.HttpServer = &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	log.Info("Application assembled successfully")
	return app, nil
}

// Start launches the hub loop, the worker, the scheduler, and the HTTP
// server. It returns immediately; Shutdown reverses it.
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	if a.AsynqServer != nil {
		go a.AsynqServer.Start()
		a.Log.Info("Asynq worker server routine started")
		a.registerPeriodicTasks()
	}

	go func() {
		a.Log.Infof("HTTP server listening on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	task := tasks.NewRoomSweepTask()
	schedule := "@every 10m"
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("low"))
	if err != nil {
		a.Log.Errorf("Could not register periodic room sweep task: %v", err)
	} else {
		a.Log.Infof("Periodic room sweep registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	}

	a.scheduler = scheduler
	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := scheduler.Run(); err != nil {
			if !errors.Is(err, asynq.ErrServerClosed) {
				a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
			} else {
				a.Log.Info("Asynq scheduler stopped.")
			}
		}
	}()
}

// Shutdown stops every component in dependency order.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.Hub != nil {
		a.Hub.Close()
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware logs one structured line per HTTP request.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}

func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
