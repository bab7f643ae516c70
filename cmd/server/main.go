package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/nadil1995/notehive2/internal/audit"
	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/internal/config"
	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/handlers"
	"github.com/nadil1995/notehive2/internal/kafka"
	"github.com/nadil1995/notehive2/internal/middleware"
	"github.com/nadil1995/notehive2/internal/quota"
	"github.com/nadil1995/notehive2/internal/redis"
	"github.com/nadil1995/notehive2/internal/router"
	"github.com/nadil1995/notehive2/internal/storage"
	"github.com/nadil1995/notehive2/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.SeedPlans(db); err != nil {
		log.Printf("Failed to seed plans: %v", err)
	}

	// Object storage: S3 when configured, local disk otherwise
	var store storage.Store
	var s3Store *storage.S3Store
	if cfg.S3Configured() {
		s3Store, err = storage.NewS3Store(context.Background(), cfg)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage:", err)
		}
		store = s3Store
		log.Println("Using S3 object storage")
	} else {
		diskStore, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
		store = diskStore
		log.Println("S3 not configured, using local disk storage")
	}

	// Process logger, with the S3 log shipper attached when available
	var shipper *logger.Shipper
	if s3Store != nil && cfg.LogBucket != "" {
		shipper = logger.NewShipper(s3Store, cfg.LogBucket, time.Minute)
		logger.InitLogger(shipper)
	} else {
		logger.InitLogger()
	}

	// Redis and Kafka are optional; every caller nil-guards them
	var cache *redis.Service
	if cfg.RedisAddr != "" {
		cache = redis.NewService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers)
		log.Printf("Kafka producer connected to %s", strings.Join(cfg.KafkaBrokers, ","))
	}

	tokens := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	quotaService := quota.NewService(db)
	recorder := audit.NewRecorder(db, producer)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	middleware.SetupPrometheus(r)
	r.Use(middleware.LoggerMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Serve disk-stored uploads directly when S3 is not configured
	if s3Store == nil {
		r.Static("/uploads", cfg.UploadDir)
	}

	router.SetupRouter(r, tokens, cache, router.Handlers{
		Auth:       handlers.NewAuthHandler(db, tokens),
		Repository: handlers.NewRepositoryHandler(db, producer, cache),
		Timeline:   handlers.NewTimelineHandler(db, producer),
		Storage:    handlers.NewStorageHandler(db, quotaService),
		Upload:     handlers.NewUploadHandler(db, quotaService, store),
		Admin:      handlers.NewAdminHandler(db, recorder),
		Note:       handlers.NewNoteHandler(db, store),
	})

	defer func() {
		if shipper != nil {
			shipper.Close()
		}
		if producer != nil {
			producer.Close()
		}
		if cache != nil {
			cache.Close()
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
