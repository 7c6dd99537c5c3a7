package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "rentacar-backend/internal/api/http"
	"rentacar-backend/internal/config"
	"rentacar-backend/internal/email"
	"rentacar-backend/internal/jobs"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/metrics"
	"rentacar-backend/internal/repository/postgres"
	"rentacar-backend/internal/repository/redis"
	"rentacar-backend/internal/security"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentacar Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "workers", cfg.Email.Workers)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	redisClient := redis.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("Failed to ping redis", "address", cfg.Redis.Address, "error", err)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Info("Redis connection established", "address", cfg.Redis.Address)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Email queue workers live as long as the server
	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Fatalf("Failed to configure email sender: %v", err)
	}
	emailQueue := jobs.NewEmailQueue(redisClient, sender, cfg.Email.QueueKey, cfg.Email.Workers, cfg.Email.MaxRetries)
	emailQueue.Start(ctx)

	// Initialize Storage Service
	var (
		storageService storage.StorageInterface
		mockStorage    *storage.MockStorageService
	)
	switch cfg.Storage.Type {
	case "", "mock":
		logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
		mockStorage, err = storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize mock storage: %v", err)
		}
		storageService = mockStorage
	case "s3":
		logger.Info("Using S3 storage", "endpoint", cfg.Storage.S3.Endpoint, "bucket", cfg.Storage.S3.Bucket)
		storageService, err = storage.NewS3Storage(storage.S3Options{
			Endpoint:       cfg.Storage.S3.Endpoint,
			Region:         cfg.Storage.S3.Region,
			Bucket:         cfg.Storage.S3.Bucket,
			AccessKey:      cfg.Storage.S3.AccessKey,
			SecretKey:      cfg.Storage.S3.SecretKey,
			ForcePathStyle: cfg.Storage.S3.ForcePathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	default:
		log.Fatalf("Storage type '%s' not supported", cfg.Storage.Type)
	}
	if err := storageService.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to prepare storage bucket: %v", err)
	}

	// Initialize Repositories
	store := postgres.NewStore(db)
	codeStore := redis.NewVerificationCodeStore(redisClient, redis.DefaultCodeTTL)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	// Initialize Services
	emailSvc := service.NewEmailService(emailQueue, cfg.Email.FromName)
	roleSvc := service.NewRoleService(store.RoleRepository)
	userSvc := service.NewUserService(store.UserRepository, store.RoleRepository)
	carSvc := service.NewCarService(store.CarRepository)
	typeSvc := service.NewCarPictureTypeService(store.CarPictureTypeRepository)
	pictureSvc := service.NewPictureService(store.PictureRepository, store.CarRepository)
	documentSvc := service.NewDocumentService(store.DocumentRepository, store.UserRepository)
	authSvc := service.NewAuthService(userSvc, store.UserRepository, codeStore, tokenManager, emailSvc)
	objectSvc := service.NewObjectStorageService(storageService, documentSvc, cfg.PresignTTL())
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.UserRepository,
		store.CarRepository,
		emailSvc,
	)

	// Seed lookup tables
	if err := roleSvc.InitializeRoles(ctx); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	if err := typeSvc.InitializeTypes(ctx); err != nil {
		log.Fatalf("Failed to seed car picture types: %v", err)
	}

	metrics.Register()

	handler := httpapi.NewRouter(&httpapi.Services{
		Rental:         rentalSvc,
		User:           userSvc,
		Role:           roleSvc,
		Car:            carSvc,
		Picture:        pictureSvc,
		CarPictureType: typeSvc,
		Document:       documentSvc,
		Auth:           authSvc,
		ObjectStorage:  objectSvc,
	}, httpapi.RouterOptions{
		Tokens:         tokenManager,
		RateLimit:      cfg.RateLimit,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedTypes:   cfg.Storage.AllowedTypes,
		MockStorage:    mockStorage,
		Health: func(r *http.Request) error {
			if err := db.PingContext(r.Context()); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	emailQueue.Wait()
	logger.Info("Server stopped. Goodbye!")
}
