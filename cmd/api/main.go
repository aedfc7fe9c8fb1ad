package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/config"
	"github.com/openconf/editorial-backend/internal/handler"
	"github.com/openconf/editorial-backend/internal/middleware"
	"github.com/openconf/editorial-backend/internal/migration"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/openconf/editorial-backend/internal/routes"
	"github.com/openconf/editorial-backend/internal/service"
	pkgcache "github.com/openconf/editorial-backend/pkg/cache"
	"github.com/openconf/editorial-backend/pkg/jwt"
	pkglogger "github.com/openconf/editorial-backend/pkg/logger"
	pkgredis "github.com/openconf/editorial-backend/pkg/redis"
	pkgstorage "github.com/openconf/editorial-backend/pkg/storage"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
		pkglogger.Info("Cache service initialized")
	}

	var store *pkgstorage.Client
	if cfg.Storage.Bucket != "" {
		store, err = pkgstorage.NewClient(pkgstorage.Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			pkglogger.Info("Warning: storage init failed: %v (continuing without object storage)", err)
			store = nil
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn.Std(), cfg.JWT.RefreshIn.Std())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	principalRepo := repository.NewPrincipalRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	editableRepo := repository.NewEditableRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	fileTypeRepo := repository.NewFileTypeRepository(db)
	conditionRepo := repository.NewReviewConditionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	accessService := service.NewAccessService(principalRepo, cacheService)
	settingsService := service.NewSettingsService(settingsRepo, cacheService)
	layoutService := service.NewLayoutService(settingsRepo)
	previewService := service.NewPreviewService()
	editableService := service.NewEditableService(editableRepo, revisionRepo, fileTypeRepo, conditionRepo, contributionRepo, eventRepo)
	managementService := service.NewManagementService(fileTypeRepo, conditionRepo, editableRepo, principalRepo, userRepo, eventRepo, settingsService)
	principalService := service.NewPrincipalService(principalRepo, accessService)
	attachmentService := service.NewAttachmentService(attachmentRepo, store, previewService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	editableHandler := handler.NewEditableHandler(editableService, accessService, settingsService, authService)
	managementHandler := handler.NewManagementHandler(managementService, principalService, settingsService, layoutService, accessService, authService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, accessService, authService)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	routes.Setup(router, authHandler, editableHandler, managementHandler, attachmentHandler, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s, delimiter string) []string {
	parts := strings.Split(s, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
