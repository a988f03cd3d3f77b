package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/sims/internal/app/controllers"
	appMigrations "github.com/yigit/sims/internal/app/migrations"
	appRepos "github.com/yigit/sims/internal/app/repositories"
	"github.com/yigit/sims/internal/app/repositories/memory"
	appRoutes "github.com/yigit/sims/internal/app/routes"
	appServices "github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/config"
	"github.com/yigit/sims/internal/db"
	appMiddleware "github.com/yigit/sims/internal/middleware"
	pkgAuth "github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/email"
	"github.com/yigit/sims/internal/pkg/filestorage"
	"github.com/yigit/sims/internal/pkg/helpers"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/pkg/queue"
	"github.com/yigit/sims/internal/pkg/validation"
	"github.com/yigit/sims/internal/pkg/websocket"
	"github.com/yigit/sims/internal/seed"
)

const uploadsRoute = "/uploads"

// Infrastructure is everything the services are built on. DB and Redis are
// nil when the memory driver or the no-op publisher is in use. Hub is nil
// when live notification streams are not served.
type Infrastructure struct {
	Repos      *appServices.Repositories
	DB         *db.PostgresDB
	Redis      *queue.RedisClient
	Hub        *websocket.Hub
	FileStore  appServices.FileStore
	Publisher  appServices.NotificationPublisher
	Mailer     appServices.Mailer
	Clock      helpers.Clock
	BcryptCost int

	stopHub context.CancelFunc
}

// StartHub runs a notification stream hub until Close
func (i *Infrastructure) StartHub(allowedOrigins []string, lgr zerolog.Logger) *websocket.Hub {
	ctx, cancel := context.WithCancel(context.Background())
	i.Hub = websocket.NewHub(lgr, allowedOrigins)
	i.stopHub = cancel
	go i.Hub.Run(ctx)
	return i.Hub
}

// Close stops the stream hub and releases the database pool and the Redis
// connection
func (i *Infrastructure) Close(lgr zerolog.Logger) {
	if i.stopHub != nil {
		i.stopHub()
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			lgr.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if i.DB != nil {
		i.DB.Close()
		lgr.Info().Msg("Database connection pool closed.")
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          *appServices.AuthService
	UserService          *appServices.UserService
	AcademicService      *appServices.AcademicService
	AttendanceService    *appServices.AttendanceService
	ResultService        *appServices.ResultService
	CommunicationService *appServices.CommunicationService
	NotificationService  *appServices.NotificationService
	Controllers          appRoutes.Controllers
	AuthMiddleware       *appMiddleware.AuthMiddleware
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(filepath.Join("configs", "config.yaml"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   level,
		Pretty:  cfg.Logging.Format == "text",
		Service: "sims",
	})
	lgr.Info().Str("logLevel", string(level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	if len(cfg.EnvOverrides) > 0 {
		lgr.Debug().Strs("variables", cfg.EnvOverrides).Msg("Configuration overridden from environment")
	}
	return cfg, lgr, nil
}

// SetupInfrastructure opens the configured store, file storage, mailer and
// notification publisher, running migrations and the seed on the way.
func SetupInfrastructure(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Clock:  helpers.SystemClock,
		Mailer: email.NewEmailService(smtpConfig(cfg), lgr),
	}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory store; data is lost on restart")
		infra.Repos = memory.NewStore().Repositories()
	default:
		database, err := SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		infra.DB = database
		infra.Repos = appRepos.NewRepositories(database)
	}

	fileStore, err := SetupFileStore(cfg, lgr)
	if err != nil {
		infra.Close(lgr)
		return nil, err
	}
	infra.FileStore = fileStore

	var publisher appServices.NotificationPublisher
	publisher, infra.Redis = SetupPublisher(cfg, lgr)
	hub := infra.StartHub(cfg.AllowedOrigins(), lgr)
	infra.Publisher = queue.Fanout{publisher, hub}

	err = seed.Run(ctx, infra.Repos, seed.Options{DemoData: cfg.Seed.DemoData, Clock: infra.Clock}, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return infra, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(migrateCtx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupFileStore opens local or S3 storage for profile photos
func SetupFileStore(cfg *config.Config, lgr zerolog.Logger) (appServices.FileStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		s3cfg := cfg.Storage.S3
		store, err := filestorage.NewS3Storage(filestorage.S3Config{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			UseSSL:    s3cfg.UseSSL,
			PublicURL: s3cfg.PublicURL,
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize S3 storage")
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		lgr.Info().Str("bucket", s3cfg.Bucket).Msg("Using S3 file storage")
		return store, nil
	default:
		baseURL := cfg.Storage.BaseURL
		if baseURL == "" {
			baseURL = uploadsRoute
		}
		store, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize file storage")
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return store, nil
	}
}

// SetupPublisher connects to Redis when enabled. An unreachable Redis does
// not stop the server: notifications are still stored, only not pushed.
func SetupPublisher(cfg *config.Config, lgr zerolog.Logger) (appServices.NotificationPublisher, *queue.RedisClient) {
	if !cfg.Redis.Enabled {
		return queue.NopPublisher{}, nil
	}

	client, err := queue.NewRedisClient(queue.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.RedisAddr()).Msg("Redis unavailable, notifications will not be pushed")
		return queue.NopPublisher{}, nil
	}
	lgr.Info().Str("addr", cfg.RedisAddr()).Msg("Publishing notifications to Redis")
	return queue.NewProducer(client, cfg.Redis.QueuePrefix), client
}

func smtpConfig(cfg *config.Config) email.SMTPConfig {
	return email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(cfg *config.Config, infra *Infrastructure, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	clock := infra.Clock
	if clock == nil {
		clock = helpers.SystemClock
	}

	deps := &Dependencies{Logger: lgr}
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	repos := infra.Repos
	deps.AuthService = appServices.NewAuthService(
		appServices.NewCredentialSources(repos),
		repos.ResetTokens,
		deps.JWTService,
		infra.Mailer,
		appServices.AuthSettings{
			ResetTokenExpiration: helpers.ParseDuration(cfg.PasswordReset.TokenExpiration, time.Hour),
			FrontendURL:          cfg.PasswordReset.FrontendURL,
			BcryptCost:           infra.BcryptCost,
			Clock:                clock,
		},
		lgr,
	)
	deps.UserService = appServices.NewUserService(repos, infra.FileStore, infra.BcryptCost, lgr)
	deps.AcademicService = appServices.NewAcademicService(repos, clock, lgr)
	deps.AttendanceService = appServices.NewAttendanceService(repos, clock, lgr)
	deps.NotificationService = appServices.NewNotificationService(repos.Notifications, infra.Publisher, lgr)
	deps.ResultService = appServices.NewResultService(repos, deps.NotificationService, lgr)
	deps.CommunicationService = appServices.NewCommunicationService(repos, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	var pinger appControllers.Pinger
	if infra.DB != nil {
		pinger = infra.DB
	}
	var streams appControllers.StreamServer
	if infra.Hub != nil {
		streams = infra.Hub
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.AuthService, deps.UserService, lgr),
		Profile:       appControllers.NewProfileController(deps.AuthService, deps.UserService, lgr),
		Academic:      appControllers.NewAcademicController(deps.AcademicService, lgr),
		User:          appControllers.NewUserController(deps.UserService, lgr),
		Attendance:    appControllers.NewAttendanceController(deps.AttendanceService, lgr),
		Result:        appControllers.NewResultController(deps.ResultService, lgr),
		Communication: appControllers.NewCommunicationController(deps.CommunicationService, lgr),
		Notification:  appControllers.NewNotificationController(deps.NotificationService, streams, lgr),
		Health:        appControllers.NewHealthController(pinger, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)
	router.MaxMultipartMemory = 8 << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	if cfg.Storage.Driver == config.StorageLocal {
		router.Static(uploadsRoute, cfg.Storage.LocalPath)
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Static file serving configured for uploads directory")
	}

	return router
}
