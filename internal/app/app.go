package app

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/controller"
	"course_backend/internal/grading"
	"course_backend/internal/repository"
	"course_backend/internal/service"
	"course_backend/internal/util"
	"course_backend/pkg/configwatcher"
	"course_backend/pkg/database"
	"course_backend/pkg/logger"
	"course_backend/pkg/monitoring"
	"course_backend/pkg/payment"
	"course_backend/pkg/security"
	"course_backend/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Services *Services

	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	module     *repository.ModuleRepository
	test       *repository.TestRepository
	progress   *repository.ProgressRepository
	profile    *repository.ProfileRepository
	access     *repository.AccessRepository
	submission *repository.SubmissionRepository
}

type Services struct {
	Auth       *service.AuthService
	Storage    *service.StorageService
	Catalog    *service.CatalogService
	Progress   *service.ProgressService
	Grades     *service.GradeService
	Tests      *service.TestService
	Submission *service.SubmissionService
	Checkout   *service.CheckoutService
}

type controllers struct {
	auth       *controller.AuthController
	catalog    *controller.CatalogController
	progress   *controller.ProgressController
	test       *controller.TestController
	grade      *controller.GradeController
	submission *controller.SubmissionController
	checkout   *controller.CheckoutController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		module:     repository.NewModuleRepository(db),
		test:       repository.NewTestRepository(db),
		progress:   repository.NewProgressRepository(db),
		profile:    repository.NewProfileRepository(db),
		access:     repository.NewAccessRepository(db),
		submission: repository.NewSubmissionRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *Services {
	s := &Services{}

	policy := grading.Policy{
		MinGrade:      cfg.Course.CertificateMinGrade,
		RequiredTests: cfg.Course.RequiredTests,
	}

	// a nil *StripeGateway must not reach the interface
	var gateway payment.Gateway
	if cfg.Payment.Enabled() {
		gateway = payment.NewStripeGateway(cfg.Payment)
	}

	s.Storage = service.NewStorageService(&cfg.Storage)
	s.Auth = service.NewAuthService(repos.user, cfg)
	s.Catalog = service.NewCatalogService(repos.module, service.NewCatalogCache(rdb, cfg.Redis.CatalogTTL), cfg.Course.DefaultPassingScore)
	s.Progress = service.NewProgressService(repos.module, repos.progress, repos.access, cfg.Course)
	s.Grades = service.NewGradeService(repos.test, repos.profile, repos.user, policy)
	s.Tests = service.NewTestService(repos.test, s.Progress, s.Grades)
	s.Submission = service.NewSubmissionService(repos.module, repos.submission, s.Progress, s.Storage)
	s.Checkout = service.NewCheckoutService(gateway, repos.access, cfg.Course)

	return s
}

func initControllers(s *Services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.Auth),
		catalog:    controller.NewCatalogController(s.Catalog),
		progress:   controller.NewProgressController(s.Progress),
		test:       controller.NewTestController(s.Tests),
		grade:      controller.NewGradeController(s.Grades),
		submission: controller.NewSubmissionController(s.Submission),
		checkout:   controller.NewCheckoutController(s.Checkout),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services, controllers and routes over an open
// database. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	if err := util.InitBindingValidators(); err != nil {
		return nil, err
	}
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := initRepositories(db)
	app.Services = initServices(repos, cfg, rdb)
	ctrls := initControllers(app.Services, db, rdb)

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(logger.ApplyConfig)
	return app, nil
}

// NewApp connects to the configured database, cache and tracer and builds
// the application. The logger must already be initialized.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	app, err := New(cfg, db, rdb)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}
	return app, nil
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// Run serves HTTP until SIGINT or SIGTERM and then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Config.Server.WatchConfig && a.Config.File != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.File, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Close(shutdownCtx)

	logger.Log.Info("Server exiting")
	return nil
}

// Close flushes the tracer and closes database and cache connections.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Sync()
}
