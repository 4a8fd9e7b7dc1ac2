package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/controller"
	"lumen_quiz_backend/internal/gamification"
	"lumen_quiz_backend/internal/repository"
	"lumen_quiz_backend/internal/service"
	"lumen_quiz_backend/pkg/database"
	"lumen_quiz_backend/pkg/logger"
	"lumen_quiz_backend/pkg/monitoring"
	"lumen_quiz_backend/pkg/security"
	"lumen_quiz_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user    *repository.UserRepository
	profile *repository.ProfileRepository
	quiz    *repository.QuizRepository
	result  *repository.ResultRepository
	states  *repository.AttemptStateStore
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	user     *service.UserService
	quiz     *service.QuizService
	play     *service.PlayService
	importer *service.ImportService
}

type controllers struct {
	auth    *controller.AuthController
	quiz    *controller.QuizController
	play    *controller.PlayController
	user    *controller.UserController
	importc *controller.ImportController
	health  *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		profile: repository.NewProfileRepository(db),
		quiz:    repository.NewQuizRepository(db),
		result:  repository.NewResultRepository(db),
		states:  repository.NewAttemptStateStore(rdb, time.Duration(cfg.Game.AttemptTTLMinutes)*time.Minute),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.profile, repos.result, s.storage)
	s.quiz = service.NewQuizService(repos.quiz, rdb)
	s.play = service.NewPlayService(repos.quiz, repos.result, repos.profile, repos.states,
		gamification.PenaltyPolicy(cfg.Game.RepeatPenalty))
	s.importer = service.NewImportService(repos.user, s.quiz, cfg)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		quiz:    controller.NewQuizController(s.quiz, s.play),
		play:    controller.NewPlayController(s.play),
		user:    controller.NewUserController(s.user),
		importc: controller.NewImportController(s.importer),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.quiz.ProcessScheduledPublishes(); err != nil {
				logger.Log.Error("scheduled publish error", zap.Error(err))
			}
		}
	}()
}

// RunImport pulls trivia quizzes without starting the HTTP server; "all"
// imports every known category.
func (a *App) RunImport(category string) error {
	if category == "all" {
		_, err := a.services.importer.ImportAll()
		return err
	}
	_, err := a.services.importer.ImportCategory(category)
	return err
}

// OnConfigReload applies hot-reloadable settings. Only the penalty policy is
// safe to swap at runtime; everything else needs a restart.
func (a *App) OnConfigReload(cfg *config.Config) {
	a.services.play.SetPolicy(gamification.PenaltyPolicy(cfg.Game.RepeatPenalty))
	logger.Log.Info("config reloaded", zap.String("repeatPenalty", cfg.Game.RepeatPenalty))
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lumen-quiz", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
