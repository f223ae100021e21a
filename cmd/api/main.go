package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/bundled"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/config"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/middleware"
	pgRepo "github.com/RoutinizeWellness/aviate-ace-sub001/internal/repository/postgres"
	redisRepo "github.com/RoutinizeWellness/aviate-ace-sub001/internal/repository/redis"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
	"github.com/RoutinizeWellness/aviate-ace-sub001/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), logger.Warn)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)
	examRepo := pgRepo.NewExamRepo(db)
	missedRepo := pgRepo.NewMissedQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRecordRepo(db)
	suggestionRepo := pgRepo.NewSuggestionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, cfg.Redis.KeyPrefix)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	engineCfg := cfg.Engine.Settings()
	clock := examengine.SystemClock()
	dispatcher := examengine.AsyncDispatcher{Timeout: engineCfg.SideEffectTimeout}

	// Цепочка источников: remote -> snapshot -> static -> minimal
	staticSource, minimalSource, err := bundled.NewSources(engineCfg.MinimalSetLimit)
	if err != nil {
		log.Printf("Failed to load bundled question sets: %v", err)
		os.Exit(1)
	}
	snapshot := examengine.NewSnapshotSource(cacheRepo, engineCfg.SnapshotTTL)
	sources := []examengine.Source{
		examengine.NewRemoteSource(questionRepo, engineCfg.RemoteTimeout),
		snapshot,
		staticSource,
		minimalSource,
	}

	bank := examengine.NewQuestionBank(sources, examengine.BankOptions{
		Config:     engineCfg,
		Clock:      clock,
		Snapshot:   snapshot,
		Dispatcher: dispatcher,
	})
	ledger := examengine.NewReviewLedger(missedRepo, clock)

	// Инициализируем сервисы
	examService := service.NewExamService(service.ExamServiceDeps{
		Bank:         bank,
		Selector:     examengine.NewSelector(examengine.NewSeededRand(engineCfg.RandomSeed), ledger),
		Normalizer:   examengine.NewCriteriaNormalizer(engineCfg),
		Ledger:       ledger,
		Stats:        examengine.NewStatsRecorder(cacheRepo),
		Recorder:     examengine.NewRecordWriter(sessionRepo),
		Dispatcher:   dispatcher,
		Clock:        clock,
		Config:       engineCfg,
		ExamRepo:     examRepo,
		QuestionRepo: questionRepo,
		SessionRepo:  sessionRepo,
		CacheRepo:    cacheRepo,
	})
	suggestionService := service.NewSuggestionService(suggestionRepo, bank, clock)

	// Прогреваем банк вопросов в фоне
	go func() {
		questions := bank.GetAllQuestions(ctx)
		log.Printf("[Main] Банк вопросов прогрет: %d вопросов", len(questions))
	}()

	// Инициализируем обработчики
	examHandler := handler.NewExamHandler(examService)
	reviewHandler := handler.NewReviewHandler(examService)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService)

	rateLimiter := middleware.NewRateLimiter(redisClient)
	startLimit := rateLimiter.Limit(middleware.SessionStartRateLimitConfig(cfg.RateLimit.SessionStartsPerMinute))
	suggestionLimit := rateLimiter.Limit(middleware.SuggestionRateLimitConfig(cfg.RateLimit.SuggestionsPerHour))

	router := gin.Default()

	// В production не доверяем прокси-заголовкам
	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "bank": examService.BankReport(c.Request.Context())})
	})

	api := router.Group("/api")
	{
		// Экзамены (каталог)
		exams := api.Group("/exams")
		{
			exams.GET("", examHandler.ListExams)
			exams.GET("/:id", middleware.ExtractUintParam("id", "examID"), examHandler.GetExam)
		}

		// Сессии пользователя
		sessions := api.Group("/sessions")
		sessions.Use(middleware.RequireUser())
		{
			sessions.POST("", startLimit, examHandler.StartSession)
			sessions.GET("/current", examHandler.GetCurrentSession)
			sessions.GET("/history", examHandler.History)
			sessions.POST("/current/answers", examHandler.SelectAnswer)
			sessions.POST("/current/answers/confirm", examHandler.ConfirmAnswer)
			sessions.POST("/current/advance", examHandler.Advance)
			sessions.POST("/current/retreat", examHandler.Retreat)
			sessions.POST("/current/submit", examHandler.Submit)
			sessions.DELETE("/current", examHandler.Abandon)
		}

		// Журнал ошибок
		review := api.Group("/review")
		review.Use(middleware.RequireUser())
		{
			review.GET("/missed", reviewHandler.ListMissed)
			review.GET("/missed/export", reviewHandler.ExportMissed)
		}

		// Банк вопросов
		questions := api.Group("/questions")
		{
			questions.GET("", examHandler.ListQuestions)
			questions.GET("/preview", middleware.OptionalUser(), examHandler.PreviewSelection)
			questions.GET("/cache", examHandler.GetCacheState)
			questions.POST("/cache/invalidate", examHandler.InvalidateCache)

			questionWithID := questions.Group("/:id")
			questionWithID.Use(middleware.ExtractStringParam("id", "questionID", 128))
			{
				questionWithID.GET("/stats", examHandler.GetQuestionStats)
				questionWithID.DELETE("", examHandler.DeactivateQuestion)
			}
		}

		// Предложенные вопросы
		suggestions := api.Group("/suggestions")
		{
			suggestions.POST("", middleware.RequireUser(), suggestionLimit, suggestionHandler.Submit)
			suggestions.GET("", suggestionHandler.List)
			suggestions.PUT("/:id/review", middleware.ExtractUintParam("id", "suggestionID"), suggestionHandler.Review)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	// Останавливаем таймеры активных сессий
	examService.Shutdown()

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
