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
	"github.com/yourusername/satprep-api/internal/config"
	"github.com/yourusername/satprep-api/internal/handler"
	"github.com/yourusername/satprep-api/internal/middleware"
	pgRepo "github.com/yourusername/satprep-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/satprep-api/internal/repository/redis"
	"github.com/yourusername/satprep-api/internal/service"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
	"github.com/yourusername/satprep-api/pkg/auth"
	"github.com/yourusername/satprep-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// The proficiency hierarchy is static configuration; a bad weight table
	// must stop the process before it can misprice anyone's scores.
	hierarchy, err := proficiency.DefaultHierarchy()
	if err != nil {
		log.Printf("Failed to build proficiency hierarchy: %v", err)
		os.Exit(1)
	}

	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	proficiencyRepo := pgRepo.NewProficiencyRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}

	sessionService := service.NewSessionService(sessionRepo, userRepo, proficiencyRepo, cacheRepo, hierarchy, db)
	practiceService := service.NewPracticeService(questionRepo, sessionRepo, sessionService, cacheRepo, hierarchy)
	progressService := service.NewProgressService(proficiencyRepo, cacheRepo, hierarchy)
	userService := service.NewUserService(userRepo)
	questionService := service.NewQuestionService(questionRepo, cacheRepo, hierarchy)

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService, practiceService, progressService)
	progressHandler := handler.NewProgressHandler(progressService)
	userHandler := handler.NewUserHandler(userService)
	questionHandler := handler.NewQuestionHandler(questionService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := gin.Default()

	// Trusted proxies affect c.ClientIP(), which the rate limiter keys on.
	// Production: trust no proxy headers. Development: trust localhost.
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

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
	{
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
		}

		api.GET("/leaderboard", userHandler.GetLeaderboard)

		sessions := api.Group("/sessions")
		sessions.Use(authMiddleware.RequireAuth())
		{
			sessions.POST("", sessionHandler.StartSession)
			sessions.GET("", sessionHandler.GetHistory)

			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractUintParam("id", "sessionID"))
			{
				sessionWithID.GET("", sessionHandler.GetSession)
				sessionWithID.GET("/questions", sessionHandler.GetQuestions)
				sessionWithID.POST("/answers", sessionHandler.SubmitAnswer)
				sessionWithID.GET("/answers", sessionHandler.GetAnswers)
				sessionWithID.PUT("/progress", sessionHandler.UpdateProgress)
				sessionWithID.POST("/complete", sessionHandler.CompleteSession)
			}
		}

		authedProgress := api.Group("/progress")
		authedProgress.Use(authMiddleware.RequireAuth())
		{
			authedProgress.GET("", progressHandler.GetProgress)
		}

		adminQuestions := api.Group("/admin/questions")
		adminQuestions.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			adminQuestions.POST("", questionHandler.CreateQuestion)
			adminQuestions.POST("/batch", questionHandler.CreateQuestionBatch)
			adminQuestions.GET("/count", questionHandler.CountQuestions)

			adminQuestionWithID := adminQuestions.Group("/:id")
			adminQuestionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				adminQuestionWithID.PUT("", questionHandler.UpdateQuestion)
				adminQuestionWithID.DELETE("", questionHandler.DeleteQuestion)
			}
		}
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis client: %v", err)
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}

	log.Println("Server exited")
}
