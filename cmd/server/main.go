package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoaphan/careerframe/adapters/event"
	httpAdapter "github.com/khoaphan/careerframe/adapters/http"
	"github.com/khoaphan/careerframe/adapters/persistence"
	authUC "github.com/khoaphan/careerframe/internal/application/usecase/auth"
	profileUC "github.com/khoaphan/careerframe/internal/application/usecase/profile"
	sectionUC "github.com/khoaphan/careerframe/internal/application/usecase/section"
	"github.com/khoaphan/careerframe/internal/config"
	"github.com/khoaphan/careerframe/pkg/auth"
	"github.com/khoaphan/careerframe/pkg/logger"
	"github.com/khoaphan/careerframe/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting CareerFrame API Server...")

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "careerframe-api")
		if err != nil {
			appLogger.Warn("tracing disabled, cannot init tracer provider")
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	sectionRepo := persistence.NewPostgresSectionRepo(dbPool, appLogger)
	profileCache := persistence.NewRedisProfileCache(redisClient, cfg.Cache.PublicProfileTTL)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	sectionUseCase := sectionUC.NewSectionUseCase(sectionRepo, profileRepo, kafkaClient, profileCache, cfg.Sections.RemovalGrace, appLogger)
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, sectionRepo, profileCache, sectionUseCase, appLogger)

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(loginUseCase)
	profileHandler := httpAdapter.NewProfileHandler(profileUseCase)
	sectionHandler := httpAdapter.NewSectionHandler(sectionUseCase)
	templateHandler := httpAdapter.NewTemplateHandler(profileUseCase)

	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)

	router := gin.Default()
	router.Use(httpAdapter.MetricsMiddleware())
	router.GET("/metrics", httpAdapter.MetricsHandler())

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		owner := api.Group("/owner")
		owner.Use(authMiddleware)
		{
			owner.GET("/profile", profileHandler.GetProfile)
			owner.PUT("/profile", profileHandler.UpdateProfile)
			owner.GET("/profile/export", profileHandler.ExportProfile)

			sections := owner.Group("/sections")
			{
				sections.GET("", sectionHandler.ListSections)
				sections.POST("", sectionHandler.AddSection)
				sections.POST("/bulk", sectionHandler.BulkCreateSections)
				sections.PUT("/order", sectionHandler.ReorderSections)
				sections.POST("/restore", sectionHandler.RestoreSection)
				sections.PUT("/:id", sectionHandler.EditSection)
				sections.PATCH("/:id/visibility", sectionHandler.ToggleVisibility)
				sections.POST("/:id/move", sectionHandler.MoveSection)
				sections.DELETE("/:id", sectionHandler.RemoveSection)
			}

			owner.GET("/templates", templateHandler.ListTemplates)
			owner.GET("/templates/recommended", templateHandler.ListRecommendedTemplates)
		}

		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.GET("/profiles", profileHandler.SearchProfiles)
		api.GET("/profiles/:slug", profileHandler.GetPublicProfile)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server running on port " + cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", err)
	}

	// pending removals must not be lost with the process
	sectionUseCase.Shutdown()
	appLogger.Info("Shutdown complete.")
}
