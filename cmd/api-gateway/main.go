package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/smd-api/api/swagger"
	"github.com/noah-isme/smd-api/internal/handler"
	"github.com/noah-isme/smd-api/internal/middleware"
	"github.com/noah-isme/smd-api/internal/models"
	"github.com/noah-isme/smd-api/internal/repository"
	"github.com/noah-isme/smd-api/internal/service"
	"github.com/noah-isme/smd-api/pkg/cache"
	"github.com/noah-isme/smd-api/pkg/config"
	"github.com/noah-isme/smd-api/pkg/database"
	"github.com/noah-isme/smd-api/pkg/export"
	"github.com/noah-isme/smd-api/pkg/jobs"
	"github.com/noah-isme/smd-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/smd-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/smd-api/pkg/middleware/requestid"
	"github.com/noah-isme/smd-api/pkg/realtime"
)

// @title SMD API
// @version 1.0.0
// @description Syllabus management with workflow approval, versioning and notifications
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "smd-api",
	})
	userSvc := service.NewUserService(userRepo, logr)

	var sink service.NotificationSink
	if cfg.Notifications.RealtimeEnabled {
		sink = realtime.NewPublisher(redisClient)
	}
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, subscriptionRepo, sink, metricsSvc, logr)

	syllabusSvc := service.NewSyllabusService(syllabusRepo, versionRepo, logr)
	workflowSvc := service.NewWorkflowService(syllabusRepo, workflowRepo, notificationSvc, metricsSvc, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, syllabusRepo, logr)

	aiSvc := service.NewAIJobService(cfg.AI.ServiceURL,
		&http.Client{Timeout: cfg.AI.RequestTimeout},
		jobs.QueueConfig{Workers: cfg.AI.Workers, Logger: logr},
		logr)
	aiSvc.Start(ctx)
	defer aiSvc.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	syllabusHandler := handler.NewSyllabusHandler(syllabusSvc, export.NewPDFExporter(), export.NewCSVExporter())
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, subscriptionSvc)
	aiHandler := handler.NewAIHandler(aiSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	authorized := api.Group("")
	authorized.Use(middleware.JWT(authSvc))

	users := authorized.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleSystemAdmin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)

	syllabi := authorized.Group("/syllabi")
	syllabi.GET("", syllabusHandler.List)
	syllabi.GET("/export", syllabusHandler.ExportCSV)
	syllabi.GET("/review-queue",
		middleware.RequireRoles(models.RoleHOD, models.RoleAcademicAffairs, models.RolePrincipal),
		syllabusHandler.ReviewQueue)
	syllabi.GET("/:id", syllabusHandler.Get)
	syllabi.GET("/:id/versions", syllabusHandler.Versions)
	syllabi.GET("/:id/history", workflowHandler.History)
	syllabi.GET("/:id/export", syllabusHandler.ExportPDF)
	syllabi.POST("", middleware.RequireRoles(models.RoleLecturer), syllabusHandler.Create)
	syllabi.PUT("/:id", middleware.RequireRoles(models.RoleLecturer), syllabusHandler.Update)

	syllabi.POST("/:id/submit", middleware.RequireRoles(models.RoleLecturer), workflowHandler.Submit)
	syllabi.POST("/:id/approve",
		middleware.RequireRoles(models.RoleHOD, models.RoleAcademicAffairs),
		workflowHandler.Approve)
	syllabi.POST("/:id/reject",
		middleware.RequireRoles(models.RoleHOD, models.RoleAcademicAffairs, models.RolePrincipal),
		workflowHandler.Reject)
	syllabi.POST("/:id/publish", middleware.RequireRoles(models.RolePrincipal), workflowHandler.Publish)

	syllabi.POST("/:id/subscribe", notificationHandler.Subscribe)
	syllabi.DELETE("/:id/subscribe", notificationHandler.Unsubscribe)

	notifications := authorized.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	ai := authorized.Group("/ai")
	ai.Use(middleware.RequireRoles(models.RoleLecturer, models.RoleHOD, models.RoleAcademicAffairs, models.RolePrincipal))
	ai.POST("/semantic-diff", aiHandler.SemanticDiff)
	ai.POST("/summary", aiHandler.Summary)
	ai.POST("/clo-plo-check", aiHandler.CLOPLOCheck)
	ai.POST("/ocr", aiHandler.OCR)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
