package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/AshiqAbdulkhader/FSAD-version2/api/swagger"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/handler"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/middleware"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/repository"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/service"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/cache"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/config"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/database"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/logger"
	corsmiddleware "github.com/AshiqAbdulkhader/FSAD-version2/pkg/middleware/cors"
	reqidmiddleware "github.com/AshiqAbdulkhader/FSAD-version2/pkg/middleware/requestid"
)

// @title Equipment Lending API
// @version 1.0.0
// @description Equipment lending platform: catalogue, borrowing requests, admin dashboard
// @BasePath /
// @schemes http

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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	availabilitySvc := service.NewAvailabilityService(equipmentRepo, requestRepo)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, requestRepo, availabilitySvc, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, equipmentRepo, validate, logr)
	exportSvc := service.NewExportService(requestSvc, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

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
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	equipment := api.Group("/equipment", middleware.JWT(authSvc))
	{
		equipment.GET("", equipmentHandler.List)
		equipment.GET("/categories", equipmentHandler.Categories)
		equipment.GET("/:id", equipmentHandler.Get)

		admin := equipment.Group("", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("", equipmentHandler.Create)
			admin.PUT("/:id", equipmentHandler.Update)
			admin.DELETE("/:id", equipmentHandler.Delete)
		}
	}

	requests := api.Group("/requests", middleware.JWT(authSvc))
	{
		requests.GET("", requestHandler.List)
		requests.POST("", requestHandler.Create)
		requests.GET("/:id", requestHandler.Get)

		managers := requests.Group("", middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
		{
			managers.GET("/export", requestHandler.Export)
			managers.PUT("/:id/approve", requestHandler.Approve)
			managers.PUT("/:id/reject", requestHandler.Reject)
			managers.PUT("/:id/return", requestHandler.Return)
		}
	}

	dashboard := api.Group("/dashboard", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		dashboard.GET("/stats", dashboardHandler.Stats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
