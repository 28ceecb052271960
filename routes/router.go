package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/config"
	"github.com/whoplift/whoplift/controllers"
	"github.com/whoplift/whoplift/middleware"
	"github.com/whoplift/whoplift/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	health := func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	}
	r.GET("/", health)
	r.GET("/health", health)

	authController := controllers.NewAuthController(db)
	profileController := controllers.NewProfileController(db)
	taskController := controllers.NewTaskController(db)
	achievementController := controllers.NewAchievementController(db)
	rewardController := controllers.NewRewardController(db)
	activityController := controllers.NewActivityController(db)
	webhookController := controllers.NewWebhookController(db, cfg.WhopWebhookSecret)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.GET("/login", authController.Login)
	authGroup.GET("/callback", authController.Callback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	api.GET("/user/profile", profileController.Profile)
	api.GET("/tasks/daily", taskController.Daily)
	api.POST("/tasks/complete", taskController.Complete)
	api.GET("/achievements", achievementController.List)
	api.GET("/leaderboard", profileController.Leaderboard)
	api.GET("/rewards", rewardController.List)
	api.POST("/rewards/redeem", rewardController.Redeem)
	api.GET("/activity", activityController.Feed)

	// Webhooks authenticate with an HMAC signature, not a bearer token.
	r.POST("/webhooks/whop", webhookController.Handle)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
