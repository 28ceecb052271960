package main

import (
	"log"

	"github.com/whoplift/whoplift/config"
	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/routes"
	"github.com/whoplift/whoplift/utils"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.DailyTask{},
		&models.UserTask{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Reward{},
		&models.UserReward{},
		&models.ActivityLog{},
	)

	if err := models.SeedCatalog(db); err != nil {
		utils.Sugar.Fatalf("catalog seeding failed: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
