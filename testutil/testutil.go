package testutil

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/utils"
)

func init() {
	// Controllers log through the global sugared logger; keep it quiet in tests.
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
}

// NewTestDB creates an in-memory SQLite database migrated with the full
// model set and the built-in catalogs seeded. The underlying connection is
// closed when the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.DailyTask{},
		&models.UserTask{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Reward{},
		&models.UserReward{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := models.SeedCatalog(db); err != nil {
		t.Fatalf("failed to seed catalogs: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateUser inserts a user with the given identity and returns it.
func CreateUser(t *testing.T, db *gorm.DB, whopID, username string) *models.User {
	t.Helper()

	user := models.User{
		WhopUserID: whopID,
		Username:   username,
		Level:      1,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}
