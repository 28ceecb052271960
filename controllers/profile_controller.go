package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/utils"
)

// ProfileController serves the authenticated user's progression summary and
// the community leaderboard.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a ProfileController.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

// Profile returns level, XP, points, streak, rank, and achievement count.
func (p *ProfileController) Profile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load user")
		return
	}

	// Rank is 1-based: everyone with strictly more points sits above.
	var above int64
	if err := p.db.Model(&models.User{}).Where("total_points > ?", user.TotalPoints).Count(&above).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to compute rank")
		return
	}

	var achievements int64
	if err := p.db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&achievements).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to count achievements")
		return
	}

	utils.Success(ctx, gin.H{
		"username":         user.Username,
		"avatar_url":       user.AvatarURL,
		"level":            user.Level,
		"xp":               user.XP,
		"xp_to_next_level": progression.XPForLevel(user.Level) - user.XP,
		"total_points":     user.TotalPoints,
		"streak":           user.Streak,
		"rank":             above + 1,
		"achievements":     achievements,
		"joined_at":        user.CreatedAt,
	})
}

// leaderboardRow is the cached shape of one ranking entry.
type leaderboardRow struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
	Level       int    `json:"level"`
	TotalPoints int    `json:"total_points"`
	Streak      int    `json:"streak"`
	Badge       string `json:"badge,omitempty"`
	IsMe        bool   `json:"is_me"`
}

var rankBadges = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// Leaderboard returns users ranked by total points descending. The base
// ranking is cached briefly; the caller's own-row flag is applied afterwards
// so the cache stays user-agnostic.
func (p *ProfileController) Leaderboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	limit := parsePositiveQuery(ctx, "limit", 10, 100)
	offset := parsePositiveQuery(ctx, "offset", 0, 1<<30)

	cacheKey := "cache:leaderboard:" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
	var rows []leaderboardRow
	if !utils.CacheGetJSON(cacheKey, &rows) {
		var users []models.User
		if err := p.db.Order("total_points DESC, id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load leaderboard")
			return
		}
		rows = make([]leaderboardRow, 0, len(users))
		for i, u := range users {
			rank := offset + i + 1
			rows = append(rows, leaderboardRow{
				Rank:        rank,
				UserID:      u.ID,
				Username:    u.Username,
				AvatarURL:   u.AvatarURL,
				Level:       u.Level,
				TotalPoints: u.TotalPoints,
				Streak:      u.Streak,
				Badge:       rankBadges[rank],
			})
		}
		utils.CacheSetJSON(cacheKey, rows, 30*time.Second)
	}

	for i := range rows {
		rows[i].IsMe = rows[i].UserID == userID
	}

	utils.Success(ctx, gin.H{
		"entries": rows,
		"limit":   limit,
		"offset":  offset,
	})
}

// parsePositiveQuery reads a non-negative integer query parameter, clamped
// to a ceiling, falling back to def on absence or junk.
func parsePositiveQuery(ctx *gin.Context, name string, def, ceil int) int {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if n > ceil {
		return ceil
	}
	return n
}
