package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/config"
	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/utils"
)

// Whop OAuth endpoints and the identity resource used after exchange.
const (
	whopAuthURL  = "https://whop.com/oauth"
	whopTokenURL = "https://api.whop.com/v5/oauth/token"
	whopMeURL    = "https://api.whop.com/v5/me"
)

// AuthController handles the Whop OAuth login flow and session lifecycle.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// whopUser is the identity payload returned by the Whop "me" endpoint.
type whopUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"profile_pic_url"`
}

// Login redirects the browser to Whop's authorization page with a single-use
// CSRF state token.
func (a *AuthController) Login(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	ctx.Redirect(http.StatusFound, cfg.AuthCodeURL(state))
}

// Callback exchanges the authorization code for a Whop identity, upserts the
// local user, and redirects to the frontend with a session token attached.
func (a *AuthController) Callback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid or expired state")
		return
	}

	oc, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, err.Error())
		return
	}

	token, err := oc.Exchange(context.Background(), code)
	if err != nil {
		utils.Sugar.Warnf("whop code exchange failed: %v", err)
		utils.Error(ctx, http.StatusBadRequest, 40012, "failed to exchange code")
		return
	}

	info, err := fetchWhopUser(token)
	if err != nil {
		utils.Sugar.Errorf("whop identity fetch failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to fetch whop identity")
		return
	}

	user, err := a.findOrCreateUser(info)
	if err != nil {
		utils.Sugar.Errorf("persist user failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.WhopUserID, user.Username, utils.SessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to generate token")
		return
	}

	front := config.Get().FrontendURL
	sep := "?"
	if strings.Contains(front, "?") {
		sep = "&"
	}
	ctx.Redirect(http.StatusFound, front+sep+"token="+url.QueryEscape(jwtToken))
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40013, "missing bearer token")
		return
	}
	tokenString := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(tokenString)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(tokenString, claims.ExpiresAt.Time)
	}

	utils.Success(ctx, gin.H{"message": "logged out"})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.WhopClientID == "" || cfg.WhopClientSecret == "" {
		return nil, errors.New("whop oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.WhopClientID,
		ClientSecret: cfg.WhopClientSecret,
		RedirectURL:  fmt.Sprintf("%s/auth/callback", cfg.OAuthRedirectBase),
		Endpoint: oauth2.Endpoint{
			AuthURL:  whopAuthURL,
			TokenURL: whopTokenURL,
		},
	}, nil
}

func fetchWhopUser(token *oauth2.Token) (*whopUser, error) {
	req, err := http.NewRequest(http.MethodGet, whopMeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whop me endpoint returned %d", resp.StatusCode)
	}

	var info whopUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, errors.New("whop identity missing id")
	}
	return &info, nil
}

// findOrCreateUser upserts the local user row keyed by the Whop user id. A
// brand-new account gets the First Steps achievement exactly once, here and
// nowhere else.
func (a *AuthController) findOrCreateUser(info *whopUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("whop_user_id = ?", info.ID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"username":   fallback(info.Username, user.Username),
			"email":      strings.TrimSpace(info.Email),
			"avatar_url": info.AvatarURL,
		}
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		WhopUserID: info.ID,
		Username:   fallback(info.Username, "member_"+info.ID),
		Email:      strings.TrimSpace(info.Email),
		AvatarURL:  info.AvatarURL,
		Level:      1,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}

	if _, err := progression.AwardAchievement(a.db, &user, models.AchFirstSteps); err != nil {
		utils.Sugar.Warnf("first steps unlock failed for user %d: %v", user.ID, err)
	}

	return &user, nil
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
