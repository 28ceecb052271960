package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/progression"
	"github.com/whoplift/whoplift/utils"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Whop-Signature"

// XP awarded per webhook event kind.
const (
	messageXP  = 10
	postXP     = 50
	reactionXP = 5
)

// EventKind is the closed set of webhook events this service understands.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventMessageCreated
	EventPostCreated
	EventReactionAdded
	EventMemberJoined
)

// ParseEventKind maps the envelope's type discriminator onto the enum.
// Anything unrecognized becomes EventUnknown.
func ParseEventKind(s string) EventKind {
	switch s {
	case "message.created":
		return EventMessageCreated
	case "post.created":
		return EventPostCreated
	case "reaction.added":
		return EventReactionAdded
	case "member.joined":
		return EventMemberJoined
	default:
		return EventUnknown
	}
}

// webhookEnvelope is the inbound Whop event shape.
type webhookEnvelope struct {
	Type string       `json:"type"`
	Data webhookEvent `json:"data"`
}

type webhookEvent struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// WebhookController receives Whop platform events and feeds the progression
// engine. The secret is injected so tests can sign payloads without config.
type WebhookController struct {
	db     *gorm.DB
	secret string
}

// NewWebhookController creates a WebhookController with the shared webhook
// signing secret.
func NewWebhookController(db *gorm.DB, secret string) *WebhookController {
	return &WebhookController{db: db, secret: secret}
}

// Handle verifies the event signature, dispatches by kind, and acknowledges.
// Unknown kinds and unknown users are acknowledged without effect; only a
// failed handler reports a processing error.
func (w *WebhookController) Handle(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "unreadable body")
		return
	}

	if !w.verifySignature(body, ctx.GetHeader(SignatureHeader)) {
		utils.Error(ctx, http.StatusUnauthorized, 40170, "invalid webhook signature")
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid event envelope")
		return
	}

	if err := w.dispatch(ParseEventKind(env.Type), env); err != nil {
		utils.Sugar.Errorf("webhook %s processing failed: %v", env.Type, err)
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to process event")
		return
	}

	utils.Success(ctx, gin.H{"received": true})
}

// verifySignature compares the presented HMAC against one computed over the
// raw body, in constant time.
func (w *WebhookController) verifySignature(body []byte, presented string) bool {
	if w.secret == "" || presented == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(w.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(presented))
}

func (w *WebhookController) dispatch(kind EventKind, env webhookEnvelope) error {
	switch kind {
	case EventMessageCreated:
		return w.withUser(env, func(user *models.User) error {
			desc := utils.Sanitize(fallback(env.Data.Content, "Sent a message"))
			if _, err := progression.AwardXP(w.db, user, messageXP, models.ActivityMessage, desc); err != nil {
				return err
			}
			return progression.CheckMessageAchievements(w.db, user)
		})
	case EventPostCreated:
		return w.withUser(env, func(user *models.User) error {
			desc := utils.Sanitize(fallback(env.Data.Content, "Created a post"))
			if _, err := progression.AwardXP(w.db, user, postXP, models.ActivityPost, desc); err != nil {
				return err
			}
			return progression.CheckPostAchievements(w.db, user)
		})
	case EventReactionAdded:
		return w.withUser(env, func(user *models.User) error {
			_, err := progression.AwardXP(w.db, user, reactionXP, models.ActivityReaction, "Added a reaction")
			return err
		})
	case EventMemberJoined:
		// Membership is established at OAuth login; nothing to do here.
		return nil
	default:
		utils.Sugar.Infof("ignoring unknown webhook event type %q", env.Type)
		return nil
	}
}

// withUser resolves the local user by Whop id and runs fn. A member who has
// never logged in has no local row; the event is acknowledged and skipped.
func (w *WebhookController) withUser(env webhookEnvelope, fn func(*models.User) error) error {
	if env.Data.UserID == "" {
		return nil
	}
	var user models.User
	if err := w.db.Where("whop_user_id = ?", env.Data.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Debugf("webhook for unknown whop user %s", env.Data.UserID)
			return nil
		}
		return err
	}
	return fn(&user)
}
