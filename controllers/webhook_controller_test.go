package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/whoplift/whoplift/models"
	"github.com/whoplift/whoplift/testutil"
)

const testWebhookSecret = "test-webhook-secret"

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookContext(t *testing.T, body []byte, signature string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/whop", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if signature != "" {
		c.Request.Header.Set(SignatureHeader, signature)
	}
	return c, w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := testutil.NewTestDB(t)
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{"type":"message.created","data":{"user_id":"whop_1"}}`)

	c, w := newWebhookContext(t, body, signBody("wrong-secret", body))
	wc.Handle(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	c2, w2 := newWebhookContext(t, body, "")
	wc.Handle(c2)
	require.Equal(t, http.StatusUnauthorized, w2.Code)
}

func TestWebhookMessageCreatedAwardsXP(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{"type":"message.created","data":{"user_id":"whop_1","content":"hello"}}`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 10, got.XP)
	require.Equal(t, 10, got.TotalPoints)

	var entry models.ActivityLog
	require.NoError(t, db.Where("user_id = ? AND activity_type = ?", user.ID, models.ActivityMessage).First(&entry).Error)
	require.Equal(t, "hello", entry.Description)
	require.Equal(t, 10, entry.XPEarned)
}

func TestWebhookPostAndReactionXP(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	wc := NewWebhookController(db, testWebhookSecret)

	post := []byte(`{"type":"post.created","data":{"user_id":"whop_1","content":"a post"}}`)
	c1, w1 := newWebhookContext(t, post, signBody(testWebhookSecret, post))
	wc.Handle(c1)
	require.Equal(t, http.StatusOK, w1.Code)

	reaction := []byte(`{"type":"reaction.added","data":{"user_id":"whop_1"}}`)
	c2, w2 := newWebhookContext(t, reaction, signBody(testWebhookSecret, reaction))
	wc.Handle(c2)
	require.Equal(t, http.StatusOK, w2.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 55, got.TotalPoints)
}

func TestWebhookFiftiethMessageUnlocksChatterbox(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	wc := NewWebhookController(db, testWebhookSecret)

	for i := 0; i < 50; i++ {
		body := []byte(fmt.Sprintf(`{"type":"message.created","data":{"user_id":"whop_1","content":"m%d"}}`, i))
		c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
		wc.Handle(c)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var ach models.Achievement
	require.NoError(t, db.Where("code = ?", models.AchChatterbox).First(&ach).Error)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, ach.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// A 51st message must not unlock it again.
	body := []byte(`{"type":"message.created","data":{"user_id":"whop_1","content":"m50"}}`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, ach.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWebhookUnknownEventAcked(t *testing.T) {
	db := testutil.NewTestDB(t)
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{"type":"something.else","data":{"user_id":"whop_1"}}`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnknownUserAcked(t *testing.T) {
	db := testutil.NewTestDB(t)
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{"type":"message.created","data":{"user_id":"whop_nobody","content":"hi"}}`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)

	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWebhookMemberJoinedNoop(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "whop_1", "alice")
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{"type":"member.joined","data":{"user_id":"whop_1"}}`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Zero(t, got.TotalPoints)
}

func TestWebhookInvalidJSONRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	wc := NewWebhookController(db, testWebhookSecret)

	body := []byte(`{not json`)
	c, w := newWebhookContext(t, body, signBody(testWebhookSecret, body))
	wc.Handle(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
