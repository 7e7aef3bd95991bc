package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/profile"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
)

type webhookProfileRepo struct {
	byExternal map[string]*entity.Profile
	deleted    []string
}

func newWebhookProfileRepo() *webhookProfileRepo {
	return &webhookProfileRepo{byExternal: map[string]*entity.Profile{}}
}

func (m *webhookProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	m.byExternal[p.ExternalID] = p
	return nil
}

func (m *webhookProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	for _, p := range m.byExternal {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *webhookProfileRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Profile, error) {
	return m.byExternal[externalID], nil
}

func (m *webhookProfileRepo) Update(ctx context.Context, p *entity.Profile) error {
	m.byExternal[p.ExternalID] = p
	return nil
}

func (m *webhookProfileRepo) Delete(ctx context.Context, id string) error {
	for externalID, p := range m.byExternal {
		if p.ID == id {
			delete(m.byExternal, externalID)
			m.deleted = append(m.deleted, id)
		}
	}
	return nil
}

func (m *webhookProfileRepo) SetOnboardingCompleted(ctx context.Context, id string) error {
	return nil
}

func signPayload(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookTestServer(secret string, repo *webhookProfileRepo) (*gin.Engine, *WebhookHandler) {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(profile.NewResolver(repo), &config.IdentityConfig{
		WebhookSecret:    secret,
		WebhookTolerance: 5 * time.Minute,
	})
	engine := gin.New()
	engine.POST("/api/webhooks/identity", h.HandleIdentity)
	return engine, h
}

func postWebhook(engine *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHandleIdentityValidSignatureCreatesProfile(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("whsec_test", repo)

	body := []byte(`{"type":"user.created","data":{"external_id":"user_abc","email":"a@b.c","name":"Alice"}}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	w := postWebhook(engine, body, map[string]string{
		headerWebhookSignature: signPayload("whsec_test", timestamp, body),
		headerWebhookTimestamp: timestamp,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	p := repo.byExternal["user_abc"]
	if p == nil {
		t.Fatal("profile not created")
	}
	if p.Email == nil || *p.Email != "a@b.c" {
		t.Errorf("email = %v", p.Email)
	}
}

func TestHandleIdentityBadSignatureRejected(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("whsec_test", repo)

	body := []byte(`{"type":"user.created","data":{"external_id":"user_abc"}}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	w := postWebhook(engine, body, map[string]string{
		headerWebhookSignature: signPayload("wrong_secret", timestamp, body),
		headerWebhookTimestamp: timestamp,
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(repo.byExternal) != 0 {
		t.Error("profile must not be created on bad signature")
	}
}

func TestHandleIdentityStaleTimestampRejected(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("whsec_test", repo)

	body := []byte(`{"type":"user.created","data":{"external_id":"user_abc"}}`)
	timestamp := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	w := postWebhook(engine, body, map[string]string{
		headerWebhookSignature: signPayload("whsec_test", timestamp, body),
		headerWebhookTimestamp: timestamp,
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandleIdentityEmptySecretSkipsVerification(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("", repo)

	body := []byte(`{"type":"user.created","data":{"external_id":"user_abc"}}`)
	w := postWebhook(engine, body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if repo.byExternal["user_abc"] == nil {
		t.Error("profile not created")
	}
}

func TestHandleIdentityUserDeletedRemovesProfile(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("", repo)

	if _, err := profile.NewResolver(repo).Ensure(context.Background(), "user_abc"); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	body := []byte(`{"type":"user.deleted","data":{"external_id":"user_abc"}}`)
	w := postWebhook(engine, body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(repo.deleted) != 1 {
		t.Errorf("deleted = %v, want one profile", repo.deleted)
	}
}

func TestHandleIdentityUnknownEventAcknowledged(t *testing.T) {
	repo := newWebhookProfileRepo()
	engine, _ := newWebhookTestServer("", repo)

	body := []byte(`{"type":"session.created","data":{"external_id":"user_abc"}}`)
	w := postWebhook(engine, body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, unknown events should be acknowledged", w.Code)
	}
	if len(repo.byExternal) != 0 {
		t.Error("unknown events must not create profiles")
	}
}
