package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/handlers"
	"github.com/onurcolak/whatsapp-relay/internal/middlewares"
	"github.com/onurcolak/whatsapp-relay/pkg/validator"
)

func newTestServer(cfg *environments.Config) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()

	RegisterRoutes(
		e,
		handlers.NewHealthHandler(nil, nil, nil),
		handlers.NewWebhookHandler(nil, cfg.WhatsApp.VerifyToken),
		handlers.NewMessageHandler(nil),
		handlers.NewChatHandler(nil),
		cfg,
	)

	return e
}

func TestRoutes_AdminGroupRequiresKeyWhenConfigured(t *testing.T) {
	cfg := &environments.Config{Auth: environments.AuthConfig{AdminAPIKey: "admin-secret"}}
	e := newTestServer(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	// With the key, validation runs and rejects the empty body before any send.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middlewares.APIKeyHeader, "admin-secret")
	rec = httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRoutes_AdminGroupFailsClosedWithoutKey(t *testing.T) {
	e := newTestServer(&environments.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middlewares.APIKeyHeader, "guess")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestRoutes_AdminGroupOpenWhenExplicitlyAllowed(t *testing.T) {
	cfg := &environments.Config{Auth: environments.AuthConfig{AllowUnauthenticated: true}}
	e := newTestServer(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	// Reaches the handler, whose validation rejects the empty body.
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRoutes_ConfiguredKeyWinsOverOptOut(t *testing.T) {
	cfg := &environments.Config{Auth: environments.AuthConfig{
		AdminAPIKey:          "admin-secret",
		AllowUnauthenticated: true,
	}}
	e := newTestServer(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRoutes_WebhookIsPublic(t *testing.T) {
	cfg := &environments.Config{
		Auth:     environments.AuthConfig{AdminAPIKey: "admin-secret"},
		WhatsApp: environments.WhatsAppConfig{VerifyToken: "verify-me"},
	}
	e := newTestServer(cfg)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "42" {
		t.Fatalf("expected 200 with challenge, got %d %q", rec.Code, rec.Body.String())
	}
}
