package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newSignedContext(body, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWebhookSignature_ValidSignaturePreservesBody(t *testing.T) {
	const secret = "app-secret"
	const body = `{"object":"whatsapp_business_account","entry":[]}`

	c, rec := newSignedContext(body, sign(secret, body))

	var seen string
	handler := WebhookSignature(secret)(func(c echo.Context) error {
		data, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		seen = string(data)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if seen != body {
		t.Fatalf("expected body to be readable downstream, got %q", seen)
	}
}

func TestWebhookSignature_RejectsMissingAndInvalid(t *testing.T) {
	const secret = "app-secret"
	const body = `{"object":"x"}`

	cases := map[string]string{
		"missing":    "",
		"wrong key":  sign("other-secret", body),
		"no prefix":  strings.TrimPrefix(sign(secret, body), "sha256="),
		"tampered":   sign(secret, body+" "),
		"not hex at": "sha256=zz",
	}

	for name, signature := range cases {
		c, rec := newSignedContext(body, signature)

		handler := WebhookSignature(secret)(func(c echo.Context) error {
			t.Fatalf("%s: next handler must not be called", name)
			return nil
		})

		if err := handler(c); err != nil {
			t.Fatalf("%s: handler returned error: %v", name, err)
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected status 403, got %d", name, rec.Code)
		}
	}
}

func TestWebhookSignature_NoSecretSkipsCheck(t *testing.T) {
	c, rec := newSignedContext(`{}`, "")

	handler := WebhookSignature("")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
