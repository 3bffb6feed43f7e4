package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/response"
)

const (
	SignatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// WebhookSignature verifies the HMAC-SHA256 signature Meta attaches to
// webhook deliveries. With an empty appSecret every request passes.
func WebhookSignature(appSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if appSecret == "" {
			return next
		}

		return func(c echo.Context) error {
			req := c.Request()

			signature := req.Header.Get(SignatureHeader)
			if signature == "" {
				logger.Warnf("Webhook received without %s header", SignatureHeader)
				return response.Forbidden(c, "Missing signature")
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return response.BadRequest(c, err)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			if !ValidSignature(appSecret, body, signature) {
				logger.Warnf("Webhook signature validation failed")
				return response.Forbidden(c, "Invalid signature")
			}

			return next(c)
		}
	}
}

// ValidSignature reports whether header is "sha256=<hex>" of the HMAC of body.
func ValidSignature(appSecret string, body []byte, header string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(strings.TrimPrefix(header, signaturePrefix)))
}
