package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
	"github.com/onurcolak/whatsapp-relay/pkg/privacy"
)

const messagingProduct = "whatsapp"

var nonDigits = regexp.MustCompile(`\D`)

// Client talks to the WhatsApp Cloud API. It never retries; callers decide.
type Client struct {
	httpClient    *resty.Client
	phoneNumberID string
	sendTimeout   time.Duration
}

func NewClient(cfg environments.WhatsAppConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIVersion != "" {
		baseURL += "/" + cfg.APIVersion
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:    client,
		phoneNumberID: cfg.PhoneNumberID,
		sendTimeout:   cfg.SendTimeout,
	}
}

type outboundMessage struct {
	MessagingProduct string            `json:"messaging_product"`
	RecipientType    string            `json:"recipient_type"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *outboundText     `json:"text,omitempty"`
	Template         *outboundTemplate `json:"template,omitempty"`
}

type outboundText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type outboundTemplate struct {
	Name       string                     `json:"name"`
	Language   templateLanguage           `json:"language"`
	Components []domain.TemplateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type mediaMetadata struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	FileSize int64  `json:"file_size"`
}

// NormalizeRecipient strips everything but digits from a phone number.
func NormalizeRecipient(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// SendTemplate sends a pre-approved template. name must match the remote
// template exactly.
func (c *Client) SendTemplate(
	ctx context.Context,
	to, name, languageCode string,
	components []domain.TemplateComponent,
) (*domain.SendResponse, error) {
	payload := outboundMessage{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               NormalizeRecipient(to),
		Type:             "template",
		Template: &outboundTemplate{
			Name:       name,
			Language:   templateLanguage{Code: languageCode},
			Components: components,
		},
	}

	return c.send(ctx, payload)
}

func (c *Client) SendText(ctx context.Context, to, body string) (*domain.SendResponse, error) {
	payload := outboundMessage{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               NormalizeRecipient(to),
		Type:             "text",
		Text:             &outboundText{Body: body},
	}

	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload outboundMessage) (*domain.SendResponse, error) {
	if c.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.sendTimeout)
		defer cancel()
	}

	var sendResp domain.SendResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&sendResp).
		Post(fmt.Sprintf("/%s/messages", c.phoneNumberID))

	duration := time.Since(startTime)

	if err != nil {
		return nil, &APIError{Message: err.Error(), Cause: err}
	}

	logger.Infof("WhatsApp %s message to %s completed in %v (status: %d)",
		payload.Type, privacy.MaskPhoneNumber(payload.To), duration, resp.StatusCode())

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}

	return &sendResp, nil
}

// GetMediaURL resolves a media id to a short-lived download URL.
func (c *Client) GetMediaURL(ctx context.Context, mediaID string) (string, error) {
	var meta mediaMetadata

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&meta).
		Get("/" + mediaID)
	if err != nil {
		return "", &APIError{Message: err.Error(), Cause: err}
	}

	if resp.IsError() {
		return "", newAPIError(resp.StatusCode(), resp.Body())
	}

	if meta.URL == "" {
		return "", fmt.Errorf("media %s: metadata has no url", mediaID)
	}

	return meta.URL, nil
}

// DownloadMedia fetches the full media body using the same bearer token.
func (c *Client) DownloadMedia(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		Get(url)
	if err != nil {
		return nil, "", &APIError{Message: err.Error(), Cause: err}
	}

	if resp.IsError() {
		return nil, "", newAPIError(resp.StatusCode(), resp.Body())
	}

	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// APIError carries the remote error body verbatim when one was returned, or
// the transport error message otherwise.
type APIError struct {
	StatusCode int
	Body       []byte
	Message    string
	Cause      error
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var remote struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &remote); err == nil && remote.Error.Message != "" {
		e.Message = remote.Error.Message
	} else {
		e.Message = strings.TrimSpace(string(body))
	}

	return e
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return "whatsapp request failed: " + e.Message
	}
	return fmt.Sprintf("whatsapp api error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Detail returns the remote body as JSON when possible, for embedding in API
// responses.
func (e *APIError) Detail() any {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	if len(e.Body) > 0 {
		return string(e.Body)
	}
	return e.Message
}
