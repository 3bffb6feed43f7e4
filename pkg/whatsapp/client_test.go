package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(environments.WhatsAppConfig{
		BaseURL:       serverURL,
		APIVersion:    "v19.0",
		Token:         "test-token",
		PhoneNumberID: "PHONE_ID",
		SendTimeout:   2 * time.Second,
	})
}

func TestNormalizeRecipient(t *testing.T) {
	if got := NormalizeRecipient("+91 98765-43210"); got != "919876543210" {
		t.Fatalf("expected digits only, got %q", got)
	}
}

func TestSendTemplate_PayloadAndAuth(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","contacts":[{"input":"919876543210","wa_id":"919876543210"}],"messages":[{"id":"wamid.OK"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	components := []domain.TemplateComponent{{
		Type:       "header",
		Parameters: []domain.TemplateParameter{{Type: "image", Image: &domain.MediaLink{Link: "https://cdn.example.com/a.jpg"}}},
	}}

	resp, err := client.SendTemplate(context.Background(), "+91 98765 43210", "welcome", "en_US", components)
	if err != nil {
		t.Fatalf("SendTemplate returned error: %v", err)
	}

	if resp.MessageID() != "wamid.OK" {
		t.Errorf("expected message id wamid.OK, got %q", resp.MessageID())
	}
	if gotPath != "/v19.0/PHONE_ID/messages" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotBody["to"] != "919876543210" || gotBody["type"] != "template" || gotBody["messaging_product"] != "whatsapp" {
		t.Errorf("unexpected payload: %v", gotBody)
	}

	template, ok := gotBody["template"].(map[string]any)
	if !ok {
		t.Fatalf("expected template object in payload")
	}
	if template["name"] != "welcome" {
		t.Errorf("expected template name welcome, got %v", template["name"])
	}
	if lang, _ := template["language"].(map[string]any); lang["code"] != "en_US" {
		t.Errorf("expected language en_US, got %v", template["language"])
	}
	if comps, _ := template["components"].([]any); len(comps) != 1 {
		t.Errorf("expected one component, got %v", template["components"])
	}
}

func TestSendText_RemoteErrorBodyIsKeptVerbatim(t *testing.T) {
	remoteBody := `{"error":{"message":"(#131030) Recipient phone number not in allowed list","type":"OAuthException","code":131030}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(remoteBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SendText(context.Background(), "15551234567", "hi")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if string(apiErr.Body) != remoteBody {
		t.Errorf("expected verbatim body, got %s", apiErr.Body)
	}
	if apiErr.Message != "(#131030) Recipient phone number not in allowed list" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if _, ok := apiErr.Detail().(json.RawMessage); !ok {
		t.Errorf("expected JSON detail, got %T", apiErr.Detail())
	}
}

func TestSendText_TransportErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url)

	_, err := client.SendText(context.Background(), "15551234567", "hi")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != 0 || apiErr.Message == "" {
		t.Fatalf("expected transport error message, got %#v", apiErr)
	}
	if apiErr.Detail() != apiErr.Message {
		t.Fatalf("expected detail to fall back to message")
	}
}

func TestGetMediaURLAndDownload(t *testing.T) {
	var downloadAuth string

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v19.0/MEDIA123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"MEDIA123","mime_type":"image/jpeg","url":"` + server.URL + `/files/MEDIA123"}`))
	})
	mux.HandleFunc("/files/MEDIA123", func(w http.ResponseWriter, r *http.Request) {
		downloadAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	})

	client := newTestClient(server.URL)

	url, err := client.GetMediaURL(context.Background(), "MEDIA123")
	if err != nil {
		t.Fatalf("GetMediaURL returned error: %v", err)
	}
	if url != server.URL+"/files/MEDIA123" {
		t.Fatalf("unexpected media url %q", url)
	}

	data, contentType, err := client.DownloadMedia(context.Background(), url)
	if err != nil {
		t.Fatalf("DownloadMedia returned error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected body %q", data)
	}
	if contentType != "image/jpeg" {
		t.Errorf("unexpected content type %q", contentType)
	}
	if downloadAuth != "Bearer test-token" {
		t.Errorf("expected bearer token on download, got %q", downloadAuth)
	}
}

func TestGetMediaURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Unsupported get request"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.GetMediaURL(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing media")
	}
}
