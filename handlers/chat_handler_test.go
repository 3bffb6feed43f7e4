package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
	"github.com/onurcolak/whatsapp-relay/internal/service"
)

type fakeChatService struct {
	history []domain.ChatMessage
	mirror  []domain.MirrorEntry
	tracked map[string]*domain.TrackedMessage
	err     error

	lastPhone string
}

func (f *fakeChatService) ChatHistory(ctx context.Context, phone string) ([]domain.ChatMessage, error) {
	f.lastPhone = phone
	return f.history, f.err
}

func (f *fakeChatService) RecentInbound() []domain.MirrorEntry {
	return f.mirror
}

func (f *fakeChatService) TrackedMessages(ctx context.Context) (map[string]*domain.TrackedMessage, error) {
	return f.tracked, f.err
}

func getContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetChatHistory_UnknownChatReturnsEmptyList(t *testing.T) {
	svc := &fakeChatService{}
	handler := NewChatHandler(svc)

	c, rec := getContext("/api/v1/chats/9876543210")
	c.SetParamNames("phoneNumber")
	c.SetParamValues("9876543210")

	if err := handler.GetChatHistory(c); err != nil {
		t.Fatalf("GetChatHistory returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Count int               `json:"count"`
		Data  []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Data == nil || len(resp.Data) != 0 || resp.Count != 0 {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
	if svc.lastPhone != "9876543210" {
		t.Fatalf("expected phone param to be forwarded, got %q", svc.lastPhone)
	}
}

func TestGetChatHistory_ReturnsMessagesWithDirection(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeChatService{history: []domain.ChatMessage{
		{ID: 1, From: domain.DirectionUser, Text: "hi", Timestamp: now, Type: "text"},
		{ID: 2, From: domain.DirectionAdmin, Text: "hello", Timestamp: now.Add(time.Minute), Type: "text"},
	}}
	handler := NewChatHandler(svc)

	c, rec := getContext("/api/v1/chats/9876543210")
	c.SetParamNames("phoneNumber")
	c.SetParamValues("9876543210")

	if err := handler.GetChatHistory(c); err != nil {
		t.Fatalf("GetChatHistory returned error: %v", err)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Data))
	}
	if resp.Data[0]["from"] != "user" || resp.Data[1]["from"] != "admin" {
		t.Fatalf("unexpected directions: %v / %v", resp.Data[0]["from"], resp.Data[1]["from"])
	}
}

func TestGetRecentInbound(t *testing.T) {
	svc := &fakeChatService{mirror: []domain.MirrorEntry{{Kind: "text", ShortID: "9876543210", Text: "hi"}}}
	handler := NewChatHandler(svc)

	c, rec := getContext("/api/v1/debug/messages")

	if err := handler.GetRecentInbound(c); err != nil {
		t.Fatalf("GetRecentInbound returned error: %v", err)
	}

	var resp struct {
		Count int                  `json:"count"`
		Data  []domain.MirrorEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Count != 1 || resp.Data[0].Text != "hi" {
		t.Fatalf("unexpected mirror response %s", rec.Body.String())
	}
}

func TestGetTrackedMessages_NotConfigured(t *testing.T) {
	handler := NewChatHandler(&fakeChatService{err: service.ErrTrackerNotConfigured})

	c, rec := getContext("/api/v1/messages/tracked")

	if err := handler.GetTrackedMessages(c); err != nil {
		t.Fatalf("GetTrackedMessages returned error: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
