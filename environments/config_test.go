package environments

import (
	"testing"
	"time"
)

func TestGetEnvAsSlice_SplitsAndTrims(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	got := GetEnvAsSlice("TEST_ORIGINS", nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %d (%v)", len(got), got)
	}
	if got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestGetEnvAsSlice_EmptyFallsBackToDefault(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " , ")

	got := GetEnvAsSlice("TEST_ORIGINS", []string{"*"})
	if len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected default [*], got %v", got)
	}
}

func TestLoad_WhatsAppDefaults(t *testing.T) {
	t.Setenv("WHATSAPP_SEND_TIMEOUT", "3s")
	t.Setenv("WHATSAPP_TEMPLATE_APPROVED", "kyc_ok")

	cfg := Load()

	if cfg.WhatsApp.SendTimeout != 3*time.Second {
		t.Errorf("expected send timeout 3s, got %v", cfg.WhatsApp.SendTimeout)
	}
	if cfg.WhatsApp.StatusTemplates["approved"] != "kyc_ok" {
		t.Errorf("expected approved template kyc_ok, got %q", cfg.WhatsApp.StatusTemplates["approved"])
	}
	if cfg.WhatsApp.StatusTemplates["rejected"] != "verification_rejected" {
		t.Errorf("unexpected rejected template %q", cfg.WhatsApp.StatusTemplates["rejected"])
	}
	if cfg.Mirror.Capacity != 100 {
		t.Errorf("expected mirror capacity 100, got %d", cfg.Mirror.Capacity)
	}
}

func TestLoad_AdminAuthFailsClosedByDefault(t *testing.T) {
	cfg := Load()
	if cfg.Auth.AllowUnauthenticated {
		t.Fatalf("expected unauthenticated admin access to be off by default")
	}

	t.Setenv("ALLOW_UNAUTHENTICATED_ADMIN", "true")
	if !Load().Auth.AllowUnauthenticated {
		t.Fatalf("expected ALLOW_UNAUTHENTICATED_ADMIN=true to opt out")
	}
}

func TestGetEnvAsDuration_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "ten")

	if got := GetEnvAsDuration("TEST_TIMEOUT", 7*time.Second); got != 7*time.Second {
		t.Fatalf("expected default 7s for unparsable value, got %v", got)
	}
}

func TestGetEnvAsBool_InvalidUsesDefault(t *testing.T) {
	t.Setenv("TEST_FLAG", "definitely")

	if !GetEnvAsBool("TEST_FLAG", true) {
		t.Fatalf("expected default true for unparsable value")
	}
}
