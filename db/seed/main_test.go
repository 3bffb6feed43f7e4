package main

import (
	"io"
	"testing"
)

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := parseOptions(nil, "warn", io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.migrateOnly {
		t.Errorf("expected migrate-only to default to false")
	}
	if opts.logLevel != "warn" {
		t.Errorf("expected log level from config, got %q", opts.logLevel)
	}
}

func TestParseOptions_Flags(t *testing.T) {
	opts, err := parseOptions([]string{"-migrate-only", "-log-level", "debug"}, "info", io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !opts.migrateOnly {
		t.Errorf("expected migrate-only to be set")
	}
	if opts.logLevel != "debug" {
		t.Errorf("expected log level debug, got %q", opts.logLevel)
	}
}

func TestParseOptions_UnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-drop-everything"}, "info", io.Discard); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
