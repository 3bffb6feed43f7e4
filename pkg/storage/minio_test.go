package storage

import (
	"testing"
	"time"
)

func TestMediaKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	got := MediaKey("9876543210", "MEDIA1", "image/png", at)
	if got != "9876543210/1700000000123_MEDIA1.png" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":               ".jpg",
		"IMAGE/PNG":                ".png",
		"image/webp; charset=utf8": ".webp",
		"":                         ".jpg",
		"application/octet-stream": ".jpg",
	}

	for in, want := range cases {
		if got := ExtensionFor(in); got != want {
			t.Errorf("ExtensionFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPublicURL_EscapesSegments(t *testing.T) {
	got := PublicURL("https://cdn.example.com/images/", "98765/17_media id.jpg")
	if got != "https://cdn.example.com/images/98765/17_media%20id.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}
