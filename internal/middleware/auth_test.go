package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc123":  "abc123",
		"bearer abc123":  "abc123",
		"Bearer  spaced": "spaced",
		"Basic abc123":   "",
		"abc123":         "",
		"":               "",
	}
	for header, want := range cases {
		if got := ExtractBearerToken(header); got != want {
			t.Fatalf("ExtractBearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestRequestTokenPrefersHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/chat/ws?token=fromquery", nil)
	r.Header.Set("Authorization", "Bearer fromheader")
	if got := RequestToken(r); got != "fromheader" {
		t.Fatalf("expected header token, got %q", got)
	}
}

func TestRequestTokenQueryFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/chat/ws?token=fromquery", nil)
	if got := RequestToken(r); got != "fromquery" {
		t.Fatalf("expected query token, got %q", got)
	}
}
