package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newBodyRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestRequestBodyParser_JSON(t *testing.T) {
	req := newBodyRequest(`{"username": " alice ", "amount": 45.5, "flag": true}`, "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON should be true")
	}
	if got := p.Get("username"); got != "alice" {
		t.Errorf("Get(username) = %q, want alice", got)
	}
	if got := p.Get("amount"); got != "45.5" {
		t.Errorf("Get(amount) = %q, want 45.5", got)
	}
	if got := p.Get("flag"); got != "true" {
		t.Errorf("Get(flag) = %q, want true", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	req := newBodyRequest("username=alice&category=Food+%26+Dining", "application/x-www-form-urlencoded")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON should be false for form data")
	}
	if got := p.Get("category"); got != "Food & Dining" {
		t.Errorf("Get(category) = %q, want Food & Dining", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := newBodyRequest(`{"broken":`, "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Error("Parse should fail on invalid JSON")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := newBodyRequest("", "application/json")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Get("anything"); got != "" {
		t.Errorf("Get on empty body = %q, want empty", got)
	}
}

func TestParseLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"limit=5", 5},
		{"limit=0", 0},
		{"limit=-3", 0},
		{"limit=abc", 0},
		{"limit= 7 ", 7},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := ParseLimitParam(q); got != tt.want {
			t.Errorf("ParseLimitParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("sanitizeInput = %q, want helloworld", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Errorf("sanitizeInput should keep newlines, got %q", got)
	}
}
