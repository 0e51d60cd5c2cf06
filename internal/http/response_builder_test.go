package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Success(true).
		Message("created").
		Field("count", 3).
		Header("X-Custom", "yes").
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Custom") != "yes" {
		t.Error("custom header missing")
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != true || body["message"] != "created" || body["count"] != 3.0 {
		t.Errorf("body = %v", body)
	}
}

func TestErrorResponseHelpers(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("nope"), http.StatusBadRequest},
		{"unauthorized", UnauthorizedError("nope"), http.StatusUnauthorized},
		{"conflict", ConflictError("nope"), http.StatusConflict},
		{"unprocessable", UnprocessableEntityError("nope"), http.StatusUnprocessableEntity},
		{"internal", InternalServerError("nope"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.builder.Write(rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
		})
	}
}

func TestFormatINR(t *testing.T) {
	got := formatINR(1234.5)
	if got == "" {
		t.Fatal("formatINR returned empty string")
	}
	// Indian grouping puts the first separator after three digits.
	if want := "1,234.50"; !containsDigits(got, want) {
		t.Errorf("formatINR(1234.5) = %q, want it to contain %q", got, want)
	}
}

func containsDigits(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
