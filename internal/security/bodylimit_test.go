package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postBody(t *testing.T, limit BodyLimit, body string, declared int64) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var seen string
	handler := limit.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		seen = string(data)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/payload", strings.NewReader(body))
	if declared != 0 {
		req.ContentLength = declared
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestBodyLimitPassesSmallBody(t *testing.T) {
	rec, seen := postBody(t, BodyLimit{Max: 10}, "hello", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != "hello" {
		t.Fatalf("body did not pass through, got %q", seen)
	}
}

func TestBodyLimitRejectsOversized(t *testing.T) {
	rec, _ := postBody(t, BodyLimit{Max: 5}, "excessive", 0)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestBodyLimitRejectsDeclaredLength(t *testing.T) {
	// a lying Content-Length is refused before the body is read
	rec, _ := postBody(t, BodyLimit{Max: 5}, "tiny", 100)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for declared oversized body, got %d", rec.Code)
	}
}
