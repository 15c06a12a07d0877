package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docrender/internal/config"
	"github.com/dgallion1/docrender/internal/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:          "secret",
		DefaultPageSize: 20000,
		WorkerCount:     1,
		MaxQueueSize:    10,
		MaxUploadBytes:  1 << 20,
		JobTTL:          time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, log)
	return NewServer(orch, log, cfg)
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealthIsPublic(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRenderRequiresAuth(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without bearer token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestRenderReturnsPages(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartUpload(t, nil, "doc.md", "# Title\n\nhello world\n")

	req := httptest.NewRequest(http.MethodPost, "/api/render", body)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Filename string `json:"filename"`
		Pages    []struct {
			Plain string `json:"plain"`
			Rich  string `json:"rich"`
		} `json:"pages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(resp.Pages))
	}
	if !strings.Contains(resp.Pages[0].Plain, "# Title") {
		t.Errorf("plain page missing heading: %q", resp.Pages[0].Plain)
	}
	if !strings.Contains(resp.Pages[0].Rich, "<h1>Title</h1>") {
		t.Errorf("rich page missing heading: %q", resp.Pages[0].Rich)
	}
}

func TestRenderRejectsUnsupportedType(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartUpload(t, nil, "doc.xyz", "data")

	req := httptest.NewRequest(http.MethodPost, "/api/render", body)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRenderRejectsBadPageSize(t *testing.T) {
	s := testServer(t)
	body, contentType := multipartUpload(t, map[string]string{"page_size": "-5"}, "doc.md", "hello\n")

	req := httptest.NewRequest(http.MethodPost, "/api/render", body)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeliverUnavailableWithoutMatrix(t *testing.T) {
	s := testServer(t) // no homeserver configured
	body, contentType := multipartUpload(t, map[string]string{"room_id": "!r:x"}, "doc.md", "hello\n")

	req := httptest.NewRequest(http.MethodPost, "/api/deliver", body)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestDeliverStatusNotFound(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/deliver/nope/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
