package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lecturebot/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f).Passed {
		t.Fatal("expected failure for file path")
	}
	if CheckDirectoryAccess("test", "").Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckLLM_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" || r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", srv.URL+"/v1/", "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", srv.URL, "bad")
	if result.Passed || result.Detail != "auth failed (invalid api key)" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckLLM_MissingConfig(t *testing.T) {
	if r := CheckLLM(context.Background(), "LLM", "", "key"); r.Passed || r.Detail != "missing base url" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r := CheckLLM(context.Background(), "LLM", "https://api.example", " "); r.Passed || r.Detail != "API key missing" {
		t.Fatalf("unexpected result %+v", r)
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCheckNextcloud(t *testing.T) {
	if r := CheckNextcloud(context.Background(), pinger{}); !r.Passed {
		t.Fatalf("expected pass, got %+v", r)
	}
	r := CheckNextcloud(context.Background(), pinger{err: errors.New("401 Unauthorized")})
	if r.Passed || r.Detail != "401 Unauthorized" {
		t.Fatalf("unexpected result %+v", r)
	}
	r = CheckNextcloud(context.Background(), pinger{err: context.DeadlineExceeded})
	if r.Detail != "check timed out (service unresponsive)" {
		t.Fatalf("unexpected timeout detail %q", r.Detail)
	}
}

func TestCheckFont(t *testing.T) {
	font := filepath.Join(t.TempDir(), "DejaVuSans.ttf")
	if err := os.WriteFile(font, []byte("ttf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !CheckFont("font", font).Passed {
		t.Fatal("expected pass for existing font")
	}
	if CheckFont("font", filepath.Join(t.TempDir(), "missing.ttf")).Passed {
		t.Fatal("expected failure for missing font")
	}
	if CheckFont("font", t.TempDir()).Passed {
		t.Fatal("expected failure for directory")
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Intake.TempDir = filepath.Join(t.TempDir(), "missing")
	cfg.Nextcloud.URL = "not a url"
	cfg.LLM.BaseURL = srv.URL
	cfg.LLM.APIKey = "key"
	cfg.Render.FontPath = ""
	cfg.Render.FontBoldPath = ""
	cfg.Render.FontMonoPath = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d: %+v", len(results), results)
	}
	failed := map[string]bool{}
	for _, r := range Failed(results) {
		failed[r.Name] = true
	}
	for _, name := range []string{"Intake directory", "Nextcloud", "Regular font", "Bold font"} {
		if !failed[name] {
			t.Fatalf("expected %s to fail, got %+v", name, results)
		}
	}
	for _, name := range []string{"State directory", "Log directory", "VseGPT API"} {
		if failed[name] {
			t.Fatalf("expected %s to pass, got %+v", name, results)
		}
	}
}
