package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(serverURL string, opts ...Option) *Client {
	base := []Option{
		WithThrottle(NewThrottle(0)),
		WithSleeper(func(time.Duration) {}),
	}
	return NewClient(Config{
		APIKey:    "test",
		BaseURL:   serverURL,
		ChatModel: "chat-model",
		STTModel:  "stt-model",
		Title:     "Test Bot",
	}, append(base, opts...)...)
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.mp3")
	if err := os.WriteFile(path, []byte("ID3fake-audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func completionPayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func TestStructureSendsChatRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Test Bot" {
			t.Errorf("unexpected title header %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "chat-model" || req.MaxTokens != 4000 || req.Temperature != 0.3 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "сырой текст" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(completionPayload("  # Конспект\n\nтекст  "))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Structure(context.Background(), "сырой текст")
	if err != nil {
		t.Fatalf("Structure returned error: %v", err)
	}
	if got != "# Конспект\n\nтекст" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestStructureAcceptsDeltaContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"delta": map[string]any{"content": "delta body"}}},
		})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Structure(context.Background(), "x")
	if err != nil {
		t.Fatalf("Structure returned error: %v", err)
	}
	if got != "delta body" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "stt-model" || r.FormValue("language") != "ru" || r.FormValue("response_format") != "json" {
			t.Errorf("unexpected form values: %v", r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "lecture.mp3" || header.Header.Get("Content-Type") != "audio/mpeg" {
				t.Errorf("unexpected file header: %s %s", header.Filename, header.Header.Get("Content-Type"))
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "привет"})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got != "привет" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestTranscribeAcceptsResultField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "из result"})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got != "из result" {
		t.Fatalf("unexpected transcript %q", got)
	}
}

func TestTranscribeFailsTwiceThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("upstream busy"))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "третья попытка"})
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(server.URL,
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(time.Second, 10*time.Second),
	)
	got, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if got != "третья попытка" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("expected exponential backoff [1s 2s], got %v", slept)
	}
}

func TestTranscribeGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Transcribe(context.Background(), writeAudio(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClientDoesNotRetryOnUnauthorized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Structure(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestClientRetriesOnHTTP429WithRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "4")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(completionPayload("ok"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(server.URL, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	if _, err := client.Structure(context.Background(), "x"); err != nil {
		t.Fatalf("Structure returned error: %v", err)
	}
	if len(slept) != 1 || slept[0] != 4*time.Second {
		t.Fatalf("expected single sleep of 4s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if calls.Add(1) >= 2 {
			content = "готово"
		}
		_ = json.NewEncoder(w).Encode(completionPayload(content))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).Structure(context.Background(), "x")
	if err != nil {
		t.Fatalf("Structure returned error: %v", err)
	}
	if got != "готово" || calls.Load() != 2 {
		t.Fatalf("unexpected result %q after %d calls", got, calls.Load())
	}
}

func TestCompleteRequiresInputs(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if _, err := client.Complete(context.Background(), "", "x"); err == nil {
		t.Fatal("expected error for missing system prompt")
	}
	if _, err := client.Complete(context.Background(), "sys", "  "); err == nil {
		t.Fatal("expected error for missing user text")
	}
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing audio")
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	client := newTestClient("http://example.invalid", WithRetryBackoff(time.Second, 3*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, expected)
		}
	}
}
