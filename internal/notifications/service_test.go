package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lecturebot/internal/config"
	"lecturebot/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	click    string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var got []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			click:    r.Header.Get("Click"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func configFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configFor(""))
	if err := svc.NotifyPublished(context.Background(), notifications.Publication{Topic: "x"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop for nil config, got %v", err)
	}
}

func TestNotifyPublishedFormatsPayload(t *testing.T) {
	server, got := newCaptureServer(t, http.StatusOK)
	svc := notifications.NewService(configFor(server.URL))

	err := svc.NotifyPublished(context.Background(), notifications.Publication{
		Discipline: "Физика",
		LessonType: "Лекция",
		Topic:      "Термодинамика",
		Uploaded:   3,
		Total:      3,
		FolderURL:  "https://cloud.example/s/abc",
	})
	if err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.title != "lecturebot - Published" || req.tags != "lecturebot,publish" {
		t.Fatalf("unexpected headers %+v", req)
	}
	if req.click != "https://cloud.example/s/abc" || req.priority != "" {
		t.Fatalf("unexpected click/priority %+v", req)
	}
	if !strings.Contains(req.body, "Физика / Лекция: Термодинамика") || !strings.Contains(req.body, "Загружено 3 из 3") {
		t.Fatalf("unexpected body %q", req.body)
	}
}

func TestNotifyPublishedMarksPartialUploads(t *testing.T) {
	server, got := newCaptureServer(t, http.StatusOK)
	svc := notifications.NewService(configFor(server.URL))
	if err := svc.NotifyPublished(context.Background(), notifications.Publication{Uploaded: 1, Total: 2}); err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	req := (*got)[0]
	if req.priority != "high" || !strings.HasSuffix(req.tags, "partial") {
		t.Fatalf("expected partial marker, got %+v", req)
	}
}

func TestNotifyErrorIncludesContext(t *testing.T) {
	server, got := newCaptureServer(t, http.StatusOK)
	svc := notifications.NewService(configFor(server.URL))
	if err := svc.NotifyError(context.Background(), errors.New("webdav: 507"), "publish"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	req := (*got)[0]
	if req.body != "❌ Error with publish: webdav: 507" || req.priority != "high" {
		t.Fatalf("unexpected error payload %+v", req)
	}
}

func TestTogglesSuppressEvents(t *testing.T) {
	server, got := newCaptureServer(t, http.StatusOK)
	cfg := configFor(server.URL)
	cfg.Notifications.Publications = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)
	_ = svc.NotifyPublished(context.Background(), notifications.Publication{})
	_ = svc.NotifyError(context.Background(), errors.New("x"), "")
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(*got) != 1 || (*got)[0].title != "lecturebot - Test" {
		t.Fatalf("expected only the test notification, got %+v", *got)
	}
}

func TestSendReportsHTTPFailure(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusForbidden)
	svc := notifications.NewService(configFor(server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
