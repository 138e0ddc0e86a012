package services_test

import (
	"errors"
	"strings"
	"testing"

	"lecturebot/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrPublish, "publish", "upload", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"publish", "upload", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestUserMessageHidesRawErrors(t *testing.T) {
	secret := errors.New("http 500: internal stack trace token=abc")
	for _, marker := range []error{
		services.ErrDownload,
		services.ErrTranscription,
		services.ErrStructuring,
		services.ErrPublish,
		services.ErrRender,
		services.ErrTransient,
	} {
		msg := services.UserMessage(services.Wrap(marker, "x", "y", "z", secret))
		if msg == "" {
			t.Fatalf("expected message for %v", marker)
		}
		if strings.Contains(msg, "token") || strings.Contains(msg, "500") {
			t.Fatalf("user message leaks error detail: %q", msg)
		}
	}
	if services.UserMessage(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}
