package daemon_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lecturebot/internal/chat"
	"lecturebot/internal/config"
	"lecturebot/internal/daemon"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/publish"
	"lecturebot/internal/state"
)

type blockingTransport struct {
	started chan struct{}
	err     error
}

func (b *blockingTransport) Run(ctx context.Context, _ chat.Handler) error {
	close(b.started)
	<-ctx.Done()
	if b.err != nil {
		return b.err
	}
	return ctx.Err()
}

type nopHandler struct{}

func (nopHandler) HandleMessage(context.Context, chat.Message)   {}
func (nopHandler) HandleCallback(context.Context, chat.Callback) {}

type remote struct{ fail bool }

func (r remote) EnsureFolder(context.Context, string) error {
	if r.fail {
		return errors.New("connection refused")
	}
	return nil
}

func (r remote) EnsureShare(_ context.Context, path string) (string, error) {
	return "https://cloud.example/s/" + filepath.Base(path), nil
}

type messenger struct{ sent []chat.Outgoing }

func (m *messenger) Send(_ context.Context, out chat.Outgoing) (int, error) {
	m.sent = append(m.sent, out)
	return len(m.sent), nil
}
func (m *messenger) Edit(context.Context, chat.Outgoing) error            { return nil }
func (m *messenger) Delete(context.Context, int64, int) error             { return nil }
func (m *messenger) AnswerCallback(context.Context, string, string) error { return nil }

type fixture struct {
	cfg       *config.Config
	store     *state.Store
	lib       *library.Library
	messenger *messenger
}

func newFixture(t *testing.T, rem remote) fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Library.Disciplines = []string{"Физика", "Химия"}
	cfg.Telegram.TargetGroupChatID = -100

	store, err := state.OpenPath(cfg.StatePath())
	if err != nil {
		t.Fatalf("state.OpenPath: %v", err)
	}
	m := &messenger{}
	cache := library.NewShareLinkCache(store, rem, publish.Layout{Root: "Лекции", Archive: "Конспекты"}, logging.NewNop())
	lib := library.New(library.Options{
		Title:        "Библиотека",
		Disciplines:  cfg.Library.Disciplines,
		TargetChatID: cfg.Telegram.TargetGroupChatID,
	}, cache, m, store, logging.NewNop())
	return fixture{cfg: &cfg, store: store, lib: lib, messenger: m}
}

func (f fixture) daemon(t *testing.T, transport daemon.Transport) *daemon.Daemon {
	t.Helper()
	d, err := daemon.New(f.cfg, f.store, f.lib, transport, nopHandler{}, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonRunLifecycle(t *testing.T) {
	f := newFixture(t, remote{})
	transport := &blockingTransport{started: make(chan struct{})}
	d := f.daemon(t, transport)
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case <-transport.started:
	case <-time.After(2 * time.Second):
		t.Fatal("transport did not start")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.Linked != 2 || status.Disciplines != 2 {
		t.Fatalf("expected both disciplines linked, got %+v", status)
	}
	if len(f.messenger.sent) != 1 || f.messenger.sent[0].ChatID != -100 {
		t.Fatalf("expected one library post to the target group, got %+v", f.messenger.sent)
	}

	// A second run on the same daemon must fail.
	if err := d.Run(ctx); err == nil {
		t.Fatal("expected second run to fail")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}

	links, err := f.store.ShareLinks(context.Background())
	if err != nil {
		t.Fatalf("ShareLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected persisted links, got %v", links)
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	f := newFixture(t, remote{})
	first := &blockingTransport{started: make(chan struct{})}
	d1 := f.daemon(t, first)
	d2 := f.daemon(t, &blockingTransport{started: make(chan struct{})})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d1.Run(ctx) }()
	<-first.started

	err := d2.Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock error, got %v", err)
	}
	cancel()
	<-done
}

func TestDaemonStartsWhenStorageIsDown(t *testing.T) {
	f := newFixture(t, remote{fail: true})
	transport := &blockingTransport{started: make(chan struct{})}
	d := f.daemon(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	<-transport.started
	if d.Status().Linked != 0 {
		t.Fatal("expected no links while storage is down")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestDaemonReportsTransportFailure(t *testing.T) {
	f := newFixture(t, remote{})
	transport := &blockingTransport{started: make(chan struct{}), err: errors.New("unauthorized")}
	d := f.daemon(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	<-transport.started
	cancel()
	if err := <-done; err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	f := newFixture(t, remote{})
	d := f.daemon(t, &blockingTransport{started: make(chan struct{})})
	sent, msg, err := d.TestNotification(context.Background())
	if err != nil || sent || msg != "ntfy topic not configured" {
		t.Fatalf("unexpected result: %v %q %v", sent, msg, err)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
