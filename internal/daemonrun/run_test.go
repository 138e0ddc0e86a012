package daemonrun

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"lecturebot/internal/config"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
	"lecturebot/internal/state"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Intake.TempDir = t.TempDir()
	cfg.Nextcloud.URL = "https://cloud.example"
	cfg.Nextcloud.Username = "bot"
	return &cfg
}

func TestBuildRejectsMissingToken(t *testing.T) {
	cfg := testConfig(t)
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	defer store.Close()

	_, err = Build(cfg, store, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuildRejectsInvalidNextcloudURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Nextcloud.URL = "not a url"
	cfg.Telegram.Token = "123:abc"
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	defer store.Close()

	_, err = Build(cfg, store, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "nextcloud") {
		t.Fatalf("expected nextcloud configuration error, got %v", err)
	}
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "lecturebot.pid")
	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid: %v", err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("unexpected pid file contents %q", data)
	}
	if err := writePIDFile(""); err != nil {
		t.Fatalf("empty path should be ignored: %v", err)
	}
}

func TestNewLoggerHonoursOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Format = "json"
	logger, err := newLogger(cfg, Options{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.Debug("probe")
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "lecturebot.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}
