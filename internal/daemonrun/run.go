package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"lecturebot/internal/config"
	"lecturebot/internal/daemon"
	"lecturebot/internal/deps"
	"lecturebot/internal/fileutil"
	"lecturebot/internal/intake"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/media/audio"
	"lecturebot/internal/notes"
	"lecturebot/internal/notifications"
	"lecturebot/internal/preflight"
	"lecturebot/internal/publish"
	"lecturebot/internal/render"
	"lecturebot/internal/services/llm"
	"lecturebot/internal/services/nextcloud"
	"lecturebot/internal/session"
	"lecturebot/internal/state"
	"lecturebot/internal/telegram"
	"lecturebot/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the bot and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	logPreflight(signalCtx, logger, cfg)
	pidPath := filepath.Join(cfg.Paths.StateDir, "lecturebot.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := state.Open(cfg)
	if err != nil {
		logger.Error("open state store", logging.Error(err))
		return err
	}

	d, err := Build(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Run(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon stopped with error", "daemon_failed",
			logging.String(logging.FieldErrorHint, "check telegram.token and network access"),
			logging.Error(err),
		)
		return err
	}
	logger.Info("lecturebot shutting down")
	return nil
}

// Build wires every service around store and returns a ready daemon.
func Build(cfg *config.Config, store *state.Store, logger *slog.Logger) (*daemon.Daemon, error) {
	cloud, err := nextcloud.NewClient(nextcloud.Config{
		URL:      cfg.Nextcloud.URL,
		Username: cfg.Nextcloud.Username,
		Password: cfg.Nextcloud.Password,
		Timeout:  time.Duration(cfg.Nextcloud.TimeoutSeconds) * time.Second,
	}, nextcloud.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	bot, err := telegram.New(cfg.Telegram, logger)
	if err != nil {
		return nil, err
	}

	layout := publish.Layout{Root: cfg.Nextcloud.RootFolder, Archive: cfg.Nextcloud.ArchiveFolder}
	cache := library.NewShareLinkCache(store, cloud, layout, logger)
	lib := library.New(library.Options{
		Title:        cfg.Library.Title,
		Disciplines:  cfg.Library.Disciplines,
		Location:     cfg.Location(),
		TargetChatID: cfg.Telegram.TargetGroupChatID,
	}, cache, bot, store, logger)

	sessions := session.NewStore(cfg.SessionIdleTimeout(), cfg.Intake.TempDir, logger)
	normalizer := audio.NewNormalizer(audio.Options{
		FFmpegBinary:  cfg.Intake.FFmpegBinary,
		FFprobeBinary: cfg.Intake.FFprobeBinary,
		Bitrate:       cfg.Intake.AudioBitrate,
	}, logger)
	pipeline := intake.New(sessions, bot, normalizer, intake.Options{
		AudioExt: cfg.Intake.AllowedAudioExt,
		Limits: intake.Limits{
			AudioBytes:    cfg.Intake.MaxAudioBytes,
			DocumentBytes: cfg.Intake.MaxDocBytes,
		},
	}, logger)

	ai := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		STTModel:       cfg.LLM.STTModel,
		Title:          cfg.LLM.Title,
		Language:       cfg.LLM.Language,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxTokens:      cfg.LLM.MaxTokens,
		Temperature:    cfg.LLM.Temperature,
		MinInterval:    cfg.LLMMinInterval(),
	}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))
	renderer := render.New(render.Fonts{
		Regular: cfg.Render.FontPath,
		Bold:    cfg.Render.FontBoldPath,
		Mono:    cfg.Render.FontMonoPath,
	}, logger)

	controller := workflow.NewController(cfg, workflow.Dependencies{
		Sessions:  sessions,
		Intake:    pipeline,
		Notes:     notes.New(ai, ai, renderer, logger),
		Publisher: publish.New(cloud, layout, logger),
		Library:   lib,
		Messenger: bot,
		Notifier:  notifications.NewService(cfg),
		History:   store,
	}, logger)

	return daemon.New(cfg, store, lib, bot, controller, logger)
}

func newLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if strings.TrimSpace(opts.LogLevel) == "" && !opts.Development {
		return logging.NewFromConfig(cfg)
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	return logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		FilePath:    filepath.Join(cfg.Paths.LogDir, "lecturebot.log"),
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		Development: opts.Development,
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	statuses := deps.CheckBinaries(deps.AudioRequirements(cfg.Intake.FFmpegBinary, cfg.Intake.FFprobeBinary))
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
		logging.Bool("nextcloud_configured", strings.TrimSpace(cfg.Nextcloud.URL) != ""),
		logging.Bool("font_present", fileutil.Exists(cfg.Render.FontPath)),
		logging.Int("disciplines", len(cfg.Library.Disciplines)),
	}
	for _, status := range statuses {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		logging.WarnWithContext(logger, "required binaries missing", "dependency_missing",
			logging.String("missing", strings.Join(missing, ", ")),
			logging.String(logging.FieldImpact, "audio is uploaded without conversion"),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	results := preflight.RunAll(ctx, cfg)
	for _, result := range preflight.Failed(results) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String(logging.FieldErrorHint, result.Detail),
		)
	}
	logger.Info("preflight complete",
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
	)
}
