package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directories used by the daemon.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Telegram contains bot credentials and chat routing.
type Telegram struct {
	Token              string  `toml:"token"`
	TargetGroupChatID  int64   `toml:"target_group_chat_id"`
	AdminUserIDs       []int64 `toml:"admin_user_ids"`
	PollTimeoutSeconds int     `toml:"poll_timeout_seconds"`
	Debug              bool    `toml:"debug"`
}

// Nextcloud contains remote storage credentials and folder names.
type Nextcloud struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	RootFolder     string `toml:"root_folder"`
	ArchiveFolder  string `toml:"archive_folder"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains speech-to-text and structuring service settings.
type LLM struct {
	APIKey             string  `toml:"api_key"`
	BaseURL            string  `toml:"base_url"`
	ChatModel          string  `toml:"chat_model"`
	STTModel           string  `toml:"stt_model"`
	Title              string  `toml:"title"`
	Language           string  `toml:"language"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	MinIntervalSeconds float64 `toml:"min_interval_seconds"`
	RetryAttempts      int     `toml:"retry_attempts"`
	MaxTokens          int     `toml:"max_tokens"`
	Temperature        float64 `toml:"temperature"`
}

// Intake contains attachment limits and local conversion tooling.
type Intake struct {
	TempDir         string   `toml:"temp_dir"`
	AllowedAudioExt []string `toml:"allowed_audio_ext"`
	MaxAudioBytes   int64    `toml:"max_audio_bytes"`
	MaxDocBytes     int64    `toml:"max_doc_bytes"`
	FFmpegBinary    string   `toml:"ffmpeg_binary"`
	FFprobeBinary   string   `toml:"ffprobe_binary"`
	AudioBitrate    string   `toml:"audio_bitrate"`
}

// Render contains PDF font settings.
type Render struct {
	FontPath     string `toml:"font_path"`
	FontBoldPath string `toml:"font_bold_path"`
	FontMonoPath string `toml:"font_mono_path"`
}

// Library contains the discipline list and group library message settings.
type Library struct {
	Title       string   `toml:"title"`
	Disciplines []string `toml:"disciplines"`
	Timezone    string   `toml:"timezone"`
}

// Session contains upload session lifecycle settings.
type Session struct {
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Publications   bool   `toml:"publications"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for the bot.
//
// Configuration sections by subsystem:
//   - Paths: state database and log directories
//   - Telegram: bot token, target group, admins
//   - Nextcloud: WebDAV/OCS credentials and root/archive folder names
//   - LLM: speech-to-text and structuring endpoints, retry and pacing
//   - Intake: temp directory, byte ceilings, audio conversion
//   - Render: TTF fonts for PDF output
//   - Library: discipline list and library message presentation
//   - Session: idle expiry of upload sessions
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and rotation
type Config struct {
	Paths         Paths         `toml:"paths"`
	Telegram      Telegram      `toml:"telegram"`
	Nextcloud     Nextcloud     `toml:"nextcloud"`
	LLM           LLM           `toml:"llm"`
	Intake        Intake        `toml:"intake"`
	Render        Render        `toml:"render"`
	Library       Library       `toml:"library"`
	Session       Session       `toml:"session"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lecturebot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is
// read first so secrets can stay out of the TOML file.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lecturebot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, c.Intake.TempDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the sqlite database path for durable bot state.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "lecturebot.db")
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "lecturebot.lock")
}

// LLMMinInterval returns the pacing interval between language-model calls.
func (c *Config) LLMMinInterval() time.Duration {
	return time.Duration(c.LLM.MinIntervalSeconds * float64(time.Second))
}

// SessionIdleTimeout returns how long an untouched upload session survives.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMinutes) * time.Minute
}

// Location resolves the library time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Library.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin reports whether the user may run maintenance commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
