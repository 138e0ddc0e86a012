package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv populates unset environment variables from ./.env when present.
// Variables already exported in the process environment win.
func loadDotEnv() error {
	path := ".env"
	if value, ok := os.LookupEnv("LECTUREBOT_ENV_FILE"); ok && strings.TrimSpace(value) != "" {
		path = strings.TrimSpace(value)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTelegram(); err != nil {
		return err
	}
	c.normalizeNextcloud()
	c.normalizeLLM()
	if err := c.normalizeIntake(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeNotifications()
	c.normalizeLogging()
	if c.Session.IdleTimeoutMinutes <= 0 {
		c.Session.IdleTimeoutMinutes = defaultSessionIdleMinutes
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() error {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	if c.Telegram.Token == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("BOT_TOKEN"); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		}
	}
	if c.Telegram.TargetGroupChatID == 0 {
		if value, ok := os.LookupEnv("TARGET_GROUP_CHAT_ID"); ok && strings.TrimSpace(value) != "" {
			id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return fmt.Errorf("TARGET_GROUP_CHAT_ID: %w", err)
			}
			c.Telegram.TargetGroupChatID = id
		}
	}
	if len(c.Telegram.AdminUserIDs) == 0 {
		if value, ok := os.LookupEnv("ADMIN_USER_IDS"); ok {
			ids, err := parseIDList(value)
			if err != nil {
				return fmt.Errorf("ADMIN_USER_IDS: %w", err)
			}
			c.Telegram.AdminUserIDs = ids
		}
	}
	if c.Telegram.PollTimeoutSeconds <= 0 {
		c.Telegram.PollTimeoutSeconds = defaultPollTimeout
	}
	return nil
}

func parseIDList(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Config) normalizeNextcloud() {
	lookup := func(current *string, env string) {
		*current = strings.TrimSpace(*current)
		if *current != "" {
			return
		}
		if value, ok := os.LookupEnv(env); ok {
			*current = strings.TrimSpace(value)
		}
	}
	lookup(&c.Nextcloud.URL, "NEXTCLOUD_URL")
	lookup(&c.Nextcloud.Username, "NEXTCLOUD_USERNAME")
	lookup(&c.Nextcloud.Password, "NEXTCLOUD_PASSWORD")
	c.Nextcloud.URL = strings.TrimRight(c.Nextcloud.URL, "/")
	c.Nextcloud.RootFolder = strings.Trim(strings.TrimSpace(c.Nextcloud.RootFolder), "/")
	if c.Nextcloud.RootFolder == "" {
		c.Nextcloud.RootFolder = defaultRootFolder
	}
	c.Nextcloud.ArchiveFolder = strings.Trim(strings.TrimSpace(c.Nextcloud.ArchiveFolder), "/")
	if c.Nextcloud.ArchiveFolder == "" {
		c.Nextcloud.ArchiveFolder = defaultArchiveFolder
	}
	if c.Nextcloud.TimeoutSeconds <= 0 {
		c.Nextcloud.TimeoutSeconds = defaultNextcloudTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("VSEGPT_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("VSEGPT_BASE_URL"); ok && strings.TrimSpace(c.LLM.BaseURL) == defaultLLMBaseURL {
		c.LLM.BaseURL = value
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.ChatModel) == "" {
		c.LLM.ChatModel = defaultChatModel
	}
	if strings.TrimSpace(c.LLM.STTModel) == "" {
		c.LLM.STTModel = defaultSTTModel
	}
	if strings.TrimSpace(c.LLM.Title) == "" {
		c.LLM.Title = defaultLLMTitle
	}
	c.LLM.Language = strings.ToLower(strings.TrimSpace(c.LLM.Language))
	if c.LLM.Language == "" {
		c.LLM.Language = defaultLLMLanguage
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	if c.LLM.MinIntervalSeconds < 0 {
		c.LLM.MinIntervalSeconds = 0
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeIntake() error {
	var err error
	if strings.TrimSpace(c.Intake.TempDir) == "" {
		c.Intake.TempDir = defaultTempDir
	}
	if c.Intake.TempDir, err = expandPath(c.Intake.TempDir); err != nil {
		return fmt.Errorf("intake.temp_dir: %w", err)
	}
	exts := make([]string, 0, len(c.Intake.AllowedAudioExt))
	seen := make(map[string]struct{}, len(c.Intake.AllowedAudioExt))
	for _, ext := range c.Intake.AllowedAudioExt {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultAudioExt...)
	}
	c.Intake.AllowedAudioExt = exts
	if c.Intake.MaxAudioBytes <= 0 {
		c.Intake.MaxAudioBytes = defaultMaxAudioBytes
	}
	if c.Intake.MaxDocBytes <= 0 {
		c.Intake.MaxDocBytes = defaultMaxDocBytes
	}
	if strings.TrimSpace(c.Intake.FFmpegBinary) == "" {
		c.Intake.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Intake.FFprobeBinary) == "" {
		c.Intake.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Intake.AudioBitrate) == "" {
		c.Intake.AudioBitrate = defaultAudioBitrate
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	c.Library.Title = strings.TrimSpace(c.Library.Title)
	if c.Library.Title == "" {
		c.Library.Title = defaultLibraryTitle
	}
	disciplines := make([]string, 0, len(c.Library.Disciplines))
	seen := make(map[string]struct{}, len(c.Library.Disciplines))
	for _, name := range c.Library.Disciplines {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		disciplines = append(disciplines, name)
	}
	c.Library.Disciplines = disciplines
	if strings.TrimSpace(c.Library.Timezone) == "" {
		c.Library.Timezone = defaultTimezone
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
