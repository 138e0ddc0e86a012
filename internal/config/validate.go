package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateNextcloud(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateIntake(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"telegram.poll_timeout_seconds": c.Telegram.PollTimeoutSeconds,
		"nextcloud.timeout_seconds":     c.Nextcloud.TimeoutSeconds,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"llm.retry_attempts":            c.LLM.RetryAttempts,
		"session.idle_timeout_minutes":  c.Session.IdleTimeoutMinutes,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"logging.max_size_mb":           c.Logging.MaxSizeMB,
	}); err != nil {
		return err
	}
	return nil
}

func missingHint(field, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/lecturebot/config.toml"
	}
	return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'lecturebot config init')", field, env, defaultPath)
}

func (c *Config) validateTelegram() error {
	if c.Telegram.Token == "" {
		return missingHint("telegram.token", "TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func (c *Config) validateNextcloud() error {
	if c.Nextcloud.URL == "" {
		return missingHint("nextcloud.url", "NEXTCLOUD_URL")
	}
	parsed, err := url.Parse(c.Nextcloud.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("nextcloud.url must be an absolute URL, got %q", c.Nextcloud.URL)
	}
	if c.Nextcloud.Username == "" {
		return missingHint("nextcloud.username", "NEXTCLOUD_USERNAME")
	}
	if c.Nextcloud.Password == "" {
		return missingHint("nextcloud.password", "NEXTCLOUD_PASSWORD")
	}
	if strings.Contains(c.Nextcloud.ArchiveFolder, "/") {
		return errors.New("nextcloud.archive_folder must be a single folder name")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		return missingHint("llm.api_key", "VSEGPT_API_KEY")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateIntake() error {
	if c.Intake.MaxAudioBytes <= 0 || c.Intake.MaxDocBytes <= 0 {
		return errors.New("intake byte ceilings must be positive")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if len(c.Library.Disciplines) == 0 {
		return errors.New("library.disciplines must include at least one discipline")
	}
	for _, name := range c.Library.Disciplines {
		if strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("library.disciplines entry %q must not contain path separators", name)
		}
	}
	if _, err := time.LoadLocation(c.Library.Timezone); err != nil {
		return fmt.Errorf("library.timezone: %w", err)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
