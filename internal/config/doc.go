// Package config loads, normalizes, and validates lecturebot configuration data.
//
// It supplies repository defaults (the discipline list, Nextcloud folder
// names, VseGPT endpoints), expands user paths (including tilde shortcuts),
// reads TOML files, and honours environment fallbacks such as
// TELEGRAM_BOT_TOKEN and VSEGPT_API_KEY, optionally sourced from a .env file.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. The
// returned Config is treated as immutable for the process lifetime.
package config
