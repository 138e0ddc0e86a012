// Package services defines shared utilities consumed by the upload pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp user, chat, session, and correlation
//     identifiers for logging.
//   - Structured error markers (download, conversion, transcription,
//     structuring, render, publish, state) plus the Wrap helper, so callers can
//     classify failures with errors.Is and turn them into short user-facing
//     status lines via UserMessage.
package services
