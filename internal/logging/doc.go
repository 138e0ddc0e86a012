// Package logging assembles structured slog loggers and formatting helpers used
// across lecturebot services.
//
// It owns the console/JSON handlers, picks a format automatically based on
// whether stdout is a terminal, and mirrors every record into a rotated JSON
// log file. Context-aware helpers tag log lines with user, chat, session, and
// correlation IDs. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
