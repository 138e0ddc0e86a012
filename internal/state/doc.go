// Package state persists the bot's small amount of durable data in SQLite:
// public share links per discipline, the id of the library message posted in
// each group chat, and a log of completed publications.
//
// Open creates the schema on first use and refuses to run against a database
// written with a different schema version. Writes retry briefly on
// SQLITE_BUSY so the CLI can read while the daemon is running.
package state
