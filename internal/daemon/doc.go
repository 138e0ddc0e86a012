// Package daemon coordinates the long-running bot process.
//
// It ties configuration, the state database, the library message and the
// chat transport into a single lifecycle with flock-based locking so only
// one instance polls Telegram at a time. On start the daemon loads cached
// share links, re-links every configured discipline and reposts the group
// library message before handing control to the transport.
//
// Keep orchestration here: conversation logic lives in workflow, and each
// external service keeps its own package.
package daemon
