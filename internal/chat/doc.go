// Package chat defines the transport-neutral surface the bot core needs from
// a chat platform: inbound events, outbound text with inline buttons, edits,
// deletes and attachment downloads. internal/telegram implements it.
package chat
