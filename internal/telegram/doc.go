// Package telegram adapts the Telegram Bot API to the chat contracts.
//
// Bot implements chat.Messenger and chat.Downloader on top of
// go-telegram-bot-api and runs the long-polling loop. Inbound updates are
// converted to chat.Message and chat.Callback values and handed to a
// Dispatcher, which keeps one serial lane per user so a user's events are
// handled in arrival order while different users proceed concurrently.
package telegram
