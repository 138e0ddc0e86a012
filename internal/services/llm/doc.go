// Package llm provides a client for the OpenAI-compatible VseGPT endpoints
// used to turn lecture audio into notes.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Transcribe: upload an audio file to /audio/transcriptions.
// Client.Structure: rewrite a transcript into Markdown via /chat/completions
// using StructuringPrompt.
// Client.Complete: arbitrary system/user chat completion.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, transport failures, network
// timeouts, and empty content with exponential backoff (base 1s, max 10s, up
// to 3 attempts by default). Retry-After is honoured. Context cancellation
// aborts retries immediately.
//
// # Pacing
//
// Every attempt first waits on a Throttle. By default all clients share
// ProcessThrottle, which keeps consecutive calls at least the configured
// interval apart across the whole process.
package llm
