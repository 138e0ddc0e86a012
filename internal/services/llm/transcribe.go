package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

type transcriptionResponse struct {
	Text    string `json:"text"`
	Result  string `json:"result"`
	Content string `json:"content"`
}

// Transcribe uploads the audio file to the speech-to-text endpoint and returns
// the recognized text in the configured language.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("llm transcribe: api key required")
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("llm transcribe: stat audio: %w", err)
	}
	return c.withRetry(ctx, "llm transcribe", func() (string, error) {
		body, contentType, err := c.transcriptionForm(audioPath)
		if err != nil {
			return "", err
		}
		payload, err := c.post(ctx, "audio/transcriptions", contentType, body)
		if err != nil {
			return "", err
		}
		var parsed transcriptionResponse
		if err := json.Unmarshal(payload, &parsed); err != nil {
			return "", fmt.Errorf("llm transcribe: decode response: %w", err)
		}
		text := firstNonEmpty(parsed.Text, parsed.Result, parsed.Content)
		if text == "" {
			return "", &emptyContentError{Op: "llm transcribe", Snippet: summarizePayloadSnippet(string(payload))}
		}
		return text, nil
	})
}

// transcriptionForm builds the multipart body fresh for every attempt.
func (c *Client) transcriptionForm(audioPath string) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("llm transcribe: open audio: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"model", c.cfg.STTModel},
		{"response_format", "json"},
		{"language", c.cfg.Language},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("llm transcribe: write field %s: %w", field[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(audioPath)))
	header.Set("Content-Type", audioContentType(audioPath))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("llm transcribe: create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("llm transcribe: copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("llm transcribe: close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func audioContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	case ".ogg", ".oga":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
