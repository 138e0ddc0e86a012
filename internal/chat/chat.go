package chat

import (
	"context"
	"io"
)

// ChatType distinguishes private chats from groups.
type ChatType string

const (
	Private    ChatType = "private"
	Group      ChatType = "group"
	Supergroup ChatType = "supergroup"
	Channel    ChatType = "channel"
)

// IsGroup reports whether the chat is a group or supergroup.
func (t ChatType) IsGroup() bool {
	return t == Group || t == Supergroup
}

// AttachmentKind is the media kind reported by the transport.
type AttachmentKind string

const (
	AttachmentDocument AttachmentKind = "document"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVoice    AttachmentKind = "voice"
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentVideo    AttachmentKind = "video"
)

// Attachment references a file held by the transport.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// Message is an inbound message.
type Message struct {
	ID         int
	ChatID     int64
	ChatType   ChatType
	UserID     int64
	FromBot    bool
	Text       string
	Command    string
	Attachment *Attachment
}

// Callback is an inbound inline button press.
type Callback struct {
	ID        string
	ChatID    int64
	ChatType  ChatType
	UserID    int64
	MessageID int
	Data      string
}

// Button is one inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is a grid of inline buttons.
type Keyboard [][]Button

// Outgoing is a message to send or an edit to apply.
type Outgoing struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  Keyboard
	// HTML enables HTML parse mode.
	HTML bool
	// NoPreview disables link previews.
	NoPreview bool
}

// Messenger is the outbound chat surface.
type Messenger interface {
	Send(ctx context.Context, msg Outgoing) (int, error)
	Edit(ctx context.Context, msg Outgoing) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Downloader fetches attachment contents. The caller closes the reader.
type Downloader interface {
	Open(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Handler consumes inbound events.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandleCallback(ctx context.Context, cb Callback)
}
