package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecturebot/internal/chat"
)

func toMessage(m *tgbotapi.Message) (chat.Message, bool) {
	if m == nil || m.Chat == nil {
		return chat.Message{}, false
	}
	out := chat.Message{
		ID:       m.MessageID,
		ChatID:   m.Chat.ID,
		ChatType: chat.ChatType(m.Chat.Type),
		Text:     m.Text,
	}
	if m.From != nil {
		out.UserID = m.From.ID
		out.FromBot = m.From.IsBot
	}
	if m.IsCommand() {
		out.Command = m.Command()
		out.Text = m.CommandArguments()
	}
	if att := attachmentOf(m); att != nil {
		out.Attachment = att
		out.Text = m.Caption
	}
	return out, true
}

func toCallback(q *tgbotapi.CallbackQuery) (chat.Callback, bool) {
	if q == nil || q.From == nil {
		return chat.Callback{}, false
	}
	out := chat.Callback{
		ID:     q.ID,
		UserID: q.From.ID,
		Data:   q.Data,
	}
	if q.Message != nil && q.Message.Chat != nil {
		out.ChatID = q.Message.Chat.ID
		out.ChatType = chat.ChatType(q.Message.Chat.Type)
		out.MessageID = q.Message.MessageID
	}
	return out, true
}

// attachmentOf returns the media carried by m. Photos resolve to their
// largest size and get a name from the unique file id so separate photos
// never collide.
func attachmentOf(m *tgbotapi.Message) *chat.Attachment {
	switch {
	case m.Document != nil:
		return &chat.Attachment{
			Kind:     chat.AttachmentDocument,
			FileID:   m.Document.FileID,
			FileName: m.Document.FileName,
			MimeType: m.Document.MimeType,
			Size:     int64(m.Document.FileSize),
		}
	case m.Audio != nil:
		return &chat.Attachment{
			Kind:     chat.AttachmentAudio,
			FileID:   m.Audio.FileID,
			FileName: m.Audio.FileName,
			MimeType: m.Audio.MimeType,
			Size:     int64(m.Audio.FileSize),
		}
	case m.Voice != nil:
		return &chat.Attachment{
			Kind:     chat.AttachmentVoice,
			FileID:   m.Voice.FileID,
			FileName: fmt.Sprintf("voice_%s.ogg", m.Voice.FileUniqueID),
			MimeType: m.Voice.MimeType,
			Size:     int64(m.Voice.FileSize),
		}
	case len(m.Photo) > 0:
		best := m.Photo[0]
		for _, p := range m.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return &chat.Attachment{
			Kind:     chat.AttachmentPhoto,
			FileID:   best.FileID,
			FileName: fmt.Sprintf("photo_%s.jpg", best.FileUniqueID),
			MimeType: "image/jpeg",
			Size:     int64(best.FileSize),
		}
	case m.Video != nil:
		return &chat.Attachment{
			Kind:     chat.AttachmentVideo,
			FileID:   m.Video.FileID,
			FileName: m.Video.FileName,
			MimeType: m.Video.MimeType,
			Size:     int64(m.Video.FileSize),
		}
	}
	return nil
}
