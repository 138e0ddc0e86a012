package intake

import (
	"path/filepath"
	"slices"
	"strings"

	"lecturebot/internal/chat"
	"lecturebot/internal/session"
)

var imageExt = []string{"jpg", "jpeg", "png", "gif", "webp", "heic"}

// Classify maps an attachment to a session kind, looking at the transport's
// media kind first and the file extension or MIME type second.
func Classify(att chat.Attachment, audioExt []string) session.Kind {
	switch att.Kind {
	case chat.AttachmentAudio, chat.AttachmentVoice:
		return session.KindAudio
	case chat.AttachmentPhoto:
		return session.KindImage
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(att.FileName)), ".")
	mime := strings.ToLower(att.MimeType)
	switch {
	case strings.HasPrefix(mime, "audio/") || (ext != "" && slices.Contains(audioExt, ext)):
		return session.KindAudio
	case strings.HasPrefix(mime, "image/") || (ext != "" && slices.Contains(imageExt, ext)):
		return session.KindImage
	default:
		return session.KindDocument
	}
}

// displayName picks the file name used locally and on the remote store.
func displayName(att chat.Attachment) string {
	if name := strings.TrimSpace(att.FileName); name != "" {
		return name
	}
	switch att.Kind {
	case chat.AttachmentVoice:
		return "voice.ogg"
	case chat.AttachmentAudio:
		return "audio.mp3"
	case chat.AttachmentPhoto:
		return "photo.jpg"
	case chat.AttachmentVideo:
		return "video.mp4"
	default:
		return "file"
	}
}
