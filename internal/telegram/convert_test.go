package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"lecturebot/internal/chat"
)

func TestToMessageParsesCommand(t *testing.T) {
	msg, ok := toMessage(&tgbotapi.Message{
		MessageID: 3,
		Chat:      &tgbotapi.Chat{ID: 1, Type: "private"},
		From:      &tgbotapi.User{ID: 2},
		Text:      "/start now",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	})
	require.True(t, ok)
	require.Equal(t, "start", msg.Command)
	require.Equal(t, "now", msg.Text)
	require.Equal(t, int64(2), msg.UserID)
	require.Nil(t, msg.Attachment)
}

func TestToMessagePicksLargestPhoto(t *testing.T) {
	msg, ok := toMessage(&tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 1, Type: "private"},
		From:    &tgbotapi.User{ID: 2},
		Caption: "доска",
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", FileUniqueID: "s", Width: 90, Height: 60},
			{FileID: "large", FileUniqueID: "l", Width: 1280, Height: 960, FileSize: 2048},
			{FileID: "medium", FileUniqueID: "m", Width: 320, Height: 240},
		},
	})
	require.True(t, ok)
	require.Equal(t, "доска", msg.Text)
	require.Equal(t, &chat.Attachment{
		Kind:     chat.AttachmentPhoto,
		FileID:   "large",
		FileName: "photo_l.jpg",
		MimeType: "image/jpeg",
		Size:     2048,
	}, msg.Attachment)
}

func TestToMessageMapsMediaKinds(t *testing.T) {
	base := func() *tgbotapi.Message {
		return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "supergroup"}, From: &tgbotapi.User{ID: 2, IsBot: true}}
	}

	doc := base()
	doc.Document = &tgbotapi.Document{FileID: "d", FileName: "a.pdf", MimeType: "application/pdf", FileSize: 10}
	audio := base()
	audio.Audio = &tgbotapi.Audio{FileID: "a", FileName: "rec.m4a", MimeType: "audio/mp4"}
	voice := base()
	voice.Voice = &tgbotapi.Voice{FileID: "v", FileUniqueID: "u1", MimeType: "audio/ogg"}
	video := base()
	video.Video = &tgbotapi.Video{FileID: "x", FileName: "clip.mp4"}

	cases := []struct {
		msg  *tgbotapi.Message
		kind chat.AttachmentKind
		name string
	}{
		{doc, chat.AttachmentDocument, "a.pdf"},
		{audio, chat.AttachmentAudio, "rec.m4a"},
		{voice, chat.AttachmentVoice, "voice_u1.ogg"},
		{video, chat.AttachmentVideo, "clip.mp4"},
	}
	for _, tc := range cases {
		msg, ok := toMessage(tc.msg)
		require.True(t, ok)
		require.True(t, msg.FromBot)
		require.True(t, msg.ChatType.IsGroup())
		require.Equal(t, tc.kind, msg.Attachment.Kind)
		require.Equal(t, tc.name, msg.Attachment.FileName)
	}
}

func TestToMessageRejectsEmpty(t *testing.T) {
	_, ok := toMessage(nil)
	require.False(t, ok)
	_, ok = toMessage(&tgbotapi.Message{})
	require.False(t, ok)
	_, ok = toCallback(&tgbotapi.CallbackQuery{ID: "x"})
	require.False(t, ok)
}

func TestLaneKey(t *testing.T) {
	require.Equal(t, int64(5), laneKey(chat.Private, 5, 5))
	require.Equal(t, int64(-100), laneKey(chat.Private, 0, -100))
	require.Equal(t, int64(-100), laneKey(chat.Group, 5, -100))
	require.Equal(t, int64(-100), laneKey(chat.Supergroup, 6, -100))
}
