package workflow

import (
	"fmt"
	"html"
	"strings"

	"lecturebot/internal/chat"
	"lecturebot/internal/publish"
	"lecturebot/internal/session"
)

const (
	textChooseDiscipline = "📁 <b>ЗАГРУЗКА МАТЕРИАЛОВ</b>\n\nВыберите дисциплину для загрузки материалов:"
	textLessonType       = "🎯 <b>ТИП ЗАНЯТИЯ</b>\n\nВыберите тип занятия для загруженных материалов:"
	textTopic            = "📝 <b>ТЕМА ЗАНЯТИЯ</b>\n\nВведите краткую тему занятия для именования файлов:\n\n" +
		"💡 Например: \"Введение в термодинамику\", \"Системы линейных уравнений\""
	textTopicInvalid     = "Тема не может быть пустой. Введите тему занятия текстом:"
	textNoDiscipline     = "Сначала выберите дисциплину."
	textAccepted         = "Файл принят ✅"
	textNoteAdded        = "📝 Заметка сохранена"
	textAudioDiscarded   = "🎧 Второй аудиофайл удалён: для расшифровки принимается только первый."
	textScanAdded        = "Фото добавлено к скану 📑"
	textScanRejected     = "В режиме скана принимаются только фотографии."
	textPublishing       = "⏳ Обрабатываю материалы и загружаю в облако…"
	textPublishCancelled = "🚫 Загрузка отменена."
	textDone             = "✅ Готово! Материалы загружены и структурированы."
	textRefreshed        = "Обновлено"
	textSyncStarted      = "🔄 Синхронизация папок и ссылок…"
	textNotAllowed       = "Команда доступна только администраторам."
)

var lessonIcons = map[session.LessonType]string{
	session.Lecture:  "📖",
	session.Practice: "🔬",
	session.Lab:      "⚗️",
}

func uploadText(discipline string) string {
	return "📤 <b>ЗАГРУЗКА ФАЙЛОВ</b>\n" +
		"<b>Дисциплина:</b> " + html.EscapeString(discipline) + "\n\n" +
		"Отправьте файлы для загрузки:\n" +
		"📎 Документы (PDF, DOC, DOCX, TXT, MD)\n" +
		"🎵 Аудиозаписи (MP3, M4A, WAV, OGG)\n" +
		"📷 Изображения (JPG, PNG, GIF)\n" +
		"📝 Текстовые заметки (отправьте как обычное сообщение)\n\n" +
		"💡 <b>Заметки:</b> Если отправите обычное текстовое сообщение, оно будет сохранено как заметка в файле .md"
}

func scanText(pages int) string {
	text := "📑 <b>РЕЖИМ СКАНА</b>\n\nОтправляйте фотографии страниц по порядку. " +
		"Когда закончите, нажмите «✅ Готово»: фото соберутся в один PDF."
	if pages > 0 {
		text += fmt.Sprintf("\n\nУже добавлено: %d", pages)
	}
	return text
}

func disciplinesKeyboard(disciplines []string) chat.Keyboard {
	buttons := make([]chat.Button, 0, len(disciplines))
	for i, name := range disciplines {
		buttons = append(buttons, chat.DataButton(name, pickAction(i)))
	}
	kb := chat.Grid(buttons, 2)
	return append(kb, chat.Row(chat.DataButton("⬅️ Назад", ActionBack)))
}

func uploadKeyboard() chat.Keyboard {
	return chat.Keyboard{
		chat.Row(chat.DataButton("📑 Скан", ActionScan)),
		chat.Row(chat.DataButton("⬅️ Назад", ActionBack), chat.DataButton("✅ Готово", ActionReady)),
	}
}

func scanKeyboard() chat.Keyboard {
	return chat.Keyboard{
		chat.Row(chat.DataButton("⬅️ Назад", ActionScanCancel), chat.DataButton("✅ Готово", ActionScanDone)),
	}
}

func lessonKeyboard() chat.Keyboard {
	kb := make(chat.Keyboard, 0, len(session.LessonTypes))
	for i, lt := range session.LessonTypes {
		kb = append(kb, chat.Row(chat.DataButton(lessonIcons[lt]+" "+string(lt), lessonAction(i))))
	}
	return kb
}

// summaryText renders the publication result shown to the user.
func summaryText(report publish.Report, notices []string) string {
	var b strings.Builder
	if len(report.Failures) == 0 {
		b.WriteString(textDone)
	} else {
		fmt.Fprintf(&b, "⚠️ Загрузка завершена с ошибками: %d из %d файлов загружено.", len(report.Uploaded), report.Total)
	}
	if report.LessonShare != "" {
		fmt.Fprintf(&b, "\n\n📂 <a href=\"%s\">Папка занятия</a>", html.EscapeString(report.LessonShare))
	}
	if report.ArchiveShare != "" {
		fmt.Fprintf(&b, "\n🗂 <a href=\"%s\">Конспекты</a>", html.EscapeString(report.ArchiveShare))
	}
	for _, notice := range notices {
		b.WriteString("\n")
		b.WriteString(notice)
	}
	return b.String()
}
