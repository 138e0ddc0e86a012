package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes for the upload pipeline. Every class except ErrState is
// contained at the artifact boundary; none of them abort a session.
var (
	ErrDownload      = errors.New("download error")
	ErrConversion    = errors.New("conversion error")
	ErrTranscription = errors.New("transcription error")
	ErrStructuring   = errors.New("structuring error")
	ErrRender        = errors.New("render error")
	ErrPublish       = errors.New("publish error")
	ErrState         = errors.New("state error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage maps a failure to a short status line suitable for chat output.
// Raw error text never leaves this function.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDownload):
		return "Не удалось получить файл. Попробуйте отправить его ещё раз."
	case errors.Is(err, ErrValidation):
		return "Файл не принят: превышен допустимый размер или неподдерживаемый формат."
	case errors.Is(err, ErrTranscription):
		return "Не удалось расшифровать аудио. Остальные материалы загружены."
	case errors.Is(err, ErrStructuring):
		return "Не удалось оформить конспект по аудио. Остальные материалы загружены."
	case errors.Is(err, ErrPublish):
		return "Часть файлов не удалось загрузить в хранилище."
	case errors.Is(err, ErrConversion), errors.Is(err, ErrRender):
		return "Файл обработан с упрощениями."
	default:
		return "Что-то пошло не так. Попробуйте ещё раз."
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
