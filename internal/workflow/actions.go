package workflow

import (
	"strconv"
	"strings"

	"lecturebot/internal/library"
)

// Callback data sent by inline buttons. Telegram limits callback data to
// 64 bytes, so disciplines and lesson types travel as indices.
const (
	ActionRefresh    = library.ActionRefresh
	ActionAdd        = library.ActionAdd
	ActionBack       = "back"
	ActionScan       = "scan"
	ActionScanCancel = "scan:cancel"
	ActionScanDone   = "scan:done"
	ActionReady      = "ready"

	pickPrefix   = "pick:"
	lessonPrefix = "lesson:"
)

// Commands understood in private chats.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
	CommandSync   = "sync"
)

func pickAction(idx int) string {
	return pickPrefix + strconv.Itoa(idx)
}

func lessonAction(idx int) string {
	return lessonPrefix + strconv.Itoa(idx)
}

// parseIndexed splits "prefix:<n>" callback data.
func parseIndexed(data, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
