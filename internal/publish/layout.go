package publish

import (
	"lecturebot/internal/services/nextcloud"
	"lecturebot/internal/textutil"
)

// Layout resolves remote folder paths.
type Layout struct {
	Root    string
	Archive string
}

// DisciplineFolder returns {root}/{discipline}.
func (l Layout) DisciplineFolder(discipline string) string {
	return nextcloud.Join(l.Root, textutil.SanitizeSegment(discipline))
}

// LessonFolder returns {root}/{discipline}/{date}/{lessonType}.
func (l Layout) LessonFolder(discipline, date, lessonType string) string {
	return nextcloud.Join(l.DisciplineFolder(discipline), textutil.SanitizeSegment(date), textutil.SanitizeSegment(lessonType))
}

// ArchiveFolder returns {root}/{discipline}/{archive}.
func (l Layout) ArchiveFolder(discipline string) string {
	return nextcloud.Join(l.DisciplineFolder(discipline), l.Archive)
}

// ArchiveName is the archive copy name: the session date with dots turned
// into underscores, prefixed to name, plus prefix (for scans) in front.
func ArchiveName(date, name, prefix string) string {
	return prefix + textutil.ArchiveDate(date) + "_" + name
}
