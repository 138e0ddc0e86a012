package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"lecturebot/internal/services"
)

// DateLayout is the session date format used in remote folder names.
const DateLayout = "02.01.2006"

// Mode is the current workflow state of a session.
type Mode int

const (
	Idle Mode = iota
	ChoosingDiscipline
	UploadingFiles
	UploadingScan
	ChoosingLessonType
	EnteringTopic
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case ChoosingDiscipline:
		return "choosing_discipline"
	case UploadingFiles:
		return "uploading_files"
	case UploadingScan:
		return "uploading_scan"
	case ChoosingLessonType:
		return "choosing_lesson_type"
	case EnteringTopic:
		return "entering_topic"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Uploading reports whether attachments are accepted in this mode.
func (m Mode) Uploading() bool {
	return m == UploadingFiles || m == UploadingScan
}

// LessonType classifies where uploaded materials are filed.
type LessonType string

const (
	Lecture  LessonType = "Лекция"
	Practice LessonType = "Практика"
	Lab      LessonType = "Лабораторная работа"
)

// LessonTypes lists the lesson types in menu order.
var LessonTypes = []LessonType{Lecture, Practice, Lab}

// LessonTypeAt returns the lesson type at menu index idx.
func LessonTypeAt(idx int) (LessonType, bool) {
	if idx < 0 || idx >= len(LessonTypes) {
		return "", false
	}
	return LessonTypes[idx], true
}

// Kind is the media class of a collected file.
type Kind string

const (
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
	KindImage    Kind = "image"
	KindText     Kind = "text"
)

// CollectedFile is one locally stored attachment awaiting publication.
type CollectedFile struct {
	LocalPath   string
	DisplayName string
	Kind        Kind
}

// ErrNoDiscipline is returned when an action requires a selected discipline.
var ErrNoDiscipline = fmt.Errorf("%w: discipline not selected", services.ErrState)

// UploadSession is the mutable per-user record of an in-progress upload.
// The zero value is an Idle session without an ID.
type UploadSession struct {
	ID            string
	UserID        int64
	ChatID        int64
	MenuMessageID int
	TempDir       string

	Discipline     string
	SessionDate    string
	LessonType     LessonType
	CollectedFiles []CollectedFile
	FirstAudioPath string
	TextNotes      []string
	ScanImages     []string
	Mode           Mode
}

// New returns an Idle session with a fresh ID.
func New(userID, chatID int64) *UploadSession {
	return &UploadSession{
		ID:     uuid.NewString(),
		UserID: userID,
		ChatID: chatID,
	}
}

// Clone returns a deep copy safe to read without holding the store lock.
func (s *UploadSession) Clone() *UploadSession {
	if s == nil {
		return nil
	}
	out := *s
	out.CollectedFiles = slices.Clone(s.CollectedFiles)
	out.TextNotes = slices.Clone(s.TextNotes)
	out.ScanImages = slices.Clone(s.ScanImages)
	return &out
}

// Start restarts the flow: every field returns to its default, a new ID is
// issued and date is captured as the session date.
func (s *UploadSession) Start(date string) {
	s.clear()
	s.SessionDate = date
	s.Mode = ChoosingDiscipline
}

// Cancel returns the session to Idle from any state.
func (s *UploadSession) Cancel() {
	s.clear()
}

func (s *UploadSession) clear() {
	s.ID = uuid.NewString()
	s.Discipline = ""
	s.SessionDate = ""
	s.LessonType = ""
	s.CollectedFiles = nil
	s.FirstAudioPath = ""
	s.TextNotes = nil
	s.ScanImages = nil
	s.Mode = Idle
}

// SelectDiscipline moves ChoosingDiscipline -> UploadingFiles and empties
// every collection.
func (s *UploadSession) SelectDiscipline(name string) error {
	if s.Mode != ChoosingDiscipline {
		return s.transitionError("select discipline")
	}
	if name == "" {
		return ErrNoDiscipline
	}
	s.Discipline = name
	s.CollectedFiles = nil
	s.FirstAudioPath = ""
	s.TextNotes = nil
	s.ScanImages = nil
	s.Mode = UploadingFiles
	return nil
}

// EnterScan moves UploadingFiles -> UploadingScan.
func (s *UploadSession) EnterScan() error {
	if s.Mode != UploadingFiles {
		return s.transitionError("enter scan")
	}
	s.Mode = UploadingScan
	return nil
}

// ExitScan moves UploadingScan -> UploadingFiles. Collected scan images are
// kept whether the user cancelled or finished.
func (s *UploadSession) ExitScan() error {
	if s.Mode != UploadingScan {
		return s.transitionError("exit scan")
	}
	s.Mode = UploadingFiles
	return nil
}

// Ready moves UploadingFiles -> ChoosingLessonType. No minimum file count is
// enforced; only the discipline is required.
func (s *UploadSession) Ready() error {
	if s.Discipline == "" {
		return ErrNoDiscipline
	}
	if s.Mode != UploadingFiles {
		return s.transitionError("ready")
	}
	s.Mode = ChoosingLessonType
	return nil
}

// SelectLessonType moves ChoosingLessonType -> EnteringTopic.
func (s *UploadSession) SelectLessonType(lt LessonType) error {
	if s.Mode != ChoosingLessonType {
		return s.transitionError("select lesson type")
	}
	if !slices.Contains(LessonTypes, lt) {
		return fmt.Errorf("%w: unknown lesson type %q", services.ErrState, lt)
	}
	s.LessonType = lt
	s.Mode = EnteringTopic
	return nil
}

// ClaimAudio records path as the session's single retained audio. It
// returns false, leaving the session unchanged, when audio is already held.
func (s *UploadSession) ClaimAudio(path string) bool {
	if s.FirstAudioPath != "" {
		return false
	}
	s.FirstAudioPath = path
	return true
}

// AddFile appends a collected attachment.
func (s *UploadSession) AddFile(f CollectedFile) {
	s.CollectedFiles = append(s.CollectedFiles, f)
}

// AddScanImage appends a photo collected in scan mode.
func (s *UploadSession) AddScanImage(path string) {
	s.ScanImages = append(s.ScanImages, path)
}

// AddNote appends a verbatim text note.
func (s *UploadSession) AddNote(text string) {
	s.TextNotes = append(s.TextNotes, text)
}

// Empty reports whether nothing was collected.
func (s *UploadSession) Empty() bool {
	return len(s.CollectedFiles) == 0 && len(s.TextNotes) == 0 && len(s.ScanImages) == 0 && s.FirstAudioPath == ""
}

func (s *UploadSession) transitionError(action string) error {
	return fmt.Errorf("%w: %s not allowed in %s", services.ErrState, action, s.Mode)
}

// IsStateError reports whether err is an ignorable out-of-state event.
func IsStateError(err error) bool {
	return errors.Is(err, services.ErrState)
}
