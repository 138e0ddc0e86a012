package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func uploading(t *testing.T) *UploadSession {
	t.Helper()
	s := New(1, 1)
	s.Start("05.09.2025")
	require.NoError(t, s.SelectDiscipline("Физика"))
	return s
}

func TestFullFlowTransitions(t *testing.T) {
	s := uploading(t)
	require.Equal(t, UploadingFiles, s.Mode)
	require.Equal(t, "05.09.2025", s.SessionDate)

	require.NoError(t, s.EnterScan())
	require.Equal(t, UploadingScan, s.Mode)
	s.AddScanImage("a.jpg")
	require.NoError(t, s.ExitScan())
	require.Equal(t, []string{"a.jpg"}, s.ScanImages)

	require.NoError(t, s.Ready())
	require.Equal(t, ChoosingLessonType, s.Mode)
	require.NoError(t, s.SelectLessonType(Lecture))
	require.Equal(t, EnteringTopic, s.Mode)
	require.Equal(t, Lecture, s.LessonType)
}

func TestStartResetsEverything(t *testing.T) {
	s := uploading(t)
	oldID := s.ID
	s.AddFile(CollectedFile{LocalPath: "x.pdf", Kind: KindDocument})
	s.AddNote("note")
	s.AddScanImage("p.jpg")
	require.True(t, s.ClaimAudio("a.mp3"))

	s.Start("06.09.2025")
	require.NotEqual(t, oldID, s.ID)
	require.Equal(t, ChoosingDiscipline, s.Mode)
	require.Empty(t, s.Discipline)
	require.Empty(t, s.CollectedFiles)
	require.Empty(t, s.TextNotes)
	require.Empty(t, s.ScanImages)
	require.Empty(t, s.FirstAudioPath)
	require.True(t, s.Empty())
}

func TestClaimAudioOnlyOnce(t *testing.T) {
	s := uploading(t)
	require.True(t, s.ClaimAudio("first.mp3"))
	require.False(t, s.ClaimAudio("second.mp3"))
	require.Equal(t, "first.mp3", s.FirstAudioPath)
}

func TestOutOfStateEventsAreStateErrors(t *testing.T) {
	s := New(1, 1)
	require.True(t, IsStateError(s.SelectDiscipline("Физика")))
	require.True(t, IsStateError(s.EnterScan()))
	require.True(t, IsStateError(s.ExitScan()))
	require.True(t, IsStateError(s.SelectLessonType(Lab)))
	require.Equal(t, Idle, s.Mode)

	s = uploading(t)
	require.True(t, IsStateError(s.ExitScan()))
	require.True(t, IsStateError(s.SelectLessonType("Семинар")))
}

func TestReadyRequiresDiscipline(t *testing.T) {
	s := New(1, 1)
	s.Start("05.09.2025")
	require.ErrorIs(t, s.Ready(), ErrNoDiscipline)
	require.Equal(t, ChoosingDiscipline, s.Mode)
}

func TestReadyAllowsEmptySession(t *testing.T) {
	s := uploading(t)
	require.NoError(t, s.Ready())
}

func TestSelectDisciplineClearsCollections(t *testing.T) {
	s := New(1, 1)
	s.Start("05.09.2025")
	s.AddNote("stale")
	s.ClaimAudio("stale.mp3")
	require.NoError(t, s.SelectDiscipline("Химия"))
	require.Empty(t, s.TextNotes)
	require.Empty(t, s.FirstAudioPath)
}

func TestCancelFromAnyState(t *testing.T) {
	s := uploading(t)
	require.NoError(t, s.EnterScan())
	s.Cancel()
	require.Equal(t, Idle, s.Mode)
	require.Empty(t, s.Discipline)
}

func TestCloneIsDeep(t *testing.T) {
	s := uploading(t)
	s.AddNote("one")
	c := s.Clone()
	c.TextNotes[0] = "changed"
	c.AddNote("two")
	require.Equal(t, []string{"one"}, s.TextNotes)
}

func TestLessonTypeAt(t *testing.T) {
	lt, ok := LessonTypeAt(2)
	require.True(t, ok)
	require.Equal(t, Lab, lt)
	_, ok = LessonTypeAt(3)
	require.False(t, ok)
	require.Equal(t, "uploading_scan", UploadingScan.String())
}
