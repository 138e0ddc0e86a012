package library

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lecturebot/internal/chat"
	"lecturebot/internal/logging"
	"lecturebot/internal/publish"
	"lecturebot/internal/state"
)

type fakeRemote struct {
	folders []string
	shares  map[string]string
	fail    map[string]bool
	calls   int
}

func (f *fakeRemote) EnsureFolder(_ context.Context, remote string) error {
	f.folders = append(f.folders, remote)
	return nil
}

func (f *fakeRemote) EnsureShare(_ context.Context, remote string) (string, error) {
	f.calls++
	if f.fail[remote] {
		return "", errors.New("share refused")
	}
	if url, ok := f.shares[remote]; ok {
		return url, nil
	}
	return "https://cloud.example/s/" + filepath.Base(remote), nil
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []chat.Outgoing
	deleted []int
	sendErr error
	delay   time.Duration
}

func (f *fakeMessenger) Send(_ context.Context, msg chat.Outgoing) (int, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, msg)
	return f.nextID, nil
}

func (f *fakeMessenger) Edit(context.Context, chat.Outgoing) error { return nil }

func (f *fakeMessenger) Delete(_ context.Context, _ int64, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMessenger) AnswerCallback(context.Context, string, string) error { return nil }

var layout = publish.Layout{Root: "Лекции", Archive: "Конспекты"}

func openStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.OpenPath(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestShareLinkCacheRefreshesMissingLinks(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveShareLink(ctx, "Физика", "https://cloud.example/s/old"))

	remote := &fakeRemote{}
	cache := NewShareLinkCache(store, remote, layout, logging.NewNop())
	require.NoError(t, cache.Load(ctx))

	links := cache.Resolve(ctx, []string{"Физика", "Химия"})
	require.Equal(t, "https://cloud.example/s/old", links["Физика"])
	require.Equal(t, "https://cloud.example/s/Химия", links["Химия"])
	require.Equal(t, 1, remote.calls)
	require.Equal(t, []string{"Лекции/Химия"}, remote.folders)

	persisted, err := store.ShareLinks(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://cloud.example/s/Химия", persisted["Химия"].URL)
}

func TestShareLinkCacheSync(t *testing.T) {
	store := openStore(t)
	remote := &fakeRemote{fail: map[string]bool{"Лекции/Химия": true}}
	cache := NewShareLinkCache(store, remote, layout, logging.NewNop())

	report, err := cache.Sync(context.Background(), []string{"Физика", "Химия"})
	require.NoError(t, err)
	require.Equal(t, []string{"Физика"}, report.Linked)
	require.Contains(t, report.Failed, "Химия")
	require.Equal(t, "Лекции", remote.folders[0])

	url, ok := cache.Lookup("Физика")
	require.True(t, ok)
	require.Equal(t, "https://cloud.example/s/Физика", url)
	_, ok = cache.Lookup("Химия")
	require.False(t, ok)
}

func TestShareLinkCacheSyncPrunesRemovedDisciplines(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveShareLink(ctx, "Астрономия", "https://cloud.example/s/old"))

	cache := NewShareLinkCache(store, &fakeRemote{}, layout, logging.NewNop())
	require.NoError(t, cache.Load(ctx))

	report, err := cache.Sync(ctx, []string{"Физика"})
	require.NoError(t, err)
	require.Equal(t, []string{"Астрономия"}, report.Pruned)

	_, ok := cache.Lookup("Астрономия")
	require.False(t, ok)
	stored, err := store.ShareLinks(ctx)
	require.NoError(t, err)
	require.NotContains(t, stored, "Астрономия")
	require.Contains(t, stored, "Физика")
}

func newLibrary(t *testing.T, remote *fakeRemote, target int64) (*Library, *fakeMessenger, *state.Store) {
	t.Helper()
	store := openStore(t)
	messenger := &fakeMessenger{}
	cache := NewShareLinkCache(store, remote, layout, logging.NewNop())
	lib := New(Options{
		Title:        "БИБЛИОТЕКА <ЛЕКЦИЙ>",
		Disciplines:  []string{"Физика", "Химия"},
		Location:     time.UTC,
		TargetChatID: target,
	}, cache, messenger, store, logging.NewNop())
	lib.now = func() time.Time { return time.Date(2025, 9, 5, 14, 30, 0, 0, time.UTC) }
	return lib, messenger, store
}

func TestLibraryText(t *testing.T) {
	lib, _, _ := newLibrary(t, &fakeRemote{fail: map[string]bool{"Лекции/Химия": true}}, 0)

	want := strings.Join([]string{
		"📚 <b>БИБЛИОТЕКА &lt;ЛЕКЦИЙ&gt;</b>",
		"",
		`🔗 <a href="https://cloud.example/s/Физика">Физика</a>`,
		`🔗 <a href="#">Химия</a>`,
		"",
		"📅 Последнее обновление: <code>05.09.2025 14:30</code>",
	}, "\n")
	require.Equal(t, want, lib.Text(context.Background()))
}

func TestRepostReplacesPreviousMessage(t *testing.T) {
	lib, messenger, store := newLibrary(t, &fakeRemote{}, 0)
	ctx := context.Background()

	first, err := lib.Repost(ctx, -100)
	require.NoError(t, err)
	second, err := lib.Repost(ctx, -100)
	require.NoError(t, err)

	require.Equal(t, []int{first}, messenger.deleted)
	require.Len(t, messenger.sent, 2)
	require.True(t, messenger.sent[1].HTML)
	require.Equal(t, GroupKeyboard(), messenger.sent[1].Keyboard)

	id, ok, err := store.LibraryMessage(ctx, -100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second, id)
}

func TestConcurrentRepostsLeaveOneLibraryMessage(t *testing.T) {
	lib, messenger, store := newLibrary(t, &fakeRemote{}, 0)
	ctx := context.Background()
	_, err := lib.Cache().Sync(ctx, lib.Disciplines())
	require.NoError(t, err)
	messenger.delay = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lib.Repost(ctx, -100)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, messenger.sent, 8)
	require.Len(t, messenger.deleted, 7)
	live := map[int]bool{}
	for id := 1; id <= messenger.nextID; id++ {
		live[id] = true
	}
	for _, id := range messenger.deleted {
		delete(live, id)
	}
	require.Len(t, live, 1)

	stored, ok, err := store.LibraryMessage(ctx, -100)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, live[stored])
}

func TestRepostSendFailureKeepsOldID(t *testing.T) {
	lib, messenger, store := newLibrary(t, &fakeRemote{}, 0)
	ctx := context.Background()
	require.NoError(t, store.SaveLibraryMessage(ctx, -100, 7))
	messenger.sendErr = errors.New("forbidden")

	_, err := lib.Repost(ctx, -100)
	require.Error(t, err)
	id, _, err := store.LibraryMessage(ctx, -100)
	require.NoError(t, err)
	require.Equal(t, 7, id)
}

func TestServes(t *testing.T) {
	all, _, _ := newLibrary(t, &fakeRemote{}, 0)
	require.True(t, all.Serves(-1))
	one, _, _ := newLibrary(t, &fakeRemote{}, -100)
	require.True(t, one.Serves(-100))
	require.False(t, one.Serves(-200))
}
