package nextcloud

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"

	"lecturebot/internal/fileutil"
	"lecturebot/internal/services"
)

type fakeCloud struct {
	mu      sync.Mutex
	shares  map[string]string
	creates int
	lookups int
	server  *httptest.Server
	fs      webdav.FileSystem
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()
	fc := &fakeCloud{shares: map[string]string{}, fs: webdav.NewMemFS()}
	mux := http.NewServeMux()
	mux.Handle("/remote.php/dav/files/alice/", &webdav.Handler{
		Prefix:     "/remote.php/dav/files/alice",
		FileSystem: fc.fs,
		LockSystem: webdav.NewMemLS(),
	})
	mux.HandleFunc(sharesEndpoint, fc.handleShares)
	fc.server = httptest.NewServer(mux)
	t.Cleanup(fc.server.Close)
	return fc
}

func (fc *fakeCloud) handleShares(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != "alice" || pass != "secret" || r.Header.Get("OCS-APIRequest") != "true" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	w.Header().Set("Content-Type", "application/xml")
	switch r.Method {
	case http.MethodGet:
		fc.lookups++
		path := r.URL.Query().Get("path")
		if r.URL.Query().Get("reshares") != "true" || r.URL.Query().Get("subfiles") != "false" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		link, ok := fc.shares[path]
		if !ok {
			fmt.Fprint(w, `<?xml version="1.0"?><ocs><meta><status>ok</status><statuscode>200</statuscode></meta><data/></ocs>`)
			return
		}
		fmt.Fprintf(w, `<?xml version="1.0"?><ocs><meta><status>ok</status><statuscode>200</statuscode></meta><data>`+
			`<element><id>7</id><share_type>0</share_type><path>%s</path><url></url></element>`+
			`<element><id>8</id><share_type>3</share_type><path>%s</path><url>%s</url></element></data></ocs>`, path, path, link)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("shareType") != "3" || r.PostForm.Get("permissions") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fc.creates++
		path := r.PostForm.Get("path")
		link := fmt.Sprintf("https://cloud.example/s/share%d", fc.creates)
		fc.shares[path] = link
		fmt.Fprintf(w, `<?xml version="1.0"?><ocs><meta><status>ok</status><statuscode>200</statuscode></meta>`+
			`<data><id>%d</id><share_type>3</share_type><path>%s</path><url>%s</url></data></ocs>`, fc.creates, path, link)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fc *fakeCloud) client(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Config{URL: fc.server.URL + "/", Username: "alice", Password: "secret"})
	require.NoError(t, err)
	return c
}

func writeLocal(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{URL: "not a url", Username: "a"})
	require.Error(t, err)
	_, err = NewClient(Config{URL: "https://cloud.example"})
	require.Error(t, err)
}

func TestEnsureFolderIsIdempotent(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()

	folder := Join("Лекции", "Физика", "05.09.2025", "Лекция")
	require.NoError(t, c.EnsureFolder(ctx, folder))
	require.NoError(t, c.EnsureFolder(ctx, folder))
	require.NoError(t, c.EnsureFolder(ctx, "Лекции/Физика"))

	info, err := fc.fs.Stat(ctx, "/"+folder)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestUploadListAndUniqueName(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()
	folder := "Лекции/Физика"
	require.NoError(t, c.EnsureFolder(ctx, folder))

	local := writeLocal(t, "x.pdf", "%PDF-1.4")
	name, err := c.UniqueName(ctx, folder, "x.pdf")
	require.NoError(t, err)
	require.Equal(t, "x.pdf", name)
	require.NoError(t, c.Upload(ctx, local, Join(folder, name)))

	name, err = c.UniqueName(ctx, folder, "x.pdf")
	require.NoError(t, err)
	require.Equal(t, "x_1.pdf", name)
	require.NoError(t, c.Upload(ctx, local, Join(folder, name)))

	names, err := c.List(ctx, folder)
	require.NoError(t, err)
	sort.Strings(names)
	require.Equal(t, []string{"x.pdf", "x_1.pdf"}, names)
}

func TestListMissingFolderIsEmpty(t *testing.T) {
	fc := newFakeCloud(t)
	names, err := fc.client(t).List(context.Background(), "Нет/Такой")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestCopy(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()
	require.NoError(t, c.EnsureFolder(ctx, "a"))
	require.NoError(t, c.EnsureFolder(ctx, "b"))
	require.NoError(t, c.Upload(ctx, writeLocal(t, "n.pdf", "data"), "a/n.pdf"))
	require.NoError(t, c.Copy(ctx, "a/n.pdf", "b/05_09_2025_n.pdf"))

	names, err := c.List(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"05_09_2025_n.pdf"}, names)
}

func TestDownload(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()
	require.NoError(t, c.EnsureFolder(ctx, "Лекции/Физика"))
	require.NoError(t, c.Upload(ctx, writeLocal(t, "n.pdf", "pdf-bytes"), "Лекции/Физика/n.pdf"))

	local := filepath.Join(t.TempDir(), "out", "n.pdf")
	n, err := c.Download(ctx, "Лекции/Физика/n.pdf", local, 0)
	require.NoError(t, err)
	require.EqualValues(t, len("pdf-bytes"), n)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, "pdf-bytes", string(data))

	_, err = c.Download(ctx, "Лекции/Физика/n.pdf", filepath.Join(t.TempDir(), "small.pdf"), 3)
	require.ErrorIs(t, err, fileutil.ErrTooLarge)
	require.ErrorIs(t, err, services.ErrDownload)

	_, err = c.Download(ctx, "Лекции/Физика/missing.pdf", filepath.Join(t.TempDir(), "m.pdf"), 0)
	require.ErrorIs(t, err, services.ErrDownload)
}

func TestMove(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()
	require.NoError(t, c.EnsureFolder(ctx, "a"))
	require.NoError(t, c.Upload(ctx, writeLocal(t, "n.pdf", "data"), "a/n.pdf.part"))
	require.NoError(t, c.Move(ctx, "a/n.pdf.part", "a/n.pdf"))

	names, err := c.List(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"n.pdf"}, names)

	require.ErrorIs(t, c.Move(ctx, "a/missing", "a/other"), services.ErrPublish)
}

func TestEnsureShareReusesExisting(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx := context.Background()

	first, err := c.EnsureShare(ctx, "Лекции/Физика")
	require.NoError(t, err)
	require.Equal(t, "https://cloud.example/s/share1", first)

	second, err := c.EnsureShare(ctx, "/Лекции/Физика/")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, fc.creates)
	require.Equal(t, 2, fc.lookups)
}

func TestOperationsHonourCancelledContext(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.EnsureFolder(ctx, "a"), context.Canceled)
	_, err := c.List(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPing(t *testing.T) {
	fc := newFakeCloud(t)
	require.NoError(t, fc.client(t).Ping(context.Background()))
}
