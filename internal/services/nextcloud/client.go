package nextcloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"

	"lecturebot/internal/fileutil"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "lecturebot/1.0"
)

// Config describes a Nextcloud account.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Client wraps WebDAV and OCS access for one account.
type Client struct {
	cfg        Config
	baseURL    string
	dav        *gowebdav.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for OCS and the transport
// used for WebDAV.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "nextcloud")
	}
}

// NewClient constructs a client. The URL must be absolute.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "nextcloud", "init", fmt.Sprintf("invalid url %q", cfg.URL), err)
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "nextcloud", "init", "username required", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewComponentLogger(nil, "nextcloud"),
	}
	for _, opt := range opts {
		opt(c)
	}

	davRoot := fmt.Sprintf("%s/remote.php/dav/files/%s", base, url.PathEscape(cfg.Username))
	c.dav = gowebdav.NewClient(davRoot, cfg.Username, cfg.Password)
	c.dav.SetTimeout(cfg.Timeout)
	c.dav.SetHeader("User-Agent", userAgent)
	if c.httpClient.Transport != nil {
		c.dav.SetTransport(c.httpClient.Transport)
	}
	return c, nil
}

// EnsureFolder creates remote and any missing parents. Existing folders
// are not an error.
func (c *Client) EnsureFolder(ctx context.Context, remote string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remote = Join(remote)
	if remote == "" {
		return nil
	}
	if err := c.dav.MkdirAll(remote, 0o755); err != nil {
		// Some servers answer MKCOL on an existing collection with an
		// unexpected status; trust a successful stat instead.
		if info, statErr := c.dav.Stat(remote); statErr == nil && info.IsDir() {
			return nil
		}
		return services.Wrap(services.ErrPublish, "nextcloud", "mkcol", remote, err)
	}
	return nil
}

// Upload streams a local file to remote, replacing any existing file.
func (c *Client) Upload(ctx context.Context, localPath, remote string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.Open(localPath)
	if err != nil {
		return services.Wrap(services.ErrPublish, "nextcloud", "put", "open local file", err)
	}
	defer file.Close()
	if err := c.dav.WriteStream(Join(remote), file, 0o644); err != nil {
		return services.Wrap(services.ErrPublish, "nextcloud", "put", Join(remote), err)
	}
	c.logger.Debug("file uploaded", logging.String("remote", remote))
	return nil
}

// List returns the entry names directly inside folder. A missing folder
// yields an empty list.
func (c *Client) List(ctx context.Context, folder string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := c.dav.ReadDir(Join(folder))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrPublish, "nextcloud", "propfind", Join(folder), err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Copy duplicates src to dst on the server, replacing dst.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.dav.Copy(Join(src), Join(dst), true); err != nil {
		return services.Wrap(services.ErrPublish, "nextcloud", "copy", Join(src), err)
	}
	return nil
}

// Download streams remote into localPath. More than limit bytes fails with
// fileutil.ErrTooLarge; a limit <= 0 disables the ceiling.
func (c *Client) Download(ctx context.Context, remote, localPath string, limit int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stream, err := c.dav.ReadStream(Join(remote))
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "nextcloud", "get", Join(remote), err)
	}
	defer stream.Close()
	n, err := fileutil.WriteLimited(localPath, stream, limit)
	if err != nil {
		return 0, services.Wrap(services.ErrDownload, "nextcloud", "get", Join(remote), err)
	}
	c.logger.Debug("file downloaded", logging.String("remote", remote), logging.Int64("bytes", n))
	return n, nil
}

// Move renames src to dst on the server, replacing dst.
func (c *Client) Move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.dav.Rename(Join(src), Join(dst), true); err != nil {
		return services.Wrap(services.ErrPublish, "nextcloud", "move", Join(src), err)
	}
	return nil
}

// UniqueName returns a name not yet used inside folder.
func (c *Client) UniqueName(ctx context.Context, folder, base string) (string, error) {
	names, err := c.List(ctx, folder)
	if err != nil {
		return "", err
	}
	return UniqueName(names, base), nil
}

// Ping verifies the credentials by listing the WebDAV root.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.dav.Connect(); err != nil {
		return services.Wrap(services.ErrConfiguration, "nextcloud", "connect", c.baseURL, err)
	}
	return nil
}
