package library

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"lecturebot/internal/logging"
	"lecturebot/internal/publish"
	"lecturebot/internal/services/nextcloud"
	"lecturebot/internal/state"
)

// ShareStore persists share links.
type ShareStore interface {
	ShareLinks(ctx context.Context) (map[string]state.ShareLink, error)
	SaveShareLink(ctx context.Context, discipline, url string) error
	DeleteShareLink(ctx context.Context, discipline string) error
}

// Remote creates discipline folders and their public shares.
type Remote interface {
	EnsureFolder(ctx context.Context, remote string) error
	EnsureShare(ctx context.Context, remote string) (string, error)
}

// ShareLinkCache maps discipline names to public share URLs.
type ShareLinkCache struct {
	mu     sync.RWMutex
	links  map[string]string
	store  ShareStore
	remote Remote
	layout publish.Layout
	logger *slog.Logger
}

// NewShareLinkCache constructs an empty cache.
func NewShareLinkCache(store ShareStore, remote Remote, layout publish.Layout, logger *slog.Logger) *ShareLinkCache {
	return &ShareLinkCache{
		links:  make(map[string]string),
		store:  store,
		remote: remote,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// Load replaces the cache contents with the persisted links.
func (c *ShareLinkCache) Load(ctx context.Context) error {
	stored, err := c.store.ShareLinks(ctx)
	if err != nil {
		return err
	}
	links := make(map[string]string, len(stored))
	for name, link := range stored {
		links[name] = link.URL
	}
	c.mu.Lock()
	c.links = links
	c.mu.Unlock()
	return nil
}

// Lookup returns the cached URL without touching the remote store.
func (c *ShareLinkCache) Lookup(discipline string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.links[discipline]
	return url, ok
}

// Snapshot returns a copy of every cached link.
func (c *ShareLinkCache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.links)
}

// Resolve returns links for disciplines, refreshing the ones that are
// missing. Disciplines that still have no link are absent from the result.
func (c *ShareLinkCache) Resolve(ctx context.Context, disciplines []string) map[string]string {
	out := make(map[string]string, len(disciplines))
	for _, name := range disciplines {
		if url, ok := c.Lookup(name); ok {
			out[name] = url
			continue
		}
		if url, err := c.Refresh(ctx, name); err == nil {
			out[name] = url
		}
	}
	return out
}

// Refresh ensures the discipline folder and its share exist, then caches
// and persists the URL.
func (c *ShareLinkCache) Refresh(ctx context.Context, discipline string) (string, error) {
	folder := c.layout.DisciplineFolder(discipline)
	if err := c.remote.EnsureFolder(ctx, folder); err != nil {
		c.warn(ctx, discipline, "ensure folder", err)
		return "", err
	}
	url, err := c.remote.EnsureShare(ctx, folder)
	if err != nil {
		c.warn(ctx, discipline, "ensure share", err)
		return "", err
	}
	c.mu.Lock()
	c.links[discipline] = url
	c.mu.Unlock()
	if err := c.store.SaveShareLink(ctx, discipline, url); err != nil {
		c.warn(ctx, discipline, "persist share", err)
	}
	return url, nil
}

// SyncReport summarizes a Sync run.
type SyncReport struct {
	Linked []string
	Failed map[string]error
	Pruned []string
}

// Sync ensures the root folder, every discipline folder and every share,
// refreshing links even when they are cached. Links for disciplines no
// longer configured are forgotten; their remote folders are left alone.
func (c *ShareLinkCache) Sync(ctx context.Context, disciplines []string) (SyncReport, error) {
	report := SyncReport{Failed: make(map[string]error)}
	if err := c.remote.EnsureFolder(ctx, nextcloud.Join(c.layout.Root)); err != nil {
		return report, err
	}
	for _, name := range disciplines {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := c.Refresh(ctx, name); err != nil {
			report.Failed[name] = err
			continue
		}
		report.Linked = append(report.Linked, name)
	}
	report.Pruned = c.prune(ctx, disciplines)
	c.logger.Info("library synced",
		logging.Int("linked", len(report.Linked)),
		logging.Int("failed", len(report.Failed)),
		logging.Int("pruned", len(report.Pruned)),
	)
	return report, nil
}

func (c *ShareLinkCache) prune(ctx context.Context, disciplines []string) []string {
	keep := make(map[string]struct{}, len(disciplines))
	for _, name := range disciplines {
		keep[name] = struct{}{}
	}

	c.mu.Lock()
	var stale []string
	for name := range c.links {
		if _, ok := keep[name]; !ok {
			stale = append(stale, name)
			delete(c.links, name)
		}
	}
	c.mu.Unlock()

	sort.Strings(stale)
	for _, name := range stale {
		if err := c.store.DeleteShareLink(ctx, name); err != nil {
			c.warn(ctx, name, "forget share", err)
		}
	}
	return stale
}

func (c *ShareLinkCache) warn(ctx context.Context, discipline, step string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "share link refresh failed", "share_refresh_failed",
		logging.String("discipline", discipline),
		logging.String("step", step),
		logging.String(logging.FieldErrorHint, "check nextcloud credentials and sharing settings"),
		logging.String(logging.FieldImpact, "library shows a placeholder link"),
		logging.Error(err),
	)
}
