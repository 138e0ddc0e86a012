package publish

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"lecturebot/internal/logging"
	"lecturebot/internal/services"
	"lecturebot/internal/services/nextcloud"
	"lecturebot/internal/textutil"
)

const partialSuffix = ".part"

// Storage is the remote store surface publication needs.
type Storage interface {
	EnsureFolder(ctx context.Context, remote string) error
	UniqueName(ctx context.Context, folder, base string) (string, error)
	Upload(ctx context.Context, localPath, remote string) error
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	EnsureShare(ctx context.Context, remote string) (string, error)
}

// Item is one local file to publish.
type Item struct {
	LocalPath string
	Name      string
	// Archive, when set, is the base name of a dated copy placed in the
	// archive folder.
	Archive string
	// ArchivePrefix goes in front of the dated archive name.
	ArchivePrefix string
}

// Request describes a session to publish.
type Request struct {
	Discipline  string
	SessionDate string
	LessonType  string
	Items       []Item
}

// Failure is an item or share that could not be published.
type Failure struct {
	Name string
	Err  error
}

// Report summarizes a publication.
type Report struct {
	LessonFolder  string
	ArchiveFolder string
	Uploaded      []string
	Archived      []string
	Failures      []Failure
	LessonShare   string
	ArchiveShare  string
	Total         int
}

// Err joins every failure, or returns nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Publisher uploads sessions to Storage.
type Publisher struct {
	storage Storage
	layout  Layout
	logger  *slog.Logger
}

// New constructs a Publisher.
func New(storage Storage, layout Layout, logger *slog.Logger) *Publisher {
	return &Publisher{storage: storage, layout: layout, logger: logging.NewComponentLogger(logger, "publish")}
}

// Layout returns the folder layout in use.
func (p *Publisher) Layout() Layout {
	return p.layout
}

// Publish uploads every item of req. It never stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, req Request) Report {
	logger := logging.WithContext(ctx, p.logger)
	report := Report{
		LessonFolder:  p.layout.LessonFolder(req.Discipline, req.SessionDate, req.LessonType),
		ArchiveFolder: p.layout.ArchiveFolder(req.Discipline),
		Total:         len(req.Items),
	}

	lessonErr := p.storage.EnsureFolder(ctx, report.LessonFolder)
	if lessonErr != nil {
		p.record(logger, &report, report.LessonFolder, "ensure lesson folder", lessonErr)
	}
	archiveErr := p.storage.EnsureFolder(ctx, report.ArchiveFolder)
	if archiveErr != nil {
		p.record(logger, &report, report.ArchiveFolder, "ensure archive folder", archiveErr)
	}

	for _, item := range req.Items {
		if lessonErr != nil {
			p.record(logger, &report, item.Name, "upload", lessonErr)
			continue
		}
		remote, err := p.upload(ctx, report.LessonFolder, item)
		if err != nil {
			p.record(logger, &report, item.Name, "upload", err)
			continue
		}
		report.Uploaded = append(report.Uploaded, remote)

		if item.Archive == "" || archiveErr != nil {
			continue
		}
		archived, err := p.archive(ctx, report.ArchiveFolder, remote, req.SessionDate, item)
		if err != nil {
			p.record(logger, &report, item.Name, "archive copy", err)
			continue
		}
		report.Archived = append(report.Archived, archived)
	}

	if lessonErr == nil {
		report.LessonShare = p.share(ctx, logger, &report, report.LessonFolder)
	}
	if archiveErr == nil {
		report.ArchiveShare = p.share(ctx, logger, &report, report.ArchiveFolder)
	}

	logger.Info("session published",
		logging.String("discipline", req.Discipline),
		logging.String("folder", report.LessonFolder),
		logging.Int("uploaded", len(report.Uploaded)),
		logging.Int("archived", len(report.Archived)),
		logging.Int("total", report.Total),
		logging.Int("failures", len(report.Failures)),
	)
	return report
}

func (p *Publisher) upload(ctx context.Context, folder string, item Item) (string, error) {
	base := textutil.SanitizeFileName(item.Name)
	name, err := p.storage.UniqueName(ctx, folder, base)
	if err != nil {
		return "", err
	}
	remote := nextcloud.Join(folder, name)
	if err := p.storage.Upload(ctx, item.LocalPath, remote); err != nil {
		return "", err
	}
	return remote, nil
}

// archive copies the uploaded file server-side. When the copy is refused
// the local file is uploaded under a partial name and moved into place, so
// the archive never shows a half-written file.
func (p *Publisher) archive(ctx context.Context, folder, uploaded, date string, item Item) (string, error) {
	base := ArchiveName(date, textutil.SanitizeFileName(item.Archive), item.ArchivePrefix)
	name, err := p.storage.UniqueName(ctx, folder, base)
	if err != nil {
		return "", err
	}
	remote := nextcloud.Join(folder, name)
	copyErr := p.storage.Copy(ctx, uploaded, remote)
	if copyErr == nil {
		return remote, nil
	}
	p.logger.Debug("server-side copy failed; uploading archive copy", logging.Error(copyErr))
	partial := remote + partialSuffix
	if err := p.storage.Upload(ctx, item.LocalPath, partial); err != nil {
		return "", errors.Join(copyErr, err)
	}
	if err := p.storage.Move(ctx, partial, remote); err != nil {
		return "", errors.Join(copyErr, err)
	}
	return remote, nil
}

func (p *Publisher) share(ctx context.Context, logger *slog.Logger, report *Report, folder string) string {
	url, err := p.storage.EnsureShare(ctx, folder)
	if err != nil {
		p.record(logger, report, folder, "ensure share", err)
		return ""
	}
	return strings.TrimSpace(url)
}

func (p *Publisher) record(logger *slog.Logger, report *Report, name, op string, err error) {
	if !errors.Is(err, services.ErrPublish) {
		err = services.Wrap(services.ErrPublish, "publish", op, name, err)
	}
	report.Failures = append(report.Failures, Failure{Name: name, Err: err})
	logging.WarnWithContext(logger, "publication step failed", "publish_failed",
		logging.String("target", name),
		logging.String("step", op),
		logging.String(logging.FieldErrorHint, "check nextcloud connectivity and credentials"),
		logging.String(logging.FieldImpact, "file missing from the remote folder"),
		logging.Error(err),
	)
}
