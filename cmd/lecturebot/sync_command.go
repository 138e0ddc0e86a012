package main

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"lecturebot/internal/config"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/publish"
	"lecturebot/internal/services/nextcloud"
	"lecturebot/internal/state"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Create discipline folders and refresh their share links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}
				cloud, err := newCloudClient(cfg, logger)
				if err != nil {
					return err
				}
				layout := publish.Layout{Root: cfg.Nextcloud.RootFolder, Archive: cfg.Nextcloud.ArchiveFolder}
				cache := library.NewShareLinkCache(store, cloud, layout, logger)
				report, err := cache.Sync(cmd.Context(), cfg.Library.Disciplines)
				if err != nil {
					return fmt.Errorf("sync library: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSyncReport(report, cache.Snapshot()))
				if len(report.Failed) > 0 {
					return fmt.Errorf("%d discipline(s) could not be linked", len(report.Failed))
				}
				return nil
			})
		},
	}
}

func renderSyncReport(report library.SyncReport, links map[string]string) string {
	rows := make([][]string, 0, len(report.Linked)+len(report.Failed)+len(report.Pruned))
	for _, name := range report.Linked {
		rows = append(rows, []string{name, "linked", links[name]})
	}
	failed := make([]string, 0, len(report.Failed))
	for name := range report.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		rows = append(rows, []string{name, "failed", report.Failed[name].Error()})
	}
	for _, name := range report.Pruned {
		rows = append(rows, []string{name, "pruned", "no longer configured"})
	}
	return renderTable([]string{"Discipline", "Status", "Detail"}, rows, nil)
}

func newCloudClient(cfg *config.Config, logger *slog.Logger) (*nextcloud.Client, error) {
	return nextcloud.NewClient(nextcloud.Config{
		URL:      cfg.Nextcloud.URL,
		Username: cfg.Nextcloud.Username,
		Password: cfg.Nextcloud.Password,
		Timeout:  time.Duration(cfg.Nextcloud.TimeoutSeconds) * time.Second,
	}, nextcloud.WithLogger(logger))
}
