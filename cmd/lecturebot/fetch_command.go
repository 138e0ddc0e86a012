package main

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"lecturebot/internal/logging"
	"lecturebot/internal/services/nextcloud"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote-path> [local-path]",
		Short: "Download a published file from the library folder",
		Long: "Download a file from Nextcloud. The remote path is relative to " +
			"nextcloud.root_folder, e.g. \"Физика/Конспекты/05_09_2025_Тема.pdf\".",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			cloud, err := newCloudClient(cfg, logger)
			if err != nil {
				return err
			}
			remote := nextcloud.Join(cfg.Nextcloud.RootFolder, args[0])
			local := path.Base(remote)
			if len(args) == 2 {
				local = args[1]
			}
			n, err := cloud.Download(cmd.Context(), remote, local, 0)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", remote, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s (%d bytes) to %s\n", remote, n, filepath.Clean(local))
			return nil
		},
	}
}
