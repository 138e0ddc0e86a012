package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lecturebot/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.AudioRequirements(cfg.Intake.FFmpegBinary, cfg.Intake.FFprobeBinary))
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				detail := s.Detail
				if detail == "" {
					detail = s.Command
				}
				rows = append(rows, []string{s.Name, yesNo(s.Available), yesNo(s.Optional), detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Binary", "Available", "Optional", "Detail"}, rows, nil))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintf(out, "Missing required binaries: %v. Audio will be uploaded without conversion.\n", missing)
			}
			return nil
		},
	}
}
