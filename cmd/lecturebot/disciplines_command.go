package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lecturebot/internal/config"
	"lecturebot/internal/state"
)

func newDisciplinesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "disciplines",
		Short: "List configured disciplines and their cached share links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				links, err := store.ShareLinks(cmd.Context())
				if err != nil {
					return err
				}
				loc := cfg.Location()
				rows := make([][]string, 0, len(cfg.Library.Disciplines))
				for i, name := range cfg.Library.Disciplines {
					link, updated := "-", "-"
					if l, ok := links[name]; ok {
						link = l.URL
						updated = l.UpdatedAt.In(loc).Format("02.01.2006 15:04")
					}
					rows = append(rows, []string{fmt.Sprintf("%d", i+1), name, link, updated})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Discipline", "Share link", "Updated"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
