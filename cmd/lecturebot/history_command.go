package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lecturebot/internal/config"
	"lecturebot/internal/state"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var discipline string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent publications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				pubs, err := store.RecentPublications(cmd.Context(), discipline, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(pubs) == 0 {
					fmt.Fprintln(out, "No publications recorded")
					return nil
				}
				loc := cfg.Location()
				rows := make([][]string, 0, len(pubs))
				for _, p := range pubs {
					rows = append(rows, []string{
						strconv.FormatInt(p.ID, 10),
						p.CreatedAt.In(loc).Format("02.01.2006 15:04"),
						p.Discipline,
						p.SessionDate,
						p.LessonType,
						p.Topic,
						fmt.Sprintf("%d/%d", p.Uploaded, p.Total),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Published", "Discipline", "Date", "Type", "Topic", "Files"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&discipline, "discipline", "d", "", "Only show this discipline")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")
	return cmd
}
