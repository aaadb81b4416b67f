package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent daemon lifecycle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			store, err := ctx.openJournal()
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			if store == nil {
				fmt.Fprintln(stdout, "Lifecycle journal is disabled (enable it under [journal] in the config)")
				return nil
			}
			defer store.Close()

			events, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(stdout, "No lifecycle events recorded")
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, event := range events {
				pid := ""
				if event.PID > 0 {
					pid = fmt.Sprintf("%d", event.PID)
				}
				rows = append(rows, []string{
					event.Timestamp.Local().Format("2006-01-02 15:04:05"),
					event.Kind,
					pid,
					event.Detail,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Time", "Event", "PID", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of events to show")
	return cmd
}
