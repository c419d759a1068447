package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show transcript catalog totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			live, deleted, err := st.CountTranscripts(cmd.Context())
			if err != nil {
				return err
			}
			intervals, err := st.Intervals(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Live transcripts", strconv.FormatInt(live, 10)},
				{"Retired transcripts", strconv.FormatInt(deleted, 10)},
				{"Recording windows", strconv.Itoa(len(intervals))},
				{"Database", st.Path()},
			}
			cmd.Println(renderTable([]string{"Metric", "Value"}, rows, 1))
			return nil
		},
	}
}
