package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search transcripts by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.SearchTranscripts(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No matches.")
				return nil
			}

			loc := ctx.cfg.Location()
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ChannelID,
					record.StartTime.In(loc).Format(time.DateTime),
					record.EndTime.In(loc).Format("15:04:05"),
					record.Text,
				})
			}
			cmd.Println(renderTable([]string{"Channel", "Start", "End", "Text"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of results")
	return cmd
}
