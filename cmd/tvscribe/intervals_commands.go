package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tvscribe/internal/store"
)

func newIntervalsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intervals",
		Short: "Manage daily recording windows",
	}
	cmd.AddCommand(newIntervalsListCommand(ctx))
	cmd.AddCommand(newIntervalsAddCommand(ctx))
	cmd.AddCommand(newIntervalsUpdateCommand(ctx))
	cmd.AddCommand(newIntervalsRemoveCommand(ctx))
	return cmd
}

func newIntervalsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recording windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			intervals, err := st.Intervals(cmd.Context())
			if err != nil {
				return err
			}
			if len(intervals) == 0 {
				cmd.Println("No recording windows configured; ingestion is disabled until one is added.")
				return nil
			}

			rows := make([][]string, 0, len(intervals))
			for _, interval := range intervals {
				note := ""
				if interval.End < interval.Start {
					note = "wraps midnight"
				}
				rows = append(rows, []string{
					strconv.FormatInt(interval.ID, 10),
					interval.Start.String(),
					interval.End.String(),
					note,
				})
			}
			cmd.Println(renderTable([]string{"ID", "Start", "End", ""}, rows, 0))
			return nil
		},
	}
}

func newIntervalsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <start> <end>",
		Short: "Add a recording window (HH:MM or HH:MM:SS)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(args[0], args[1])
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.AddInterval(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			cmd.Printf("Added window %d: %s - %s\n", id, start, end)
			return nil
		},
	}
}

func newIntervalsUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <start> <end>",
		Short: "Rewrite an existing recording window",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse id %q: %w", args[0], err)
			}
			start, end, err := parseWindow(args[1], args[2])
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			interval := store.ScheduleInterval{ID: id, Start: start, End: end}
			if err := st.UpdateInterval(cmd.Context(), interval); err != nil {
				return err
			}
			cmd.Printf("Updated window %d: %s - %s\n", id, start, end)
			return nil
		},
	}
}

func newIntervalsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a recording window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse id %q: %w", args[0], err)
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteInterval(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Removed window %d\n", id)
			return nil
		},
	}
}

func parseWindow(startArg, endArg string) (store.TimeOfDay, store.TimeOfDay, error) {
	start, err := store.ParseTimeOfDay(startArg)
	if err != nil {
		return 0, 0, err
	}
	end, err := store.ParseTimeOfDay(endArg)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
