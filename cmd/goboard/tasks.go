package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/basket/go-board/internal/board"
	"github.com/basket/go-board/internal/task"
	"github.com/basket/go-board/internal/tui"
)

var errTaskNotFound = errors.New("task not found")

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func addCmd(flags *rootFlags) *cobra.Command {
	var deadline string
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a task to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags.options())
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			b, err := a.newBoard(ctx)
			if err != nil {
				return err
			}

			d := board.Draft{Description: args[0], Deadline: deadline}
			if err := b.SubmitDraft(ctx, &d); err != nil {
				return err
			}
			col := b.TasksForStatus(task.Backlog)
			added := col[len(col)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d to %s\n", *added.ID, added.Status.Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", `deadline as "dd/mm/yyyy hh:mm" or "dd/mm/yyyy"`)
	return cmd
}

func listCmd(flags *rootFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the board as text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var only *task.Status
			if status != "" {
				s, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				only = &s
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags.options())
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			tasks, err := a.store.LoadAll(ctx)
			if err != nil {
				return err
			}
			return tui.WriteText(cmd.OutOrStdout(), tasks, only)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only show one column (backlog, today, in_progress, done, archived)")
	return cmd
}

func moveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags.options())
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			b, err := a.newBoard(ctx)
			if err != nil {
				return err
			}
			if !b.SelectTask(id) {
				return fmt.Errorf("%w: #%d", errTaskNotFound, id)
			}
			if err := b.MoveTaskToColumn(ctx, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved #%d to %s\n", id, target.Label())
			return nil
		},
	}
}

func rmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, flags.options())
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			b, err := a.newBoard(ctx)
			if err != nil {
				return err
			}
			if !b.SelectTask(id) {
				return fmt.Errorf("%w: #%d", errTaskNotFound, id)
			}
			if err := b.DeleteTask(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
			return nil
		},
	}
}
