package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/basket/go-board/internal/audit"
	"github.com/basket/go-board/internal/tui"
)

type rootFlags struct {
	home    string
	verbose bool
}

func (f *rootFlags) options() appOptions {
	return appOptions{home: f.home, verbose: f.verbose}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "goboard",
		Short:         "A personal task board in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd, flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.home, "home", "", "data directory (default $GOBOARD_HOME or ./.goboard)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "also write logs to stdout")

	rootCmd.AddCommand(addCmd(flags))
	rootCmd.AddCommand(listCmd(flags))
	rootCmd.AddCommand(moveCmd(flags))
	rootCmd.AddCommand(rmCmd(flags))
	rootCmd.AddCommand(backupCmd(flags))
	rootCmd.AddCommand(doctorCmd(flags))
	rootCmd.AddCommand(configCmd(flags))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func interactive() bool {
	if os.Getenv("GOBOARD_NO_TUI") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runBoard opens the interactive board on a terminal and prints it as text
// otherwise.
func runBoard(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()
	// Logs must not interleave with the board view.
	opts := flags.options()
	tty := interactive()
	if tty {
		opts.verbose = false
	}

	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	b, err := a.newBoard(ctx)
	if err != nil {
		return err
	}
	if !tty {
		return tui.WriteText(cmd.OutOrStdout(), b.Tasks(), nil)
	}

	theme := tui.Theme{Accent: a.cfg.Theme.Accent, Muted: a.cfg.Theme.Muted, Selected: a.cfg.Theme.Selected}
	a.logger.Info("board opened", "tasks", len(b.Tasks()))
	if err := tui.Run(ctx, b, theme); err != nil && ctx.Err() == nil {
		return err
	}
	a.logger.Info("board closed", "mutations", audit.MutationCount())
	return nil
}
