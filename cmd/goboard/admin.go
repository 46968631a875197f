package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/basket/go-board/internal/config"
	"github.com/basket/go-board/internal/doctor"
)

var errDoctorFailed = errors.New("doctor found failing checks")

func backupCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Copy the database to dest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags.options())
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			if err := a.store.Backup(ctx, args[0]); err != nil {
				return err
			}
			a.logger.Info("backup written", "dest", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", args[0])
			return nil
		},
	}
}

func doctorCmd(flags *rootFlags) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, migrations and database health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(flags.home)
			if err != nil {
				// Keep going; the checks show what is wrong.
				fmt.Fprintf(cmd.ErrOrStderr(), "Error loading config: %v\n", err)
			}
			diag := doctor.Run(cmd.Context(), &cfg, Version)

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(diag); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			} else {
				fmt.Fprintf(out, "goboard doctor report (%s)\n", diag.Timestamp.Format(time.RFC3339))
				fmt.Fprintf(out, "System: %s/%s (%s) %s\n", diag.System.OS, diag.System.Arch, diag.System.Go, diag.System.Version)
				fmt.Fprintln(out, "---")
				for _, res := range diag.Results {
					icon := "✅"
					switch res.Status {
					case doctor.StatusFail:
						icon = "❌"
					case doctor.StatusWarn:
						icon = "⚠️ "
					case doctor.StatusSkip:
						icon = "⏩"
					}
					fmt.Fprintf(out, "%s %-15s: %s\n", icon, res.Name, res.Message)
					if res.Detail != "" {
						fmt.Fprintf(out, "    %s\n", res.Detail)
					}
				}
			}

			if !diag.Healthy() {
				return errDoctorFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}

func configCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write config.yaml",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one key in config.yaml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			home := flags.home
			if home == "" {
				home = config.HomeDir()
			}
			if err := config.SetValue(home, args[0], args[1]); err != nil {
				if errors.Is(err, config.ErrUnknownKey) {
					keys := config.Keys()
					sort.Strings(keys)
					return fmt.Errorf("%w (known keys: %s)", err, strings.Join(keys, ", "))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config.yaml location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := flags.home
			if home == "" {
				home = config.HomeDir()
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath(home))
			return nil
		},
	})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "goboard", Version)
		},
	}
}
