package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
	"github.com/smokyabdulrahman/prayer-tracker/internal/store"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the attendance log",
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every logged day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the attendance log without --yes")
			}
			db, err := openStore(cmd.Context(), effectiveConfig(cmd))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Attendance log cleared.")
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	cmd.AddCommand(reset)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the attendance database path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := effectiveConfig(cmd).DataDir
			if dir == "" {
				d, err := store.DefaultDir()
				if err != nil {
					return err
				}
				dir = d
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, store.FileName))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print every logged day as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd.Context(), effectiveConfig(cmd))
			if err != nil {
				return err
			}
			defer db.Close()
			days, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			if days == nil {
				days = []attendance.Day{}
			}
			return writeJSON(cmd.OutOrStdout(), days)
		},
	})

	return cmd
}
