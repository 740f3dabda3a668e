package cli

import (
	"github.com/spf13/cobra"
)

// NewSnapshotCommand materializes a snapshot at the document's head.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot <document-id>",
		Short: "Write a snapshot at head",
		Long:  "Materialize the document state at its current head revision. Re-running at the same head is a no-op.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts, dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}

			st, eng, err := openEngine(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening store", err)
			}
			defer st.Close()

			snap, err := eng.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "writing snapshot", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Successf(snap, "snapshot at revision %d", snap.Revision)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides config)")

	return cmd
}
