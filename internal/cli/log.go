package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tabula/internal/model"
)

// NewLogCommand prints a document's committed events in revision order.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath  string
		after   int64
		through int64
	)

	cmd := &cobra.Command{
		Use:   "log <document-id>",
		Short: "Print the event log",
		Long:  "Print a document's committed events in revision order, optionally bounded by --after and --through.",
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

			doc, err := eng.Document(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "reading document", err)
			}

			events, err := st.Events(cmd.Context(), doc.ID, after, through)
			if err != nil {
				return WrapExitError(ExitFailure, "reading events", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return formatter.Success(events)
			}
			for _, ev := range events {
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	cmd.Flags().Int64Var(&after, "after", 0, "only events with revision greater than this")
	cmd.Flags().Int64Var(&through, "through", 0, "only events with revision at or below this (0 = head)")

	return cmd
}

// formatEvent renders one event as a single log line.
func formatEvent(ev model.CommittedEvent) string {
	argsJSON, err := model.MarshalCanonical(ev.OpArgs)
	if err != nil {
		argsJSON = []byte("{}")
	}
	return fmt.Sprintf("rev=%d op=%s actor=%s at=%s args=%s",
		ev.Revision, ev.OpKind, ev.Actor, ev.CommittedAt.Format(time.RFC3339Nano), argsJSON)
}
