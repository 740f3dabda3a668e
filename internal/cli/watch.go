package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCommand streams a document's committed events until interrupted.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		resume int64
	)

	cmd := &cobra.Command{
		Use:   "watch <document-id>",
		Short: "Stream committed events",
		Long: "Subscribe to a document and print committed events as they land.\n" +
			"With --resume, delivery starts just after the given revision; otherwise only new events are shown.",
		Args: cobra.ExactArgs(1),
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			from := resume
			if from < 0 {
				head, err := st.Head(ctx, args[0])
				if err != nil {
					return WrapExitError(ExitFailure, "reading head", err)
				}
				from = head
			}

			events, err := eng.Subscribe(ctx, args[0], from)
			if err != nil {
				return WrapExitError(ExitFailure, "subscribing", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			for ev := range events {
				if rootOpts.Format == "json" {
					if err := formatter.Success(ev); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	cmd.Flags().Int64Var(&resume, "resume", -1, "resume delivery after this revision (-1 = only new events)")

	return cmd
}
