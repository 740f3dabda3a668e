package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates a document, or is a no-op if it already exists.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		scope  string
	)

	cmd := &cobra.Command{
		Use:   "init <document-id>",
		Short: "Create a document",
		Long:  "Create a document at revision zero. Re-running on an existing document is a no-op.",
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

			if err := eng.CreateDocument(cmd.Context(), args[0], scope); err != nil {
				return WrapExitError(ExitFailure, "creating document", err)
			}

			doc, err := eng.Document(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "reading document", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Successf(doc, "document %s at revision %d", doc.ID, doc.HeadRevision)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	cmd.Flags().StringVar(&scope, "scope", "", "document scope")

	return cmd
}
