package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tabula/internal/engine"
	"github.com/roach88/tabula/internal/model"
)

// NewSubmitCommand submits a single command against a document.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath         string
		docID          string
		baseRevision   int64
		opKind         string
		argsJSON       string
		actorSpec      string
		commandID      string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a command",
		Long: "Submit a command against a document at a stated base revision.\n" +
			"Conflicts and rejections are reported as outcomes and exit 1; they are not errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if docID == "" {
				return NewExitError(ExitCommandError, "--doc is required")
			}
			if opKind == "" {
				return NewExitError(ExitCommandError, "--op is required")
			}

			opArgs, err := model.ParseObject([]byte(argsJSON))
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing --args", err)
			}

			actor, err := model.ParseActor(actorSpec)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing --actor", err)
			}

			if commandID == "" {
				commandID = rootOpts.Tokens.Generate()
			}
			if idempotencyKey == "" {
				idempotencyKey = rootOpts.Tokens.Generate()
			}

			cfg, err := loadConfig(rootOpts, dbPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading config", err)
			}

			st, eng, err := openEngine(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening store", err)
			}
			defer st.Close()

			env := model.CommandEnvelope{
				CommandID:      commandID,
				DocumentID:     docID,
				BaseRevision:   baseRevision,
				IdempotencyKey: idempotencyKey,
				Actor:          actor,
				OpKind:         opKind,
				OpArgs:         opArgs,
			}

			result, err := eng.Submit(cmd.Context(), env)
			if err != nil {
				return WrapExitError(ExitFailure, "submitting command", err)
			}

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			switch result.Status {
			case engine.StatusCommitted:
				if result.IdempotentReplay {
					return formatter.Successf(result, "committed revision %d (idempotent replay)", result.Revision)
				}
				return formatter.Successf(result, "committed revision %d", result.Revision)
			case engine.StatusConflict:
				if err := formatter.Successf(result, "conflict: head is %d, %d event(s) behind", result.CurrentRevision, len(result.MissingEvents)); err != nil {
					return err
				}
				return NewExitError(ExitFailure, "command conflicted")
			case engine.StatusRejected:
				if err := formatter.Successf(result, "rejected (%s): %s", result.Reason, result.Message); err != nil {
					return err
				}
				return NewExitError(ExitFailure, "command rejected")
			default:
				return NewExitError(ExitFailure, fmt.Sprintf("unexpected submit status %q", result.Status))
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	cmd.Flags().StringVar(&docID, "doc", "", "document ID (required)")
	cmd.Flags().Int64Var(&baseRevision, "base", 0, "base revision the command was built against")
	cmd.Flags().StringVar(&opKind, "op", "", "operation kind (required)")
	cmd.Flags().StringVar(&argsJSON, "args", "{}", "operation arguments as a JSON object")
	cmd.Flags().StringVar(&actorSpec, "actor", "human:cli", "actor as kind:id")
	cmd.Flags().StringVar(&commandID, "command-id", "", "command ID (generated if empty)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "idempotency key (generated if empty)")

	return cmd
}
