package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/harness"
)

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play <scenario.yaml>",
		Short: "Run a scenario against the database",
		Long: `Run a scenario's steps through a session bound to the configured
database. Unlike "test", the writes are kept.

Exit codes:
  0 - All steps and assertions held
  1 - A step or assertion failed
  2 - Command error (unreadable scenario, database error, etc.)

Example:
  recipeata play --db ./demo.db scenarios/weeknight.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := harness.LoadScenario(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load scenario", err)
			}

			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := harness.RunOn(contextOf(cmd), e.store, scenario, harness.WithLogger(e.logger))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to run scenario", err)
			}

			if err := e.out.Render(result, func(w io.Writer) { writeTrace(w, scenario.Name, result) }); err != nil {
				return err
			}
			if !result.Pass {
				return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
			}
			return nil
		},
	}
}

func writeTrace(w io.Writer, name string, result *harness.Result) {
	fmt.Fprintf(w, "%s\n", name)
	for _, ev := range result.Trace {
		fmt.Fprintf(w, "  [%d] %s", ev.Seq, ev.Op)
		if ev.Target != "" {
			fmt.Fprintf(w, " %s", ev.Target)
		}
		if ev.Description != "" {
			fmt.Fprintf(w, "  %s", ev.Description)
		}
		if ev.Error != "" {
			fmt.Fprintf(w, "  error: %s", ev.Error)
		}
		fmt.Fprintf(w, "  (undo %d, redo %d)\n", ev.Undo, ev.Redo)
	}
	if result.Pass {
		fmt.Fprintln(w, "✓ passed")
		return
	}
	fmt.Fprintln(w, "✗ failed")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
