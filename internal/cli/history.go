package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/paginate"
	"github.com/roach88/recipeata/internal/recipe"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and roll back a recipe's edit history",
	}
	cmd.AddCommand(newHistoryListCommand(rootOpts))
	cmd.AddCommand(newHistoryRollbackCommand(rootOpts))
	return cmd
}

func newHistoryListCommand(rootOpts *RootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list <recipe-id>",
		Short: "List revisions, newest first",
		Long: `List a recipe's revisions, newest first. The index shown is the one
"history rollback" takes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := contextOf(cmd)
			sess, err := e.session(ctx)
			if err != nil {
				return err
			}
			entries, err := sess.History.Entries(ctx, args[0])
			if err != nil {
				return e.fail("failed to read history", err)
			}

			perPage := e.cfg.Display.HistoryPerPage
			pg := paginate.Slice(entries, page, perPage)
			offset := (pg.Page - 1) * pg.PerPage
			return e.out.Render(pg, func(w io.Writer) {
				if pg.Total == 0 {
					fmt.Fprintln(w, "No history.")
					return
				}
				for i, entry := range pg.Items {
					writeHistoryEntry(w, offset+i, entry)
				}
				writePageFooter(w, pg.Page, pg.TotalPages, pg.Total)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func writeHistoryEntry(w io.Writer, index int, entry recipe.HistoryEntry) {
	who := entry.EditedBy.Name
	if who == "" {
		who = entry.EditedBy.UserID
	}
	if entry.EditedBy.Store != "" {
		who += " (" + entry.EditedBy.Store + ")"
	}
	fmt.Fprintf(w, "[%d] %s  %s  was %q\n", index, entry.EditedAt.Format("2006-01-02 15:04"), who, entry.Snapshot.Title)
	if entry.Diff.Note != "" {
		fmt.Fprintf(w, "    %s\n", entry.Diff.Note)
		return
	}
	if entry.Diff.Diff != nil {
		writeIndented(w, "    ", func(iw io.Writer) { writeDiff(iw, *entry.Diff.Diff) })
	}
}

func newHistoryRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rollback <recipe-id> <index>",
		Short:         "Restore the content a revision replaced",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid index", err)
			}
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := contextOf(cmd)
			sess, err := e.session(ctx)
			if err != nil {
				return err
			}
			r, err := sess.Actions.Rollback(ctx, args[0], index)
			if err != nil {
				return e.fail("rollback failed", err)
			}
			return e.out.Render(r, func(w io.Writer) {
				fmt.Fprintf(w, "Rolled back %s to %q\n", r.ID, r.Title)
			})
		},
	}
}

// writeIndented writes what fn writes with prefix before every line.
func writeIndented(w io.Writer, prefix string, fn func(io.Writer)) {
	var buf strings.Builder
	fn(&buf)
	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line != "" {
			io.WriteString(w, prefix+line)
		}
	}
}
