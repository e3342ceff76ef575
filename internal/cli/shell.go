package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/progress"
	"github.com/roach88/recipeata/internal/paginate"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/session"
)

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with undo and redo",
		Long: `Start an interactive session as the configured user. Every action taken
in the shell goes on one undo stack, so "undo" and "redo" walk back and
forth through the session. Type "help" for the command list.

Commands are read one per line from standard input, so a session can be
scripted:
  printf 'add Curry\nlike id-1\nundo\n' | recipeata shell --db demo.db`,
		Args:          cobra.NoArgs,
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
			sh := newShell(e, sess, cmd.InOrStdin(), cmd.OutOrStdout())
			return sh.run(ctx)
		},
	}
}

var errQuit = errors.New("quit")

type shellCommand struct {
	usage string
	help  string
	nargs int // minimum argument count
	run   func(ctx context.Context, args []string) error
}

type shell struct {
	e           *env
	sess        *session.Session
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
	commands    map[string]shellCommand
	order       []string

	prompt lipgloss.Style
	notice lipgloss.Style
	failed lipgloss.Style
	muted  lipgloss.Style
}

func newShell(e *env, sess *session.Session, in io.Reader, out io.Writer) *shell {
	r := lipgloss.NewRenderer(out)
	sh := &shell{
		e:           e,
		sess:        sess,
		in:          bufio.NewScanner(in),
		out:         out,
		interactive: isTerminal(in),
		prompt:      r.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
		notice:      r.NewStyle().Foreground(lipgloss.Color("#bbf7d0")),
		failed:      r.NewStyle().Foreground(lipgloss.Color("#fca5a5")),
		muted:       r.NewStyle().Foreground(lipgloss.Color("#71717a")),
	}
	sh.register()
	return sh
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (sh *shell) add(name, usage, help string, nargs int, run func(ctx context.Context, args []string) error) {
	sh.commands[name] = shellCommand{usage: usage, help: help, nargs: nargs, run: run}
	sh.order = append(sh.order, name)
}

func (sh *shell) register() {
	sh.commands = make(map[string]shellCommand)
	sh.add("add", "add <title...>", "add a recipe with a title", 1, sh.addRecipe)
	sh.add("edit", "edit <id> <field> <value...>", "edit title, description, advice, image, tags, cooking-time or servings", 3, sh.editRecipe)
	sh.add("delete", "delete <id>", "delete a recipe", 1, sh.deleteRecipe)
	sh.add("rollback", "rollback <id> <index>", "restore the content a revision replaced", 2, sh.rollback)
	sh.add("like", "like <id>", "like or unlike a recipe", 1, sh.like)
	sh.add("comment", "comment <id> <text...>", "comment on a recipe", 2, sh.comment)
	sh.add("reply", "reply <id> <comment-id> <text...>", "reply to a comment", 3, sh.reply)
	sh.add("uncomment", "uncomment <id> <comment-id>", "delete a comment or reply", 2, sh.uncomment)
	sh.add("pin", "pin <id>", "pin a recipe", 1, sh.userList(func(ctx context.Context, id string) error { return sh.sess.Actions.Pin(ctx, id) }))
	sh.add("unpin", "unpin <id>", "unpin a recipe", 1, sh.userList(func(ctx context.Context, id string) error { return sh.sess.Actions.Unpin(ctx, id) }))
	sh.add("fav", "fav <id>", "add a recipe to favorites", 1, sh.userList(func(ctx context.Context, id string) error { return sh.sess.Actions.Favorite(ctx, id) }))
	sh.add("unfav", "unfav <id>", "remove a recipe from favorites", 1, sh.userList(func(ctx context.Context, id string) error { return sh.sess.Actions.Unfavorite(ctx, id) }))
	sh.add("profile", "profile <name> [store]", "change your name and store", 1, sh.profile)
	sh.add("undo", "undo", "undo the last action", 0, sh.undo)
	sh.add("redo", "redo", "redo the last undone action", 0, sh.redo)
	sh.add("stack", "stack [page]", "list the undo stack, newest first", 0, sh.stack)
	sh.add("progress", "progress", "show which action kinds have been undone", 0, sh.progress)
	sh.add("show", "show <id>", "show a recipe", 1, sh.show)
	sh.add("list", "list [page]", "list recipes, newest first", 0, sh.list)
	sh.add("search", "search <keyword...>", "search recipes", 1, sh.search)
	sh.add("help", "help", "show this list", 0, sh.help)
	sh.add("quit", "quit", "leave the shell", 0, func(context.Context, []string) error { return errQuit })
	sh.commands["exit"] = sh.commands["quit"]
}

func (sh *shell) run(ctx context.Context) error {
	if sh.interactive {
		fmt.Fprintf(sh.out, "Signed in as %s. Type \"help\" for commands.\n", sh.sess.User().Name)
	}
	for {
		if sh.interactive {
			fmt.Fprint(sh.out, sh.prompt.Render("recipeata> "))
		}
		line, ok := sh.readLine()
		if !ok {
			break
		}
		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(sh.out, sh.failed.Render("error: "+err.Error()))
		}
	}
	if err := sh.in.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

func (sh *shell) readLine() (string, bool) {
	if !sh.in.Scan() {
		return "", false
	}
	return sh.in.Text(), true
}

// exec runs one input line. Blank lines and lines starting with # are
// skipped.
func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := fields[0], fields[1:]
	c, ok := sh.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try \"help\")", name)
	}
	if len(args) < c.nargs {
		return fmt.Errorf("usage: %s", c.usage)
	}
	sh.e.logger.Debug("shell command", "command", name, "args", len(args))
	return c.run(ctx, args)
}

func (sh *shell) notify(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintln(sh.out, sh.notice.Render(fmt.Sprintf(format, args...)))
}

func (sh *shell) addRecipe(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	r, err := sh.sess.Actions.AddRecipe(ctx, recipe.Content{Title: title}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Added %s %q\n", r.ID, r.Title)
	sh.notify(sh.e.cfg.Notifications.RecipeAdded, "New recipe: %s", r.Title)
	return nil
}

// fieldPatch builds a one-field patch from shell arguments.
func fieldPatch(field string, value []string) (recipe.Patch, error) {
	text := strings.Join(value, " ")
	var p recipe.Patch
	switch field {
	case "title":
		p.Title = recipe.String(text)
	case "description":
		p.Description = recipe.String(text)
	case "advice":
		p.Advice = recipe.String(text)
	case "image":
		p.MainImageURL = recipe.String(text)
	case "tags":
		var tags []string
		for _, t := range strings.Split(text, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		p.Tags = recipe.Tags(tags...)
	case "cooking-time", "servings":
		n, err := strconv.Atoi(text)
		if err != nil {
			return recipe.Patch{}, fmt.Errorf("%s: want a number, got %q", field, text)
		}
		if field == "servings" {
			p.Servings = recipe.Int(n)
		} else {
			p.CookingTime = recipe.Int(n)
		}
	default:
		return recipe.Patch{}, fmt.Errorf("unknown field %q", field)
	}
	return p, nil
}

func (sh *shell) editRecipe(ctx context.Context, args []string) error {
	p, err := fieldPatch(args[1], args[2:])
	if err != nil {
		return err
	}
	diff, changed, err := sh.sess.Actions.EditRecipe(ctx, args[0], p)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(sh.out, "No changes.")
		return nil
	}
	writeDiff(sh.out, diff)
	sh.notify(sh.e.cfg.Notifications.RecipeEdited, "Edited %s", args[0])
	return nil
}

func (sh *shell) deleteRecipe(ctx context.Context, args []string) error {
	if sh.e.cfg.ConfirmDelete {
		fmt.Fprintf(sh.out, "Delete %s? [y/N] ", args[0])
		answer, _ := sh.readLine()
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(sh.out, "Cancelled.")
			return nil
		}
	}
	if err := sh.sess.Actions.DeleteRecipe(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Deleted %s\n", args[0])
	return nil
}

func (sh *shell) rollback(ctx context.Context, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[1])
	}
	r, err := sh.sess.Actions.Rollback(ctx, args[0], index)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Rolled back %s to %q\n", r.ID, r.Title)
	sh.notify(sh.e.cfg.Notifications.RecipeEdited, "Edited %s", r.ID)
	return nil
}

func (sh *shell) like(ctx context.Context, args []string) error {
	liked, err := sh.sess.Actions.Like(ctx, args[0])
	if err != nil {
		return err
	}
	if !liked {
		fmt.Fprintf(sh.out, "Unliked %s\n", args[0])
		return nil
	}
	fmt.Fprintf(sh.out, "Liked %s\n", args[0])
	sh.notify(sh.e.cfg.Notifications.RecipeLiked, "%s liked %s", sh.sess.User().Name, args[0])
	return nil
}

func (sh *shell) comment(ctx context.Context, args []string) error {
	return sh.postComment(ctx, args[0], "", args[1:])
}

func (sh *shell) reply(ctx context.Context, args []string) error {
	return sh.postComment(ctx, args[0], args[1], args[2:])
}

func (sh *shell) postComment(ctx context.Context, recipeID, parentID string, words []string) error {
	c, err := sh.sess.Actions.AddComment(ctx, recipeID, strings.Join(words, " "), parentID)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Commented %s on %s\n", c.ID, recipeID)
	sh.notify(sh.e.cfg.Notifications.RecipeCommented, "%s commented on %s", sh.sess.User().Name, recipeID)
	return nil
}

func (sh *shell) uncomment(ctx context.Context, args []string) error {
	if err := sh.sess.Actions.DeleteComment(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Deleted comment %s\n", args[1])
	return nil
}

// userList wraps a pin or favorite action so it prints the stack's
// description.
func (sh *shell) userList(fn func(ctx context.Context, id string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if err := fn(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, sh.sess.Stack.LastActionDescription())
		return nil
	}
}

func (sh *shell) profile(ctx context.Context, args []string) error {
	p := sh.sess.User().Profile
	p.Name = args[0]
	if len(args) > 1 {
		p.Store = strings.Join(args[1:], " ")
	}
	u, err := sh.sess.Actions.EditProfile(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Profile: %s", u.Name)
	if u.Store != "" {
		fmt.Fprintf(sh.out, " (%s)", u.Store)
	}
	fmt.Fprintln(sh.out)
	return nil
}

func (sh *shell) undo(ctx context.Context, _ []string) error {
	cmd, ok, err := sh.sess.Undo(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(sh.out, "Nothing to undo.")
		return nil
	}
	fmt.Fprintf(sh.out, "Undid: %s\n", cmd.Description)
	return nil
}

func (sh *shell) redo(ctx context.Context, _ []string) error {
	cmd, ok, err := sh.sess.Redo(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(sh.out, "Nothing to redo.")
		return nil
	}
	fmt.Fprintf(sh.out, "Redid: %s\n", cmd.Description)
	return nil
}

// pageArg parses an optional page number argument.
func pageArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", args[0])
	}
	return n, nil
}

func (sh *shell) stack(_ context.Context, args []string) error {
	page, err := pageArg(args)
	if err != nil {
		return err
	}
	pg := sh.sess.Stack.Page(page, sh.e.cfg.Display.HistoryPerPage)
	if pg.Total == 0 {
		fmt.Fprintln(sh.out, "Undo stack is empty.")
		return nil
	}
	for _, c := range pg.Items {
		fmt.Fprintf(sh.out, "%s  %s  %s\n",
			sh.muted.Render(c.CreatedAt.Format("15:04:05")), c.Kind.Label(), c.Description)
	}
	writePageFooter(sh.out, pg.Page, pg.TotalPages, pg.Total)
	if redo := len(sh.sess.Stack.RedoStack()); redo > 0 {
		fmt.Fprintf(sh.out, "%d to redo\n", redo)
	}
	return nil
}

func (sh *shell) progress(context.Context, []string) error {
	marks := map[progress.Status]string{
		progress.StatusNotStarted: "[ ]",
		progress.StatusInProgress: "[~]",
		progress.StatusDone:       "[x]",
	}
	for _, entry := range sh.sess.Progress.Entries() {
		fmt.Fprintf(sh.out, "%s %s\n", marks[entry.Status], entry.Label)
	}
	return nil
}

func (sh *shell) show(ctx context.Context, args []string) error {
	r, err := sh.e.store.GetRecipe(ctx, args[0])
	if err != nil {
		return err
	}
	if err := sh.e.store.RecordView(ctx, r.ID, sh.sess.User().ID); err != nil {
		sh.e.logger.Warn("failed to record view", "recipe_id", r.ID, "error", err)
	}
	writeRecipe(sh.out, r, sh.e.cfg.Display.ShowAuthor)
	return nil
}

func (sh *shell) list(ctx context.Context, args []string) error {
	page, err := pageArg(args)
	if err != nil {
		return err
	}
	recipes, err := sh.e.store.ListRecipes(ctx, 0)
	if err != nil {
		return err
	}
	sh.writePage(recipes, page)
	return nil
}

func (sh *shell) search(ctx context.Context, args []string) error {
	found, err := sh.sess.Search(ctx, recipe.Filter{
		Keyword: strings.Join(args, " "),
		Fuzzy:   sh.e.cfg.Search.Fuzzy,
	})
	if err != nil {
		return err
	}
	sh.writePage(found, 1)
	return nil
}

func (sh *shell) writePage(recipes []recipe.Recipe, page int) {
	d := sh.e.cfg.Display
	pg := paginate.Slice(recipes, page, d.RecipesPerPage)
	writeRecipeTable(sh.out, pg.Items, d.ShowAuthor, d.ShowTags)
	writePageFooter(sh.out, pg.Page, pg.TotalPages, pg.Total)
}

func (sh *shell) help(context.Context, []string) error {
	width := 0
	for _, name := range sh.order {
		width = max(width, len(sh.commands[name].usage))
	}
	for _, name := range sh.order {
		c := sh.commands[name]
		fmt.Fprintf(sh.out, "  %-*s  %s\n", width, c.usage, sh.muted.Render(c.help))
	}
	return nil
}
