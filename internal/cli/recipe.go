package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/paginate"
	"github.com/roach88/recipeata/internal/recipe"
)

// NewRecipeCommand creates the recipe command group.
func NewRecipeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Add, show, edit and delete recipes",
	}
	cmd.AddCommand(newRecipeAddCommand(rootOpts))
	cmd.AddCommand(newRecipeGetCommand(rootOpts))
	cmd.AddCommand(newRecipeListCommand(rootOpts))
	cmd.AddCommand(newRecipeEditCommand(rootOpts))
	cmd.AddCommand(newRecipeDeleteCommand(rootOpts))
	cmd.AddCommand(newRecipeLikeCommand(rootOpts))
	return cmd
}

// contentFlags are the recipe fields settable from the command line.
type contentFlags struct {
	File         string
	Title        string
	Description  string
	MainImageURL string
	Advice       string
	Ingredients  []string // "name=quantity"
	Steps        []string
	Tags         []string
	CookingTime  int
	Servings     int
}

func (f *contentFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.File, "file", "", "read content from a JSON file")
	fl.StringVar(&f.Title, "title", "", "recipe title")
	fl.StringVar(&f.Description, "description", "", "description")
	fl.StringVar(&f.MainImageURL, "image", "", "main image URL")
	fl.StringVar(&f.Advice, "advice", "", "cooking advice")
	fl.StringArrayVar(&f.Ingredients, "ingredient", nil, "ingredient as name=quantity (repeatable)")
	fl.StringArrayVar(&f.Steps, "step", nil, "cooking step (repeatable)")
	fl.StringSliceVar(&f.Tags, "tag", nil, "tag (repeatable or comma separated)")
	fl.IntVar(&f.CookingTime, "cooking-time", 0, "cooking time in minutes")
	fl.IntVar(&f.Servings, "servings", 0, "number of servings")
}

// patch returns the fields whose flags were set, layered over the file
// content when --file is given.
func (f *contentFlags) patch(cmd *cobra.Command) (recipe.Patch, error) {
	var p recipe.Patch
	if f.File != "" {
		c, err := readContent(f.File)
		if err != nil {
			return recipe.Patch{}, err
		}
		p = recipe.FullPatch(c)
	}

	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = recipe.String(f.Title)
	}
	if changed("description") {
		p.Description = recipe.String(f.Description)
	}
	if changed("image") {
		p.MainImageURL = recipe.String(f.MainImageURL)
	}
	if changed("advice") {
		p.Advice = recipe.String(f.Advice)
	}
	if changed("ingredient") {
		list, err := parseIngredients(f.Ingredients)
		if err != nil {
			return recipe.Patch{}, err
		}
		p.Ingredients = &list
	}
	if changed("step") {
		list := make([]recipe.Step, len(f.Steps))
		for i, s := range f.Steps {
			list[i] = recipe.Step{Description: s}
		}
		p.Steps = &list
	}
	if changed("tag") {
		p.Tags = recipe.Tags(f.Tags...)
	}
	if changed("cooking-time") {
		p.CookingTime = recipe.Int(f.CookingTime)
	}
	if changed("servings") {
		p.Servings = recipe.Int(f.Servings)
	}
	return p, nil
}

func parseIngredients(specs []string) ([]recipe.Ingredient, error) {
	out := make([]recipe.Ingredient, 0, len(specs))
	for _, s := range specs {
		name, qty, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid ingredient %q: want name=quantity", s))
		}
		out = append(out, recipe.Ingredient{Name: strings.TrimSpace(name), Quantity: strings.TrimSpace(qty)})
	}
	return out, nil
}

// readContent loads recipe content from a JSON file.
func readContent(path string) (recipe.Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recipe.Content{}, WrapExitError(ExitCommandError, "failed to read content file", err)
	}
	var c recipe.Content
	if err := json.Unmarshal(data, &c); err != nil {
		return recipe.Content{}, WrapExitError(ExitCommandError, fmt.Sprintf("failed to parse %s", path), err)
	}
	return c, nil
}

func newRecipeAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &contentFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Long: `Add a recipe authored by the configured user.

Examples:
  recipeata recipe add --title "Curry" --ingredient rice="1 cup" --step simmer --tag dinner
  recipeata recipe add --file curry.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd)
			if err != nil {
				return err
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
			r, err := sess.Actions.AddRecipe(ctx, p.Apply(recipe.Content{}), nil)
			if err != nil {
				return e.fail("failed to add recipe", err)
			}
			return e.out.Render(r, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s %q\n", r.ID, r.Title)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRecipeGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a recipe",
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
			r, err := e.store.GetRecipe(ctx, args[0])
			if err != nil {
				return e.fail("failed to read recipe", err)
			}
			if err := e.store.RecordView(ctx, r.ID, e.cfg.User.ID); err != nil {
				e.logger.Warn("failed to record view", "recipe_id", r.ID, "error", err)
			}
			return e.out.Render(r, func(w io.Writer) { writeRecipe(w, r, e.cfg.Display.ShowAuthor) })
		},
	}
}

func writeRecipe(w io.Writer, r recipe.Recipe, showAuthor bool) {
	fmt.Fprintf(w, "%s  %s\n", r.ID, r.Title)
	if showAuthor && r.CreatedBy.Name != "" {
		fmt.Fprintf(w, "by %s", r.CreatedBy.Name)
		if r.CreatedBy.Store != "" {
			fmt.Fprintf(w, " (%s)", r.CreatedBy.Store)
		}
		fmt.Fprintln(w)
	}
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", r.Description)
	}
	if r.CookingTime > 0 || r.Servings > 0 {
		fmt.Fprintf(w, "\n%d min, serves %d\n", r.CookingTime, r.Servings)
	}
	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		width := 0
		for _, in := range r.Ingredients {
			width = max(width, runewidth.StringWidth(in.Name))
		}
		for _, in := range r.Ingredients {
			fmt.Fprintf(w, "  %s  %s\n", runewidth.FillRight(in.Name, width), in.Quantity)
		}
	}
	if len(r.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for i, s := range r.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s.Description)
		}
	}
	if r.Advice != "" {
		fmt.Fprintf(w, "\nAdvice: %s\n", r.Advice)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "\nTags: %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(w, "\nLikes: %d  Comments: %d  Revisions: %d\n", r.LikeCount(), r.CommentCount(), len(r.History))
	for _, c := range r.Comments {
		fmt.Fprintf(w, "  %s [%s] %s\n", c.CreatedBy.Name, c.ID, c.Text)
		for _, reply := range c.Replies {
			fmt.Fprintf(w, "    %s [%s] %s\n", reply.CreatedBy.Name, reply.ID, reply.Text)
		}
	}
}

// titleWidth bounds the title column of recipe tables.
const titleWidth = 32

// writeRecipeTable lists recipes one per line with aligned columns.
// Widths are measured in terminal cells so CJK titles line up.
func writeRecipeTable(w io.Writer, recipes []recipe.Recipe, showAuthor, showTags bool) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return
	}
	idWidth := 0
	for _, r := range recipes {
		idWidth = max(idWidth, runewidth.StringWidth(r.ID))
	}
	for _, r := range recipes {
		title := runewidth.FillRight(runewidth.Truncate(r.Title, titleWidth, "…"), titleWidth)
		line := fmt.Sprintf("%s  %s  ♥%d", runewidth.FillRight(r.ID, idWidth), title, r.LikeCount())
		if showAuthor && r.CreatedBy.Name != "" {
			line += "  " + r.CreatedBy.Name
		}
		if showTags && len(r.Tags) > 0 {
			line += "  #" + strings.Join(r.Tags, " #")
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func newRecipeListCommand(rootOpts *RootOptions) *cobra.Command {
	var author string
	var page, limit int
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List recipes, newest first",
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
			var recipes []recipe.Recipe
			if author != "" {
				recipes, err = e.store.ListRecipesByAuthor(ctx, author)
			} else {
				recipes, err = e.store.ListRecipes(ctx, limit)
			}
			if err != nil {
				return e.fail("failed to list recipes", err)
			}

			pg := paginate.Slice(recipes, page, e.cfg.Display.RecipesPerPage)
			return e.out.Render(pg, func(w io.Writer) {
				writeRecipeTable(w, pg.Items, e.cfg.Display.ShowAuthor, e.cfg.Display.ShowTags)
				writePageFooter(w, pg.Page, pg.TotalPages, pg.Total)
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "only recipes created by this user id")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum recipes to read (default 50)")
	return cmd
}

func writePageFooter(w io.Writer, page, totalPages, total int) {
	if totalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%d total)\n", page, totalPages, total)
	}
}

func newRecipeEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &contentFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recipe and record the change in its history",
		Long: `Edit a recipe. Only the fields given by flags change.

Example:
  recipeata recipe edit r-1 --title "Red Curry" --tag dinner,spicy`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if p.IsZero() {
				return NewExitError(ExitCommandError, "nothing to edit: set at least one field flag")
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
			diff, changed, err := sess.Actions.EditRecipe(ctx, args[0], p)
			if err != nil {
				return e.fail("failed to edit recipe", err)
			}
			result := struct {
				Changed bool        `json:"changed"`
				Diff    recipe.Diff `json:"diff"`
			}{changed, diff}
			return e.out.Render(result, func(w io.Writer) {
				if !changed {
					fmt.Fprintln(w, "No changes.")
					return
				}
				writeDiff(w, diff)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRecipeDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a recipe",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.cfg.ConfirmDelete && !yes {
				return NewExitError(ExitCommandError, "confirm_delete is set: pass --yes to delete")
			}

			ctx := contextOf(cmd)
			sess, err := e.session(ctx)
			if err != nil {
				return err
			}
			if err := sess.Actions.DeleteRecipe(ctx, args[0]); err != nil {
				return e.fail("failed to delete recipe", err)
			}
			return e.out.Render(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the delete confirmation")
	return cmd
}

func newRecipeLikeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "like <id>",
		Short:         "Toggle the configured user's like on a recipe",
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
			liked, err := sess.Actions.Like(ctx, args[0])
			if err != nil {
				return e.fail("failed to like recipe", err)
			}
			return e.out.Render(map[string]bool{"liked": liked}, func(w io.Writer) {
				if liked {
					fmt.Fprintf(w, "Liked %s\n", args[0])
				} else {
					fmt.Fprintf(w, "Unliked %s\n", args[0])
				}
			})
		},
	}
}
