package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/paginate"
	"github.com/roach88/recipeata/internal/recipe"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Author string
	Store  string
	Tag    string
	Fuzzy  bool
	Sort   string
	Page   int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Search recipes by keyword, author, store or tag",
		Long: `Search recipes. Keywords match titles and descriptions after width,
kana and case folding, so "ｶﾚｰ" finds "カレー".

Examples:
  recipeata search curry
  recipeata search --tag dinner --sort likes
  recipeata search crry --fuzzy`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", "", "author name contains")
	cmd.Flags().StringVar(&opts.Store, "store", "", "author store contains")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "has this tag")
	cmd.Flags().BoolVar(&opts.Fuzzy, "fuzzy", false, "fuzzy keyword matching (default from config)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "newest", "sort order (newest|oldest|likes)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")

	return cmd
}

func runSearch(opts *SearchOptions, keyword string, cmd *cobra.Command) error {
	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	fuzzy := e.cfg.Search.Fuzzy
	if cmd.Flags().Changed("fuzzy") {
		fuzzy = opts.Fuzzy
	}

	ctx := contextOf(cmd)
	sess, err := e.session(ctx)
	if err != nil {
		return err
	}
	found, err := sess.Search(ctx, recipe.Filter{
		Keyword: keyword,
		Author:  opts.Author,
		Store:   opts.Store,
		Tag:     opts.Tag,
		Fuzzy:   fuzzy,
		Sort:    recipe.ParseSortBy(opts.Sort),
	})
	if err != nil {
		return e.fail("search failed", err)
	}

	pg := paginate.Slice(found, opts.Page, e.cfg.Display.RecipesPerPage)
	e.logger.Debug("search finished", "keyword", keyword, "fuzzy", fuzzy, "matches", pg.Total)
	return e.out.Render(pg, func(w io.Writer) {
		writeRecipeTable(w, pg.Items, e.cfg.Display.ShowAuthor, e.cfg.Display.ShowTags)
		writePageFooter(w, pg.Page, pg.TotalPages, pg.Total)
	})
}
