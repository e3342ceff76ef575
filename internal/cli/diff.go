package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/recipe"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Compare two versions of recipe content",
		Long: `Compare two recipe content files the way the edit history does.

Text output marks deletions as [-old-] and insertions as {+new+}.

Example:
  recipeata diff curry-v1.json curry-v2.json
  recipeata diff curry-v1.json curry-v2.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readContent(args[0])
			if err != nil {
				return err
			}
			after, err := readContent(args[1])
			if err != nil {
				return err
			}

			d := recipe.GenerateDiff(before, after)
			return newFormatter(rootOpts, cmd).Render(d, func(w io.Writer) {
				if d.IsEmpty() {
					fmt.Fprintln(w, "No changes.")
					return
				}
				writeDiff(w, d)
			})
		},
	}
}

// writeDiff renders a structured diff one field per line.
func writeDiff(w io.Writer, d recipe.Diff) {
	writeStringChange(w, "title", d.Title)
	writeStringChange(w, "description", d.Description)
	writeStringChange(w, "image", d.MainImageURL)
	writeStringChange(w, "advice", d.Advice)

	for _, in := range d.IngredientsRemoved {
		fmt.Fprintf(w, "- ingredient: %s %s\n", in.Name, in.Quantity)
	}
	for _, in := range d.IngredientsAdded {
		fmt.Fprintf(w, "+ ingredient: %s %s\n", in.Name, in.Quantity)
	}
	for _, s := range d.StepsRemoved {
		fmt.Fprintf(w, "- step: %s\n", s.Description)
	}
	for _, s := range d.StepsAdded {
		fmt.Fprintf(w, "+ step: %s\n", s.Description)
	}
	for _, img := range d.StepImages {
		fmt.Fprintf(w, "~ step %d image: %s -> %s\n", img.Index+1, orNone(img.Before), orNone(img.After))
	}
	if len(d.TagsRemoved) > 0 {
		fmt.Fprintf(w, "- tags: %s\n", strings.Join(d.TagsRemoved, ", "))
	}
	if len(d.TagsAdded) > 0 {
		fmt.Fprintf(w, "+ tags: %s\n", strings.Join(d.TagsAdded, ", "))
	}
	if d.CookingTime != nil {
		fmt.Fprintf(w, "~ cooking time: %d -> %d\n", d.CookingTime.Before, d.CookingTime.After)
	}
	if d.Servings != nil {
		fmt.Fprintf(w, "~ servings: %d -> %d\n", d.Servings.Before, d.Servings.After)
	}
}

func writeStringChange(w io.Writer, field string, c *recipe.Change[string]) {
	if c == nil {
		return
	}
	fmt.Fprintf(w, "~ %s: %s\n", field, inlineDiff(c.Before, c.After))
}

// inlineDiff marks the edited spans of a text change.
func inlineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
