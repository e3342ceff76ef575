package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recipeata/internal/recipe"
)

func runShell(t *testing.T, db string, lines ...string) string {
	t.Helper()
	out, err := execute(t, strings.Join(lines, "\n")+"\n", "--db", db, "shell")
	require.NoError(t, err)
	return out
}

func TestShell_LikeUndoRedo(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "like r-1", "stack", "undo", "redo", "undo", "progress", "quit")

	assert.Contains(t, out, "Liked r-1\n")
	assert.Contains(t, out, "local liked r-1")
	assert.Contains(t, out, `Like  Liked "Curry"`)
	assert.Contains(t, out, `Undid: Liked "Curry"`)
	assert.Contains(t, out, `Redid: Liked "Curry"`)
	assert.Contains(t, out, "[x] Like\n")
	assert.Contains(t, out, "[ ] Pin\n")
	assert.NotContains(t, out, "recipeata>", "no prompt without a terminal")
}

func TestShell_EmptyStacks(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "undo", "redo", "stack")

	assert.Contains(t, out, "Nothing to undo.")
	assert.Contains(t, out, "Nothing to redo.")
	assert.Contains(t, out, "Undo stack is empty.")
}

func TestShell_EditAndUndo(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "edit r-1 title Red Curry", "undo", "show r-1")

	assert.Contains(t, out, "~ title: {+Red +}Curry")
	assert.Contains(t, out, `Undid: Edited recipe "Red Curry"`)
	assert.Contains(t, out, "r-1  Curry\n")
}

func TestShell_DeleteConfirmation(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "delete r-1", "n", "show r-1")
	assert.Contains(t, out, "Delete r-1? [y/N] Cancelled.")
	assert.Contains(t, out, "r-1  Curry")

	out = runShell(t, db, "delete r-1", "y", "show r-1", "undo", "show r-1")
	assert.Contains(t, out, "Deleted r-1")
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, `Undid: Deleted recipe "Curry"`)
	assert.Contains(t, out, "r-1  Curry")
}

func TestShell_SocialCommands(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db,
		"comment r-1 looks great",
		"pin r-1",
		"fav r-1",
		"unfav r-1",
		"profile Aki Shibuya",
	)

	assert.Contains(t, out, " on r-1\n")
	assert.Contains(t, out, "local commented on r-1")
	assert.Contains(t, out, "Pinned r-1\n")
	assert.Contains(t, out, "Added favorite r-1\n")
	assert.Contains(t, out, "Removed favorite r-1\n")
	assert.Contains(t, out, "Profile: Aki (Shibuya)\n")

	var r recipe.Recipe
	js, err := execute(t, "", "--db", db, "--format", "json", "recipe", "get", "r-1")
	require.NoError(t, err)
	decodeData(t, js, &r)
	require.Len(t, r.Comments, 1)
	assert.Equal(t, "looks great", r.Comments[0].Text)
}

func TestShell_Errors(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "dance", "like", "edit r-1 colour red", "like r-9", "# comment line", "")

	assert.Contains(t, out, `error: unknown command "dance"`)
	assert.Contains(t, out, "error: usage: like <id>")
	assert.Contains(t, out, "error: usage: edit <id> <field> <value...>")
	assert.Contains(t, out, "error: ")
	assert.Equal(t, 4, strings.Count(out, "error: "))
}

func TestShell_EditUnknownField(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "edit r-1 colour is red")
	assert.Contains(t, out, `error: unknown field "colour"`)
}

func TestShell_Help(t *testing.T) {
	db := seedDB(t)
	out := runShell(t, db, "help")
	for _, usage := range []string{"add <title...>", "undo", "redo", "stack [page]", "rollback <id> <index>"} {
		assert.Contains(t, out, usage)
	}
}

func TestFieldPatch(t *testing.T) {
	p, err := fieldPatch("tags", []string{"dinner,", "spicy"})
	require.NoError(t, err)
	require.NotNil(t, p.Tags)
	assert.Equal(t, []string{"dinner", "spicy"}, *p.Tags)

	p, err = fieldPatch("servings", []string{"4"})
	require.NoError(t, err)
	require.NotNil(t, p.Servings)
	assert.Equal(t, 4, *p.Servings)

	_, err = fieldPatch("cooking-time", []string{"soon"})
	assert.Error(t, err)
}
