package undo

// Kind identifies what a command did and selects its handler.
type Kind string

const (
	KindLike         Kind = "like"
	KindPin          Kind = "pin"
	KindFavorite     Kind = "favorite"
	KindAddRecipe    Kind = "add-recipe"
	KindEditRecipe   Kind = "edit-recipe"
	KindDeleteRecipe Kind = "delete-recipe"
	KindComment      Kind = "comment"
	KindProfileEdit  Kind = "profile-edit"
	KindRollback     Kind = "rollback"
)

var kindLabels = map[Kind]string{
	KindLike:         "Like",
	KindPin:          "Pin",
	KindFavorite:     "Favorite",
	KindAddRecipe:    "Add recipe",
	KindEditRecipe:   "Edit recipe",
	KindDeleteRecipe: "Delete recipe",
	KindComment:      "Comment",
	KindProfileEdit:  "Edit profile",
	KindRollback:     "Rollback",
}

// Kinds returns every command kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindLike,
		KindPin,
		KindFavorite,
		KindAddRecipe,
		KindEditRecipe,
		KindDeleteRecipe,
		KindComment,
		KindProfileEdit,
		KindRollback,
	}
}

// Label returns a human readable name for k.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}
