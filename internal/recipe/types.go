package recipe

import (
	"slices"
	"time"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// Step is one cooking step with an optional photo.
type Step struct {
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// SubImage is an extra photo shown under the main image.
type SubImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Author identifies who created a recipe or comment.
type Author struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL,omitempty"`
	Store    string `json:"store,omitempty"`
}

// Like records one user's like on a recipe.
type Like struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	UserPhotoURL string `json:"userPhotoURL,omitempty"`
}

// Comment is a top-level comment or a reply. Replies are one level deep.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedBy Author    `json:"createdBy"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Comment `json:"replies,omitempty"`
}

// Editor attributes a history entry. Unknown fields are empty strings.
type Editor struct {
	Name   string `json:"name"`
	Store  string `json:"store"`
	UserID string `json:"userId"`
}

// Content is the user-editable part of a recipe. It is what the diff engine
// compares and what a rollback restores.
type Content struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	MainImageURL string       `json:"mainImageUrl"`
	Ingredients  []Ingredient `json:"ingredients"`
	Steps        []Step       `json:"steps"`
	Advice       string       `json:"advice,omitempty"`
	Tags         []string     `json:"tags"`
	CookingTime  int          `json:"cookingTime"`
	Servings     int          `json:"servings"`
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	c.Ingredients = slices.Clone(c.Ingredients)
	c.Steps = slices.Clone(c.Steps)
	c.Tags = slices.Clone(c.Tags)
	return c
}

// Recipe is a stored recipe document.
type Recipe struct {
	ID string `json:"id"`
	Content
	SubImages   []SubImage           `json:"subImages"`
	CreatedByID string               `json:"createdById"`
	CreatedBy   Author               `json:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Likes       []Like               `json:"likes"`
	Comments    []Comment            `json:"comments"`
	ViewedAt    map[string]time.Time `json:"viewedAt,omitempty"`
	History     []HistoryEntry       `json:"history,omitempty"`
}

// Snapshot returns a deep copy of r without its history, as stored on a
// history entry.
func (r Recipe) Snapshot() Recipe {
	s := r
	s.Content = r.Content.Clone()
	s.SubImages = slices.Clone(r.SubImages)
	s.Likes = slices.Clone(r.Likes)
	s.Comments = cloneComments(r.Comments)
	if r.ViewedAt != nil {
		s.ViewedAt = make(map[string]time.Time, len(r.ViewedAt))
		for k, v := range r.ViewedAt {
			s.ViewedAt[k] = v
		}
	}
	s.History = nil
	return s
}

func cloneComments(in []Comment) []Comment {
	if in == nil {
		return nil
	}
	out := make([]Comment, len(in))
	for i, c := range in {
		out[i] = c
		out[i].Replies = cloneComments(c.Replies)
	}
	return out
}

// LikeCount returns the number of likes on r.
func (r Recipe) LikeCount() int { return len(r.Likes) }

// LikedBy reports whether userID has liked r.
func (r Recipe) LikedBy(userID string) bool {
	return slices.ContainsFunc(r.Likes, func(l Like) bool { return l.UserID == userID })
}

// FindComment returns the comment or reply with the given id.
func (r Recipe) FindComment(id string) (Comment, bool) {
	for _, c := range r.Comments {
		if c.ID == id {
			return c, true
		}
		for _, reply := range c.Replies {
			if reply.ID == id {
				return reply, true
			}
		}
	}
	return Comment{}, false
}

// CommentCount counts comments including replies.
func (r Recipe) CommentCount() int {
	n := len(r.Comments)
	for _, c := range r.Comments {
		n += len(c.Replies)
	}
	return n
}

// DefaultHistoryLimit is how many history entries a recipe keeps.
const DefaultHistoryLimit = 10

// HistoryEntry is one revision in a recipe's capped history list.
type HistoryEntry struct {
	EditedAt     time.Time `json:"editedAt"`
	EditedBy     Editor    `json:"editedBy"`
	Diff         Revision  `json:"diff"`
	Snapshot     Recipe    `json:"snapshot"`
	SnapshotHash string    `json:"snapshotHash,omitempty"`
}

// Profile is the editable part of a user record.
type Profile struct {
	Name     string `json:"name"`
	Store    string `json:"store"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// Role values for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an application user with their pinned and favorite recipes.
type User struct {
	ID        string   `json:"id"`
	Profile
	Role      string   `json:"role"`
	Favorites []string `json:"favorites"`
	Pins      []string `json:"pins"`
}

// Editor returns the attribution for edits made by u.
func (u User) Editor() Editor {
	return Editor{Name: u.Name, Store: u.Store, UserID: u.ID}
}

// Author returns the author block for content created by u.
func (u User) Author() Author {
	return Author{Name: u.Name, PhotoURL: u.PhotoURL, Store: u.Store}
}

// Like returns the like record u leaves on a recipe.
func (u User) Like() Like {
	return Like{UserID: u.ID, UserName: u.Name, UserPhotoURL: u.PhotoURL}
}
