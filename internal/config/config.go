// Package config loads recipeata settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recipeata/internal/paginate"
	"github.com/roach88/recipeata/internal/recipe"
)

// DefaultDatabase is the database path used when none is configured.
const DefaultDatabase = "recipeata.db"

// Config holds application settings. Zero-valued fields in a file keep
// their defaults.
type Config struct {
	Database      string        `yaml:"database"`
	HistoryLimit  int           `yaml:"history_limit"`
	User          User          `yaml:"user"`
	Display       Display       `yaml:"display"`
	Search        Search        `yaml:"search"`
	Notifications Notifications `yaml:"notifications"`
	ConfirmDelete bool          `yaml:"confirm_delete"`
}

// User is the identity the CLI acts as.
type User struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Store    string `yaml:"store"`
	PhotoURL string `yaml:"photo_url"`
}

// Display controls list sizes.
type Display struct {
	RecipesPerPage  int  `yaml:"recipes_per_page"`
	CommentsPerPage int  `yaml:"comments_per_page"`
	HistoryPerPage  int  `yaml:"history_per_page"`
	ShowImages      bool `yaml:"show_images"`
	ShowTags        bool `yaml:"show_tags"`
	ShowAuthor      bool `yaml:"show_author"`
}

// Search controls keyword matching.
type Search struct {
	Fuzzy bool `yaml:"fuzzy"`
}

// Notifications toggles which actions are announced.
type Notifications struct {
	RecipeAdded     bool `yaml:"recipe_added"`
	RecipeEdited    bool `yaml:"recipe_edited"`
	RecipeLiked     bool `yaml:"recipe_liked"`
	RecipeCommented bool `yaml:"recipe_commented"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:     DefaultDatabase,
		HistoryLimit: recipe.DefaultHistoryLimit,
		User: User{
			ID:   "local",
			Name: "local",
		},
		Display: Display{
			RecipesPerPage:  12,
			CommentsPerPage: paginate.DefaultPerPage,
			HistoryPerPage:  paginate.DefaultPerPage,
			ShowImages:      true,
			ShowTags:        true,
			ShowAuthor:      true,
		},
		Search: Search{Fuzzy: true},
		Notifications: Notifications{
			RecipeAdded:     true,
			RecipeEdited:    true,
			RecipeLiked:     true,
			RecipeCommented: true,
		},
		ConfirmDelete: true,
	}
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Parse(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg. Keys absent from data leave cfg's
// values untouched.
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg.Validate()
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit))
	}
	if c.User.ID == "" {
		errs = append(errs, errors.New("user.id must not be empty"))
	}
	for name, n := range map[string]int{
		"display.recipes_per_page":  c.Display.RecipesPerPage,
		"display.comments_per_page": c.Display.CommentsPerPage,
		"display.history_per_page":  c.Display.HistoryPerPage,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, n))
		}
	}
	return errors.Join(errs...)
}

// RecipeUser returns the configured identity as a recipe user.
func (c Config) RecipeUser() recipe.User {
	return recipe.User{
		ID: c.User.ID,
		Profile: recipe.Profile{
			Name:     c.User.Name,
			Store:    c.User.Store,
			PhotoURL: c.User.PhotoURL,
		},
		Role: recipe.RoleUser,
	}
}
