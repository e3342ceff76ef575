package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted session: a user, a sequence of operations, and
// assertions over the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// User is the identity the session acts as.
	User UserArgs `yaml:"user"`

	// HistoryLimit overrides the per-recipe history cap when positive.
	HistoryLimit int `yaml:"history_limit,omitempty"`

	// Steps run in order against one session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// UserArgs describes the session user.
type UserArgs struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Store string `yaml:"store,omitempty"`
}

// Step is one session operation.
type Step struct {
	// Op is the operation name, one of the Op* constants.
	Op string `yaml:"op"`

	// As names the recipe or comment a step creates so later steps can
	// refer to it.
	As string `yaml:"as,omitempty"`

	// Recipe refers to a recipe by name (from As) or by literal id.
	Recipe string `yaml:"recipe,omitempty"`

	// Comment refers to a comment by name or id (delete_comment).
	Comment string `yaml:"comment,omitempty"`

	// Parent refers to the comment a reply goes under (add_comment).
	Parent string `yaml:"parent,omitempty"`

	// Text is the comment body (add_comment).
	Text string `yaml:"text,omitempty"`

	// Index selects a visible history entry (rollback).
	Index int `yaml:"index,omitempty"`

	// Content holds recipe fields (add_recipe, edit_recipe). For edits only
	// the fields present are changed.
	Content *ContentArgs `yaml:"content,omitempty"`

	// Profile is the new profile (edit_profile).
	Profile *ProfileArgs `yaml:"profile,omitempty"`

	// Expect checks the step's own outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assert runs assertions right after the step.
	Assert []Assertion `yaml:"assert,omitempty"`
}

// ContentArgs mirrors recipe content with optional fields.
type ContentArgs struct {
	Title        *string           `yaml:"title,omitempty"`
	Description  *string           `yaml:"description,omitempty"`
	MainImageURL *string           `yaml:"main_image_url,omitempty"`
	Advice       *string           `yaml:"advice,omitempty"`
	Ingredients  *[]IngredientArgs `yaml:"ingredients,omitempty"`
	Steps        *[]StepArgs       `yaml:"steps,omitempty"`
	Tags         *[]string         `yaml:"tags,omitempty"`
	CookingTime  *int              `yaml:"cooking_time,omitempty"`
	Servings     *int              `yaml:"servings,omitempty"`
}

// IngredientArgs is one ingredient line.
type IngredientArgs struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

// StepArgs is one cooking step.
type StepArgs struct {
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url,omitempty"`
}

// ProfileArgs is a profile update.
type ProfileArgs struct {
	Name     string `yaml:"name"`
	Store    string `yaml:"store,omitempty"`
	PhotoURL string `yaml:"photo_url,omitempty"`
}

// ExpectClause checks a step's outcome.
type ExpectClause struct {
	// Error is a substring the step's error must contain. When empty the
	// step must succeed.
	Error string `yaml:"error,omitempty"`

	// Changed is the expected changed flag of edit_recipe.
	Changed *bool `yaml:"changed,omitempty"`

	// Liked is the expected state after like.
	Liked *bool `yaml:"liked,omitempty"`

	// Applied is whether undo/redo found a command to apply.
	Applied *bool `yaml:"applied,omitempty"`
}

// Assertion validates trace or state. Which fields apply depends on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// trace_order, trace_count
	Ops   []string `yaml:"ops,omitempty"`
	Op    string   `yaml:"op,omitempty"`
	Count int      `yaml:"count,omitempty"`

	// stack
	Undo            *int    `yaml:"undo,omitempty"`
	Redo            *int    `yaml:"redo,omitempty"`
	LastDescription *string `yaml:"last_description,omitempty"`

	// recipe
	Recipe   string  `yaml:"recipe,omitempty"`
	Exists   *bool   `yaml:"exists,omitempty"`
	Title    *string `yaml:"title,omitempty"`
	Likes    *int    `yaml:"likes,omitempty"`
	Comments *int    `yaml:"comments,omitempty"`
	History  *int    `yaml:"history,omitempty"`
	Tags     *[]string `yaml:"tags,omitempty"`

	// progress
	Key    string `yaml:"key,omitempty"`
	Status string `yaml:"status,omitempty"`

	// user
	Name      *string `yaml:"name,omitempty"`
	Pins      *int    `yaml:"pins,omitempty"`
	Favorites *int    `yaml:"favorites,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceOrder = "trace_order"
	AssertTraceCount = "trace_count"
	AssertStack      = "stack"
	AssertRecipe     = "recipe"
	AssertProgress   = "progress"
	AssertUser       = "user"
)

// Operation names.
const (
	OpAddRecipe     = "add_recipe"
	OpEditRecipe    = "edit_recipe"
	OpDeleteRecipe  = "delete_recipe"
	OpLike          = "like"
	OpAddComment    = "add_comment"
	OpDeleteComment = "delete_comment"
	OpPin           = "pin"
	OpUnpin         = "unpin"
	OpFavorite      = "favorite"
	OpUnfavorite    = "unfavorite"
	OpEditProfile   = "edit_profile"
	OpRollback      = "rollback"
	OpUndo          = "undo"
	OpRedo          = "redo"
)

var knownOps = map[string]bool{
	OpAddRecipe: true, OpEditRecipe: true, OpDeleteRecipe: true, OpLike: true,
	OpAddComment: true, OpDeleteComment: true, OpPin: true, OpUnpin: true,
	OpFavorite: true, OpUnfavorite: true, OpEditProfile: true, OpRollback: true,
	OpUndo: true, OpRedo: true,
}

// needsRecipe lists the ops that act on a recipe.
var needsRecipe = map[string]bool{
	OpEditRecipe: true, OpDeleteRecipe: true, OpLike: true, OpAddComment: true,
	OpDeleteComment: true, OpPin: true, OpUnpin: true, OpFavorite: true,
	OpUnfavorite: true, OpRollback: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
		for j, a := range step.Assert {
			if err := validateAssertion(fmt.Sprintf("steps[%d].assert[%d]", i, j), &a); err != nil {
				return err
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(fmt.Sprintf("assertions[%d]", i), &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step *Step) error {
	if step.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", i)
	}
	if !knownOps[step.Op] {
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	if needsRecipe[step.Op] && step.Recipe == "" {
		return fmt.Errorf("steps[%d]: recipe is required for %s", i, step.Op)
	}

	switch step.Op {
	case OpAddRecipe, OpEditRecipe:
		if step.Content == nil {
			return fmt.Errorf("steps[%d]: content is required for %s", i, step.Op)
		}
	case OpAddComment:
		if step.Text == "" && step.Expect == nil {
			return fmt.Errorf("steps[%d]: text is required for add_comment", i)
		}
	case OpDeleteComment:
		if step.Comment == "" {
			return fmt.Errorf("steps[%d]: comment is required for delete_comment", i)
		}
	case OpEditProfile:
		if step.Profile == nil {
			return fmt.Errorf("steps[%d]: profile is required for edit_profile", i)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(where string, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("%s: type is required", where)
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("%s: ops list is required for trace_order", where)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("%s: op is required for trace_count", where)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative for trace_count", where)
		}
	case AssertStack:
		if a.Undo == nil && a.Redo == nil && a.LastDescription == nil {
			return fmt.Errorf("%s: stack assertion checks nothing", where)
		}
	case AssertRecipe:
		if a.Recipe == "" {
			return fmt.Errorf("%s: recipe is required for recipe assertions", where)
		}
	case AssertProgress:
		if a.Key == "" || a.Status == "" {
			return fmt.Errorf("%s: key and status are required for progress", where)
		}
	case AssertUser:
	default:
		return fmt.Errorf("%s: unknown assertion type %q", where, a.Type)
	}
	return nil
}
