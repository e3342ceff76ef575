package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/recipeata/internal/ident"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/session"
	"github.com/roach88/recipeata/internal/store"
	"github.com/roach88/recipeata/internal/testutil"
	"github.com/roach88/recipeata/internal/undo"
)

// Harness executes the steps of one scenario against one session.
type Harness struct {
	session *session.Session
	logger  *slog.Logger

	recipes  map[string]string
	comments map[string]string
}

type runOptions struct {
	now    func() time.Time
	ids    ident.Generator
	logger *slog.Logger
}

// Option configures RunOn.
type Option func(*runOptions)

// WithClock sets the session clock.
func WithClock(now func() time.Time) Option {
	return func(o *runOptions) { o.now = now }
}

// WithIDs sets the command id generator.
func WithIDs(gen ident.Generator) Option {
	return func(o *runOptions) { o.ids = gen }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Recipe and
// comment ids come from one id-N sequence, command ids from cmd-N, and the
// clock starts at testutil.Epoch, so two runs produce the same trace.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	st, err := store.Open(":memory:",
		store.WithClock(clock.Now),
		store.WithIDGenerator(ident.NewSequenceGenerator("id")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	return RunOn(context.Background(), st, scenario,
		WithClock(clock.Now),
		WithIDs(ident.NewSequenceGenerator("cmd")),
	)
}

// RunOn executes scenario against st. Failed steps and assertions are
// reported on the result; the error is for failures to set the run up.
func RunOn(ctx context.Context, st *store.Store, scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{
		now:    time.Now,
		ids:    ident.UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	sessOpts := []session.Option{
		session.WithClock(o.now),
		session.WithIDs(o.ids),
		session.WithLogger(o.logger),
	}
	if scenario.HistoryLimit > 0 {
		sessOpts = append(sessOpts, session.WithHistoryLimit(scenario.HistoryLimit))
	}
	sess, err := session.New(ctx, st, recipe.User{
		ID:      scenario.User.ID,
		Profile: recipe.Profile{Name: scenario.User.Name, Store: scenario.User.Store},
	}, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	h := &Harness{
		session:  sess,
		logger:   o.logger,
		recipes:  make(map[string]string),
		comments: make(map[string]string),
	}

	result := NewResult()
	actx := &AssertionContext{Ctx: ctx, Session: sess, Harness: h}
	for i, step := range scenario.Steps {
		event := h.execute(ctx, i, step, result)
		result.Trace = append(result.Trace, event)
		for _, msg := range EvaluateAssertions(result, step.Assert, actx) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	for name, id := range h.recipes {
		result.Refs[name] = id
	}
	for name, id := range h.comments {
		result.Refs[name] = id
	}
	return result, nil
}

// recipeID resolves a scenario name to a recipe id. Unbound names are used
// as literal ids.
func (h *Harness) recipeID(name string) string {
	if id, ok := h.recipes[name]; ok {
		return id
	}
	return name
}

func (h *Harness) commentID(name string) string {
	if id, ok := h.comments[name]; ok {
		return id
	}
	return name
}

// execute runs one step and checks its expect clause.
func (h *Harness) execute(ctx context.Context, i int, step Step, result *Result) TraceEvent {
	stack := h.session.Stack
	before := len(stack.UndoStack())

	event := TraceEvent{Seq: i + 1, Op: step.Op, Target: step.Recipe}
	if event.Target == "" {
		event.Target = step.As
	}

	out, cmd, err := h.apply(ctx, step)
	if cmd == nil && len(stack.UndoStack()) > before {
		top := stack.UndoStack()[len(stack.UndoStack())-1]
		cmd = &top
	}
	if cmd != nil {
		event.Kind = string(cmd.Kind)
		event.Description = cmd.Description
	}
	if len(out) > 0 {
		event.Result = out
	}
	if err != nil {
		event.Error = err.Error()
	}
	event.Undo = len(stack.UndoStack())
	event.Redo = len(stack.RedoStack())

	for _, msg := range checkExpect(step.Expect, out, err) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Op, msg))
	}

	h.logger.Info("scenario step completed",
		"step", i,
		"op", step.Op,
		"target", event.Target,
		"undo_depth", event.Undo,
		"redo_depth", event.Redo,
		"error", event.Error,
	)
	return event
}

// apply dispatches one step to the session. The returned command is set for
// undo and redo; pushes are read off the stack by the caller.
func (h *Harness) apply(ctx context.Context, step Step) (map[string]any, *undo.Command, error) {
	acts := h.session.Actions
	id := h.recipeID(step.Recipe)

	switch step.Op {
	case OpAddRecipe:
		r, err := acts.AddRecipe(ctx, step.Content.content(), nil)
		if err != nil {
			return nil, nil, err
		}
		if step.As != "" {
			h.recipes[step.As] = r.ID
		}
		return map[string]any{"id": r.ID}, nil, nil

	case OpEditRecipe:
		_, changed, err := acts.EditRecipe(ctx, id, step.Content.patch())
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"changed": changed}, nil, nil

	case OpDeleteRecipe:
		return nil, nil, acts.DeleteRecipe(ctx, id)

	case OpLike:
		liked, err := acts.Like(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"liked": liked}, nil, nil

	case OpAddComment:
		c, err := acts.AddComment(ctx, id, step.Text, h.commentID(step.Parent))
		if err != nil {
			return nil, nil, err
		}
		if step.As != "" {
			h.comments[step.As] = c.ID
		}
		return map[string]any{"id": c.ID}, nil, nil

	case OpDeleteComment:
		return nil, nil, acts.DeleteComment(ctx, id, h.commentID(step.Comment))

	case OpPin:
		return nil, nil, acts.Pin(ctx, id)
	case OpUnpin:
		return nil, nil, acts.Unpin(ctx, id)
	case OpFavorite:
		return nil, nil, acts.Favorite(ctx, id)
	case OpUnfavorite:
		return nil, nil, acts.Unfavorite(ctx, id)

	case OpEditProfile:
		_, err := acts.EditProfile(ctx, recipe.Profile{
			Name:     step.Profile.Name,
			Store:    step.Profile.Store,
			PhotoURL: step.Profile.PhotoURL,
		})
		return nil, nil, err

	case OpRollback:
		r, err := acts.Rollback(ctx, id, step.Index)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"title": r.Title}, nil, nil

	case OpUndo, OpRedo:
		move := h.session.Undo
		if step.Op == OpRedo {
			move = h.session.Redo
		}
		cmd, ok, err := move(ctx)
		out := map[string]any{"applied": ok && err == nil}
		if !ok {
			return out, nil, err
		}
		return out, &cmd, err
	}
	return nil, nil, fmt.Errorf("unknown op %q", step.Op)
}

// checkExpect compares a step outcome with its expect clause. A step without
// one must succeed.
func checkExpect(exp *ExpectClause, out map[string]any, err error) []string {
	if exp == nil {
		if err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", err)}
		}
		return nil
	}

	var errs []string
	switch {
	case exp.Error == "" && err != nil:
		errs = append(errs, fmt.Sprintf("unexpected error: %v", err))
	case exp.Error != "" && err == nil:
		errs = append(errs, fmt.Sprintf("expected error containing %q, got success", exp.Error))
	case exp.Error != "" && !strings.Contains(err.Error(), exp.Error):
		errs = append(errs, fmt.Sprintf("expected error containing %q, got %q", exp.Error, err.Error()))
	}

	checkBool := func(name string, want *bool) {
		if want == nil {
			return
		}
		got, _ := out[name].(bool)
		if got != *want {
			errs = append(errs, fmt.Sprintf("%s = %v, want %v", name, got, *want))
		}
	}
	checkBool("changed", exp.Changed)
	checkBool("liked", exp.Liked)
	checkBool("applied", exp.Applied)
	return errs
}

// content builds full recipe content from the arguments; absent fields are
// zero.
func (a *ContentArgs) content() recipe.Content {
	return a.patch().Apply(recipe.Content{})
}

// patch builds a partial update from the fields that are present.
func (a *ContentArgs) patch() recipe.Patch {
	if a == nil {
		return recipe.Patch{}
	}
	p := recipe.Patch{
		Title:        a.Title,
		Description:  a.Description,
		MainImageURL: a.MainImageURL,
		Advice:       a.Advice,
		Tags:         a.Tags,
		CookingTime:  a.CookingTime,
		Servings:     a.Servings,
	}
	if a.Ingredients != nil {
		list := make([]recipe.Ingredient, len(*a.Ingredients))
		for i, in := range *a.Ingredients {
			list[i] = recipe.Ingredient{Name: in.Name, Quantity: in.Quantity}
		}
		p.Ingredients = &list
	}
	if a.Steps != nil {
		list := make([]recipe.Step, len(*a.Steps))
		for i, s := range *a.Steps {
			list[i] = recipe.Step{Description: s.Description, ImageURL: s.ImageURL}
		}
		p.Steps = &list
	}
	return p
}
