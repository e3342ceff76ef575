package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s", event.Seq, event.Op, event.Target)
			if event.Error != "" {
				fmt.Fprintf(&buf, " error=%q", event.Error)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// AssertionContext gives state assertions access to the running session.
type AssertionContext struct {
	Ctx     context.Context
	Session *session.Session
	Harness *Harness
}

// assertTraceOrder checks that ops appear in the specified order.
// Ops don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Ops) && event.Op == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("ops in order %v", a.Ops),
		Actual:   fmt.Sprintf("%q not found after %v", a.Ops[next], a.Ops[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks the number of steps with the given op.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.Op {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s steps", a.Count, a.Op),
		Actual:   fmt.Sprintf("%d %s steps", count, a.Op),
		Trace:    trace,
	}
}

func assertStack(actx *AssertionContext, a Assertion) error {
	stack := actx.Session.Stack
	var problems []string
	if a.Undo != nil {
		if got := len(stack.UndoStack()); got != *a.Undo {
			problems = append(problems, fmt.Sprintf("undo depth %d, want %d", got, *a.Undo))
		}
	}
	if a.Redo != nil {
		if got := len(stack.RedoStack()); got != *a.Redo {
			problems = append(problems, fmt.Sprintf("redo depth %d, want %d", got, *a.Redo))
		}
	}
	if a.LastDescription != nil {
		if got := stack.LastActionDescription(); got != *a.LastDescription {
			problems = append(problems, fmt.Sprintf("last description %q, want %q", got, *a.LastDescription))
		}
	}
	return mismatch(AssertStack, problems)
}

func assertRecipe(actx *AssertionContext, a Assertion) error {
	id := actx.Harness.recipeID(a.Recipe)
	r, err := actx.Session.Store.GetRecipe(actx.Ctx, id)
	exists := err == nil
	if err != nil && !errors.Is(err, recipe.ErrNotFound) {
		return fmt.Errorf("recipe assertion: %w", err)
	}

	if a.Exists != nil && exists != *a.Exists {
		return mismatch(AssertRecipe, []string{fmt.Sprintf("%s exists = %v, want %v", a.Recipe, exists, *a.Exists)})
	}
	if !exists {
		if a.Title != nil || a.Likes != nil || a.Comments != nil || a.History != nil || a.Tags != nil {
			return mismatch(AssertRecipe, []string{fmt.Sprintf("%s does not exist", a.Recipe)})
		}
		return nil
	}

	var problems []string
	if a.Title != nil && r.Title != *a.Title {
		problems = append(problems, fmt.Sprintf("title %q, want %q", r.Title, *a.Title))
	}
	if a.Likes != nil && r.LikeCount() != *a.Likes {
		problems = append(problems, fmt.Sprintf("likes %d, want %d", r.LikeCount(), *a.Likes))
	}
	if a.Comments != nil && r.CommentCount() != *a.Comments {
		problems = append(problems, fmt.Sprintf("comments %d, want %d", r.CommentCount(), *a.Comments))
	}
	if a.History != nil && len(r.History) != *a.History {
		problems = append(problems, fmt.Sprintf("history %d, want %d", len(r.History), *a.History))
	}
	if a.Tags != nil && !slices.Equal(r.Tags, *a.Tags) {
		problems = append(problems, fmt.Sprintf("tags %v, want %v", r.Tags, *a.Tags))
	}
	return mismatch(AssertRecipe, problems)
}

func assertProgress(actx *AssertionContext, a Assertion) error {
	got, ok := actx.Session.Progress.Status(a.Key)
	if !ok {
		return mismatch(AssertProgress, []string{fmt.Sprintf("no entry %q", a.Key)})
	}
	if string(got) != a.Status {
		return mismatch(AssertProgress, []string{fmt.Sprintf("%s is %s, want %s", a.Key, got, a.Status)})
	}
	return nil
}

func assertUser(actx *AssertionContext, a Assertion) error {
	id := actx.Session.User().ID
	u, err := actx.Session.Store.GetUser(actx.Ctx, id)
	if err != nil {
		return fmt.Errorf("user assertion: %w", err)
	}

	var problems []string
	if a.Name != nil && u.Name != *a.Name {
		problems = append(problems, fmt.Sprintf("name %q, want %q", u.Name, *a.Name))
	}
	if a.Pins != nil && len(u.Pins) != *a.Pins {
		problems = append(problems, fmt.Sprintf("pins %d, want %d", len(u.Pins), *a.Pins))
	}
	if a.Favorites != nil && len(u.Favorites) != *a.Favorites {
		problems = append(problems, fmt.Sprintf("favorites %d, want %d", len(u.Favorites), *a.Favorites))
	}
	return mismatch(AssertUser, problems)
}

// mismatch folds state problems into one AssertionError, or nil.
func mismatch(kind string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: "state as asserted",
		Actual:   strings.Join(problems, "; "),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides session access for state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertStack, AssertRecipe, AssertProgress, AssertUser:
			if actx == nil || actx.Session == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a session", i, assertion.Type)
				break
			}
			switch assertion.Type {
			case AssertStack:
				err = assertStack(actx, assertion)
			case AssertRecipe:
				err = assertRecipe(actx, assertion)
			case AssertProgress:
				err = assertProgress(actx, assertion)
			case AssertUser:
				err = assertUser(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
