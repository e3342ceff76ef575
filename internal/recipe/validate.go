package recipe

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// validator holds the compiled schema. cue.Context is not safe for
// concurrent use, so every use goes through mu.
type validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	recipe cue.Value
	err    error
}

var (
	schemaOnce sync.Once
	schema     *validator
)

func loadSchema() *validator {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		schema = &validator{ctx: ctx}
		if err := v.Err(); err != nil {
			schema.err = err
			return
		}
		schema.recipe = v.LookupPath(cue.ParsePath("#Recipe"))
		schema.err = schema.recipe.Err()
	})
	return schema
}

// Validate checks a recipe document against the embedded CUE schema.
// All violations are returned as ValidationErrors, which match ErrInvalid.
func Validate(r Recipe) error {
	r.Normalize()
	data, err := json.Marshal(r)
	if err != nil {
		return ValidationErrors{{Field: "", Message: err.Error(), Code: ErrCodeEncode}}
	}
	return ValidateJSON(data)
}

// ValidateJSON checks an encoded recipe document against the schema.
func ValidateJSON(data []byte) error {
	s := loadSchema()
	if s.err != nil {
		return ValidationErrors{{Message: fmt.Sprintf("compile schema: %v", s.err), Code: ErrCodeCompile}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ctx.CompileBytes(data, cue.Filename("recipe.json"))
	if err := doc.Err(); err != nil {
		return ValidationErrors{{Message: err.Error(), Code: ErrCodeEncode}}
	}

	unified := s.recipe.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// toValidationErrors flattens a CUE error list into ValidationErrors.
func toValidationErrors(err error) ValidationErrors {
	cueErrs := errors.Errors(err)
	if len(cueErrs) == 0 {
		return ValidationErrors{{Message: err.Error(), Code: ErrCodeSchema}}
	}

	out := make(ValidationErrors, 0, len(cueErrs))
	for _, e := range cueErrs {
		field := fieldPath(e.Path())
		msg := e.Error()
		if field != "" {
			format, args := e.Msg()
			msg = fmt.Sprintf(format, args...)
		}
		out = append(out, ValidationError{Field: field, Message: msg, Code: ErrCodeSchema})
	}
	return out
}

// fieldPath drops definition selectors such as #Recipe from a CUE path.
func fieldPath(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if strings.HasPrefix(p, "#") {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ".")
}
