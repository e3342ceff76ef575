package store

import (
	"fmt"
	"time"

	"github.com/roach88/recipeata/internal/ir"
	"github.com/roach88/recipeata/internal/recipe"
)

// encodeDocument strips Undefined values, validates the document against
// the recipe schema and returns its canonical JSON TEXT for storage.
func encodeDocument(doc ir.Object) (string, error) {
	data, err := ir.MarshalCanonical(ir.StripObject(doc))
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	if err := recipe.ValidateJSON(data); err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeDocument parses stored canonical JSON TEXT.
func decodeDocument(data string) (ir.Object, error) {
	doc, err := ir.DecodeObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// decodeRecipe parses stored canonical JSON TEXT into a Recipe.
func decodeRecipe(data string) (recipe.Recipe, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return recipe.Recipe{}, err
	}
	return recipe.FromDocument(doc)
}

// timeValue encodes t the way encoding/json does, so documents built from
// structs and documents patched in place agree.
func timeValue(t time.Time) ir.String {
	return ir.String(t.UTC().Format(time.RFC3339Nano))
}

// marshalIDs converts an id list to canonical JSON TEXT.
func marshalIDs(ids []string) (string, error) {
	arr := make(ir.Array, len(ids))
	for i, id := range ids {
		arr[i] = ir.String(id)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal ids: %w", err)
	}
	return string(data), nil
}

// unmarshalIDs parses an id list. Empty TEXT yields an empty list.
func unmarshalIDs(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	v, err := ir.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal ids: got %T", v)
	}
	for _, elem := range arr {
		s, ok := elem.(ir.String)
		if !ok {
			return nil, fmt.Errorf("unmarshal ids: element %T", elem)
		}
		ids = append(ids, string(s))
	}
	return ids, nil
}
