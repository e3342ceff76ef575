package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripRecursive(t *testing.T) {
	in := Object{
		"title":  String("a"),
		"advice": Undefined{},
		"note":   Null{},
		"desc":   String(""),
		"steps": Array{
			Object{"description": String("boil"), "imageUrl": Undefined{}},
			Undefined{},
		},
	}

	got := Strip(in)

	assert.Equal(t, Object{
		"title": String("a"),
		"note":  Null{},
		"desc":  String(""),
		"steps": Array{
			Object{"description": String("boil")},
		},
	}, got)

	// input untouched
	assert.Equal(t, Undefined{}, in["advice"])
}

func TestStripObjectNil(t *testing.T) {
	assert.Equal(t, Object{}, StripObject(nil))
}

func TestMerge(t *testing.T) {
	dst := Object{"title": String("old"), "servings": Int(2)}
	patch := Object{"title": String("new"), "servings": Undefined{}, "advice": Null{}}

	got := Merge(dst, patch)

	assert.Equal(t, Object{
		"title":    String("new"),
		"servings": Int(2),
		"advice":   Null{},
	}, got)
	assert.Equal(t, String("old"), dst["title"], "dst must not be modified")
}
