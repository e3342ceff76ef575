package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: one recipe
user:
  id: u-1
  name: Aki
steps:
  - op: add_recipe
    as: curry
    content:
      title: Curry
      tags: [dinner]
      cooking_time: 30
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "u-1", s.User.ID)
	require.Len(t, s.Steps, 1)
	step := s.Steps[0]
	assert.Equal(t, OpAddRecipe, step.Op)
	assert.Equal(t, "curry", step.As)
	require.NotNil(t, step.Content)
	require.NotNil(t, step.Content.Title)
	assert.Equal(t, "Curry", *step.Content.Title)
	require.NotNil(t, step.Content.Tags)
	assert.Equal(t, []string{"dinner"}, *step.Content.Tags)
	require.NotNil(t, step.Content.CookingTime)
	assert.Equal(t, 30, *step.Content.CookingTime)
	assert.Nil(t, step.Content.Servings)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	data := minimalScenario + "assertion:\n  - type: stack\n"
	_, err := ParseScenario([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nuser: {id: u}\nsteps: [{op: undo}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nuser: {id: u}\nsteps: [{op: undo}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing user",
			yaml:    "name: n\ndescription: d\nsteps: [{op: undo}]\n",
			wantErr: "user.id is required",
		},
		{
			name:    "no steps",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: bake}]\n",
			wantErr: `unknown op "bake"`,
		},
		{
			name:    "like without recipe",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: like}]\n",
			wantErr: "recipe is required for like",
		},
		{
			name:    "add without content",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: add_recipe}]\n",
			wantErr: "content is required for add_recipe",
		},
		{
			name:    "delete_comment without comment",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: delete_comment, recipe: r}]\n",
			wantErr: "comment is required",
		},
		{
			name:    "edit_profile without profile",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: edit_profile}]\n",
			wantErr: "profile is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: undo}]\nassertions: [{type: vibes}]\n",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "empty trace_order",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: undo}]\nassertions: [{type: trace_order}]\n",
			wantErr: "ops list is required",
		},
		{
			name:    "stack checks nothing",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: undo, assert: [{type: stack}]}]\n",
			wantErr: "steps[0].assert[0]: stack assertion checks nothing",
		},
		{
			name:    "progress without status",
			yaml:    "name: n\ndescription: d\nuser: {id: u}\nsteps: [{op: undo}]\nassertions: [{type: progress, key: like}]\n",
			wantErr: "key and status are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_TestdataScenariosParse(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}
