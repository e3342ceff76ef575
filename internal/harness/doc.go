// Package harness runs scripted recipe sessions.
//
// A scenario is a YAML file naming a user, a list of steps and a list of
// assertions. Each step is one session operation (add_recipe, like, undo,
// ...). Steps refer to the recipes and comments they create by name, so a
// scenario never hard-codes generated ids.
//
// Run executes a scenario against a fresh in-memory store with a
// deterministic clock and sequential ids, so its trace is reproducible and
// can be compared against a golden file:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/like_undo.yaml")
//	if err != nil { ... }
//	harness.RunWithGolden(t, scenario)
//
// RunOn executes a scenario against an existing store, as the play command
// does.
package harness
