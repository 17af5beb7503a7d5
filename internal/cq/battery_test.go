package cq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costkb/internal/ontology"
)

const testOntology = `
Decl is_a(Node, Class).
Decl has_family(T, F).
Decl has_bearing_mode(T, M).
Decl has_remediation(T, R).
Decl transferred_cost(T).

transferred_cost(T) :- has_bearing_mode(T, /Transferred).
`

func testStore(t *testing.T) *ontology.Store {
	t.Helper()
	store, err := ontology.LoadSource(testOntology)
	require.NoError(t, err)
	require.NoError(t, store.AddFacts([]ontology.Fact{
		{Predicate: "is_a", Args: []any{"/cost/r0001", "/CostTuple"}},
		{Predicate: "has_family", Args: []any{"/cost/r0001", "/pointer_authentication"}},
		{Predicate: "has_bearing_mode", Args: []any{"/cost/r0001", "/Transferred"}},
	}))
	require.NoError(t, store.Evaluate())
	return store
}

func writeBattery(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadBatteryRejectsStructuralDefects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "questions: []", "no questions"},
		{"missing id", "questions:\n  - query: \"is_a(X, Y)\"\n    expect: non_empty", "has no id"},
		{"duplicate id", "questions:\n  - id: CQ1\n    query: \"is_a(X, Y)\"\n    expect: non_empty\n  - id: CQ1\n    query: \"is_a(X, Y)\"\n    expect: non_empty", "duplicate"},
		{"missing query", "questions:\n  - id: CQ1\n    expect: non_empty", "no query"},
		{"unknown expect", "questions:\n  - id: CQ1\n    query: \"is_a(X, Y)\"\n    expect: maybe", "unknown expectation"},
		{"not yaml", ":\t:::", "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadBattery(writeBattery(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadBatteryRoundTrip(t *testing.T) {
	b, err := LoadBattery(writeBattery(t, `
questions:
  - id: CQ1
    query: "has_family(X, /pointer_authentication)"
    expect: non_empty
    requires: [has_family]
    note: at least one costed row per family
`))
	require.NoError(t, err)
	require.Len(t, b.Questions, 1)
	assert.Equal(t, "CQ1", b.Questions[0].ID)
	assert.Equal(t, ExpectNonEmpty, b.Questions[0].Expect)
	assert.Equal(t, []string{"has_family"}, b.Questions[0].Requires)
}

func TestValidateAgainstStore(t *testing.T) {
	store := testStore(t)

	good := &Battery{Questions: []Question{
		{ID: "CQ1", Query: "has_family(X, Y)", Expect: ExpectNonEmpty, Requires: []string{"has_family"}},
	}}
	require.NoError(t, good.Validate(store))

	badQuery := &Battery{Questions: []Question{
		{ID: "CQ1", Query: "no_such_pred(X)", Expect: ExpectNonEmpty},
	}}
	require.Error(t, badQuery.Validate(store))

	badRequires := &Battery{Questions: []Question{
		{ID: "CQ1", Query: "has_family(X, Y)", Expect: ExpectNonEmpty, Requires: []string{"no_such_pred"}},
	}}
	err := badRequires.Validate(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared predicate")
}

func TestEvaluateVerdicts(t *testing.T) {
	store := testStore(t)

	battery := &Battery{Questions: []Question{
		// Sorted output: ids deliberately out of order here.
		{ID: "CQ3", Query: "is_a(X, /RetiredMechanism)", Expect: ExpectEmpty},
		{ID: "CQ1", Query: "has_family(X, /pointer_authentication)", Expect: ExpectNonEmpty, Requires: []string{"has_family"}},
		{ID: "CQ2", Query: "transferred_cost(X)", Expect: ExpectEmpty, Requires: []string{"has_bearing_mode"}},
		{ID: "CQ4", Query: "has_remediation(X, Y)", Expect: ExpectNonEmpty, Requires: []string{"has_remediation"}},
	}}

	results, err := Evaluate(store, battery)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byID := make(map[string]Result, len(results))
	for i, r := range results {
		byID[r.ID] = r
		if i > 0 {
			assert.Less(t, results[i-1].ID, r.ID, "results must sort by id")
		}
	}

	// Matches exist and are expected: satisfied.
	assert.Equal(t, StatusSatisfied, byID["CQ1"].Status)
	assert.Contains(t, byID["CQ1"].Evidence, "rows=1")

	// Matches exist but the pattern is forbidden: violated.
	assert.Equal(t, StatusViolated, byID["CQ2"].Status)

	// No matches and none expected: satisfied.
	assert.Equal(t, StatusSatisfied, byID["CQ3"].Status)
	assert.Contains(t, byID["CQ3"].Evidence, "rows=0")

	// Required predicate is declared but factless: inconclusive, and the
	// evidence names the missing predicate.
	assert.Equal(t, StatusInconclusive, byID["CQ4"].Status)
	assert.Contains(t, byID["CQ4"].Evidence, "has_remediation")
}
