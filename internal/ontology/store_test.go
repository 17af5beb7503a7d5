package ontology

import (
	"strings"
	"testing"
)

const testSource = `
Decl is_a(Node, Class).
Decl has_family(T, F).
Decl has_magnitude(T, M).
Decl has_bearing_mode(T, M).
Decl transferred_cost(T).

transferred_cost(T) :- has_bearing_mode(T, /Transferred).
transferred_cost(T) :- has_bearing_mode(T, /Externalized).

is_a(/pointer_authentication, /MechanismFamily).
`

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := LoadSource(testSource)
	if err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	return s
}

func TestLoadSourceRejectsBadSyntax(t *testing.T) {
	if _, err := LoadSource("this is not mangle"); err == nil {
		t.Fatal("expected parse error for malformed source")
	}
}

func TestAddFactsRejectsUndeclaredPredicate(t *testing.T) {
	s := loadTestStore(t)
	err := s.AddFacts([]Fact{{Predicate: "has_color", Args: []any{"/n1", "/red"}}})
	if err == nil {
		t.Fatal("undeclared predicate was accepted")
	}
	if !strings.Contains(err.Error(), "has_color") {
		t.Errorf("error does not name the predicate: %v", err)
	}
}

func TestAddFactsRejectsArityMismatch(t *testing.T) {
	s := loadTestStore(t)
	err := s.AddFacts([]Fact{{Predicate: "has_family", Args: []any{"/n1"}}})
	if err == nil {
		t.Fatal("arity mismatch was accepted")
	}
}

func TestStoreFreezesAfterEvaluate(t *testing.T) {
	s := loadTestStore(t)
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	err := s.AddFacts([]Fact{{Predicate: "has_family", Args: []any{"/n1", "/f"}}})
	if err == nil {
		t.Fatal("AddFacts succeeded after Evaluate")
	}
}

func TestEvaluateDerivesRuleFacts(t *testing.T) {
	s := loadTestStore(t)
	facts := []Fact{
		{Predicate: "has_bearing_mode", Args: []any{"/cost/r0001", "/Transferred"}},
		{Predicate: "has_bearing_mode", Args: []any{"/cost/r0002", "/Internal"}},
		{Predicate: "has_bearing_mode", Args: []any{"/cost/r0003", "/Externalized"}},
	}
	if err := s.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	derived, err := s.Query("transferred_cost(X)")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(derived) != 2 {
		t.Fatalf("transferred_cost has %d facts, want 2: %v", len(derived), derived)
	}
	// Sorted by fact key, so r0001 precedes r0003.
	if derived[0].Args[0] != "/cost/r0001" || derived[1].Args[0] != "/cost/r0003" {
		t.Errorf("unexpected derived facts: %v", derived)
	}
}

func TestQueryConstantsFilter(t *testing.T) {
	s := loadTestStore(t)
	facts := []Fact{
		{Predicate: "has_family", Args: []any{"/cost/r0001", "/pointer_authentication"}},
		{Predicate: "has_family", Args: []any{"/cost/r0002", "/control_flow_integrity"}},
		{Predicate: "has_magnitude", Args: []any{"/cost/r0001", 3.5}},
	}
	if err := s.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	matches, err := s.Query("has_family(X, /pointer_authentication)")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Args[0] != "/cost/r0001" {
		t.Fatalf("constant filter returned %v", matches)
	}

	// Leading "?" and trailing "." are accepted query notation.
	again, err := s.Query("?has_family(X, Y).")
	if err != nil {
		t.Fatalf("Query with decorations failed: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("wildcard query returned %d facts, want 2", len(again))
	}

	if _, err := s.Query("no_such_pred(X)"); err == nil {
		t.Fatal("query over undeclared predicate succeeded")
	}
	if _, err := s.Query(""); err == nil {
		t.Fatal("empty query pattern succeeded")
	}
}

func TestHasFactsAndDeclared(t *testing.T) {
	s := loadTestStore(t)
	if err := s.AddFacts([]Fact{{Predicate: "has_family", Args: []any{"/n1", "/f"}}}); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !s.Declared("has_magnitude") {
		t.Error("has_magnitude should be declared")
	}
	if s.Declared("has_color") {
		t.Error("has_color should not be declared")
	}
	if !s.HasFacts("has_family") {
		t.Error("has_family should have facts")
	}
	if s.HasFacts("has_magnitude") {
		t.Error("has_magnitude is declared but factless")
	}
}

func TestTripleIndex(t *testing.T) {
	s := loadTestStore(t)
	facts := []Fact{
		{Predicate: "is_a", Args: []any{"/cost/r0002", "/CostTuple"}},
		{Predicate: "is_a", Args: []any{"/cost/r0001", "/CostTuple"}},
		{Predicate: "has_magnitude", Args: []any{"/cost/r0001", 3.5}},
		{Predicate: "has_family", Args: []any{"/cost/r0001", "raw text"}},
	}
	if err := s.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts failed: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	subjects := s.SubjectsWith("is_a", "/CostTuple")
	if len(subjects) != 2 || subjects[0] != "/cost/r0001" || subjects[1] != "/cost/r0002" {
		t.Fatalf("SubjectsWith = %v, want sorted [/cost/r0001 /cost/r0002]", subjects)
	}

	mags := s.TriplesFor("/cost/r0001", "has_magnitude")
	if len(mags) != 1 {
		t.Fatalf("TriplesFor magnitude = %v", mags)
	}
	if mags[0].Object.Kind != KindNumber || mags[0].Object.Num != 3.5 {
		t.Errorf("magnitude object = %+v, want number 3.5", mags[0].Object)
	}

	fams := s.TriplesFor("/cost/r0001", "has_family")
	if len(fams) != 1 || fams[0].Object.Kind != KindString || fams[0].Object.Str != "raw text" {
		t.Errorf("string-valued object = %+v", fams)
	}

	if got := s.TriplesFor("/cost/r0001", "has_bearing_mode"); len(got) != 0 {
		t.Errorf("expected no bearing-mode triples, got %v", got)
	}
}
