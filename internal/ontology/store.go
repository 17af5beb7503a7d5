// Package ontology hosts the in-memory knowledge graph: a Google Mangle
// program (declarations, rules, facts) merged with record-derived facts,
// plus a subject/predicate/object triple index over the binary facts for
// graph-style lookups. The store is filled once per run and read-only
// afterwards.
package ontology

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
)

// Fact is one predicate instance destined for the fact store. String
// arguments with a leading "/" become Mangle name constants.
type Fact struct {
	Predicate string
	Args      []any
}

// Store wraps the analyzed Mangle program and its fact store.
type Store struct {
	program   *analysis.ProgramInfo
	store     factstore.FactStore
	preds     map[string]ast.PredicateSym
	evaluated bool

	bySubject   map[string][]Triple
	byPredicate map[string][]Triple
	byObject    map[string][]Triple
}

// Load parses and analyzes one Mangle source file. A file that does not
// parse or analyze is a definitional error; no partial store is returned.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ontology: %w", err)
	}
	return LoadSource(string(data))
}

// LoadSource is Load for an in-memory source unit.
func LoadSource(src string) (*Store, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(src)))
	if err != nil {
		return nil, fmt.Errorf("parse ontology: %w", err)
	}
	program, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze ontology: %w", err)
	}

	s := &Store{
		program: program,
		store:   factstore.NewSimpleInMemoryStore(),
		preds:   make(map[string]ast.PredicateSym, len(program.Decls)),
	}
	for sym := range program.Decls {
		s.preds[sym.Symbol] = sym
	}
	return s, nil
}

// AddFacts inserts record-derived facts. Every predicate must be declared
// by the ontology; an unknown predicate means the data and the ontology
// have drifted apart, which is fatal, not a per-row defect.
func (s *Store) AddFacts(facts []Fact) error {
	if s.evaluated {
		return fmt.Errorf("store is frozen; facts must be added before Evaluate")
	}
	for _, fact := range facts {
		atom, err := s.factToAtom(fact)
		if err != nil {
			return err
		}
		s.store.Add(atom)
	}
	return nil
}

func (s *Store) factToAtom(fact Fact) (ast.Atom, error) {
	sym, ok := s.preds[fact.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared by the ontology", fact.Predicate)
	}
	if len(fact.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", fact.Predicate, sym.Arity, len(fact.Args))
	}
	args := make([]ast.BaseTerm, len(fact.Args))
	for i, raw := range fact.Args {
		term, err := valueToTerm(raw)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", fact.Predicate, i, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// Evaluate runs the ontology's rules to fixpoint over the merged facts
// and builds the triple index. After Evaluate the store only answers
// queries.
func (s *Store) Evaluate() error {
	if s.evaluated {
		return nil
	}
	if err := mengine.EvalProgram(s.program, s.store); err != nil {
		return fmt.Errorf("evaluate ontology rules: %w", err)
	}
	s.evaluated = true
	s.buildTripleIndex()
	return nil
}

// Query matches a pattern like `has_bearing_mode(X, /Externalized)`
// against the evaluated store. Variables are wildcards, constants must
// match. The matched facts come back in a stable order.
func (s *Store) Query(pattern string) ([]Fact, error) {
	atom, err := parseAtomPattern(pattern)
	if err != nil {
		return nil, err
	}
	sym, ok := s.preds[atom.Predicate.Symbol]
	if !ok {
		return nil, fmt.Errorf("query predicate %s is not declared by the ontology", atom.Predicate.Symbol)
	}
	if sym.Arity != len(atom.Args) {
		return nil, fmt.Errorf("query predicate %s expects %d args, got %d", sym.Symbol, sym.Arity, len(atom.Args))
	}

	var results []Fact
	err = s.store.GetFacts(ast.NewQuery(sym), func(stored ast.Atom) error {
		if !patternMatches(atom, stored) {
			return nil
		}
		args := make([]any, len(stored.Args))
		for i, arg := range stored.Args {
			args[i] = termToValue(arg)
		}
		results = append(results, Fact{Predicate: sym.Symbol, Args: args})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return factKey(results[i]) < factKey(results[j])
	})
	return results, nil
}

// HasFacts reports whether any fact exists for the predicate. Used by
// the CQ evaluator to downgrade verdicts to inconclusive when the
// supporting data is absent entirely.
func (s *Store) HasFacts(predicate string) bool {
	sym, ok := s.preds[predicate]
	if !ok {
		return false
	}
	found := false
	_ = s.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
		found = true
		return nil
	})
	return found
}

// Declared reports whether the ontology declares the predicate.
func (s *Store) Declared(predicate string) bool {
	_, ok := s.preds[predicate]
	return ok
}

func patternMatches(pattern, stored ast.Atom) bool {
	for i, arg := range pattern.Args {
		if _, isVar := arg.(ast.Variable); isVar {
			continue
		}
		if i >= len(stored.Args) || arg.String() != stored.Args[i].String() {
			return false
		}
	}
	return true
}

// parseAtomPattern accepts the query notations the CQ files use:
// `pred(X, /c)`, `?pred(X)`, with or without a trailing period.
func parseAtomPattern(pattern string) (ast.Atom, error) {
	clean := strings.TrimSpace(pattern)
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), ".")
	if clean == "" {
		return ast.Atom{}, fmt.Errorf("empty query pattern")
	}
	atom, err := parse.Atom(clean)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("parse query %q: %w", pattern, err)
	}
	return atom, nil
}

func factKey(f Fact) string {
	parts := make([]string, 0, len(f.Args)+1)
	parts = append(parts, f.Predicate)
	for _, a := range f.Args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	return strings.Join(parts, "\x00")
}
