package ontology

import (
	"sort"

	"github.com/google/mangle/ast"
)

// Triple is one edge of the data graph: a binary fact whose subject is a
// name constant. Derived facts from rule evaluation are indexed too.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// buildTripleIndex walks every binary fact once and fills the three
// adjacency maps. Predicates are visited in sorted order and each bucket
// is sorted, so downstream iteration is deterministic.
func (s *Store) buildTripleIndex() {
	s.bySubject = make(map[string][]Triple)
	s.byPredicate = make(map[string][]Triple)
	s.byObject = make(map[string][]Triple)

	syms := s.store.ListPredicates()
	sort.Slice(syms, func(i, j int) bool { return syms[i].Symbol < syms[j].Symbol })

	for _, sym := range syms {
		if sym.Arity != 2 {
			continue
		}
		_ = s.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			subj, ok := atom.Args[0].(ast.Constant)
			if !ok || subj.Type != ast.NameType {
				return nil
			}
			obj, ok := atom.Args[1].(ast.Constant)
			if !ok {
				return nil
			}
			t := Triple{Subject: subj.Symbol, Predicate: sym.Symbol, Object: constantToTerm(obj)}
			s.bySubject[t.Subject] = append(s.bySubject[t.Subject], t)
			s.byPredicate[t.Predicate] = append(s.byPredicate[t.Predicate], t)
			if t.Object.Kind == KindName {
				s.byObject[t.Object.Str] = append(s.byObject[t.Object.Str], t)
			}
			return nil
		})
	}

	for _, index := range []map[string][]Triple{s.bySubject, s.byPredicate, s.byObject} {
		for _, bucket := range index {
			sort.Slice(bucket, func(i, j int) bool {
				a, b := bucket[i], bucket[j]
				if a.Subject != b.Subject {
					return a.Subject < b.Subject
				}
				if a.Predicate != b.Predicate {
					return a.Predicate < b.Predicate
				}
				return a.Object.Str < b.Object.Str
			})
		}
	}
}

// SubjectsWith returns the distinct, sorted subjects that have at least
// one triple (subject, predicate, object). Used to resolve SHACL target
// classes via is_a edges.
func (s *Store) SubjectsWith(predicate, object string) []string {
	var subjects []string
	seen := make(map[string]bool)
	for _, t := range s.byPredicate[predicate] {
		if t.Object.Kind == KindName && t.Object.Str == object && !seen[t.Subject] {
			seen[t.Subject] = true
			subjects = append(subjects, t.Subject)
		}
	}
	sort.Strings(subjects)
	return subjects
}

// TriplesFor returns the triples rooted at subject with the given
// predicate, already sorted.
func (s *Store) TriplesFor(subject, predicate string) []Triple {
	var out []Triple
	for _, t := range s.bySubject[subject] {
		if t.Predicate == predicate {
			out = append(out, t)
		}
	}
	return out
}
