// Package cq evaluates the competency-question battery against the
// ontology store. Questions are declarative: a Mangle pattern query, an
// expectation about its result set, and the predicates whose facts must
// exist for the question to be answerable at all.
package cq

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"costkb/internal/ontology"
)

// Verdicts.
const (
	StatusSatisfied    = "satisfied"
	StatusViolated     = "violated"
	StatusInconclusive = "inconclusive"
)

// Expectations about a question's result set.
const (
	ExpectNonEmpty = "non_empty" // the pattern must have matches
	ExpectEmpty    = "empty"     // the pattern is forbidden
)

// Question is one competency question.
type Question struct {
	ID       string   `yaml:"id"`
	Query    string   `yaml:"query"`
	Expect   string   `yaml:"expect"`
	Requires []string `yaml:"requires"`
	Note     string   `yaml:"note"`
}

// Battery is the fixed question set for one run.
type Battery struct {
	Questions []Question `yaml:"questions"`
}

// Result is one output row.
type Result struct {
	ID       string
	Status   string
	Evidence string
	Note     string
}

// LoadBattery parses and structurally validates the question set. Any
// defect here is a definitional error in the battery itself and must
// abort the run before any artifact is written.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cq battery: %w", err)
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse cq battery: %w", err)
	}
	if len(b.Questions) == 0 {
		return nil, fmt.Errorf("cq battery %s declares no questions", path)
	}
	seen := make(map[string]bool, len(b.Questions))
	for i, q := range b.Questions {
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("cq battery: question %d has no id", i)
		case seen[q.ID]:
			return nil, fmt.Errorf("cq battery: duplicate question id %s", q.ID)
		case q.Query == "":
			return nil, fmt.Errorf("cq battery: question %s has no query", q.ID)
		case q.Expect != ExpectNonEmpty && q.Expect != ExpectEmpty:
			return nil, fmt.Errorf("cq battery: question %s has unknown expectation %q", q.ID, q.Expect)
		}
		seen[q.ID] = true
	}
	return &b, nil
}

// Validate checks every question against the ontology's declarations so
// a malformed battery fails before evaluation starts.
func (b *Battery) Validate(store *ontology.Store) error {
	for _, q := range b.Questions {
		if _, err := store.Query(q.Query); err != nil {
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
		for _, pred := range q.Requires {
			if !store.Declared(pred) {
				return fmt.Errorf("question %s requires undeclared predicate %s", q.ID, pred)
			}
		}
	}
	return nil
}

// Evaluate runs every question independently and returns results sorted
// by question id. Verdict policy: a question whose required supporting
// predicates have no facts is inconclusive regardless of its query
// result; otherwise non_empty expectations are satisfied by matches and
// violated without them, and empty expectations invert that.
func Evaluate(store *ontology.Store, b *Battery) ([]Result, error) {
	results := make([]Result, 0, len(b.Questions))
	for _, q := range b.Questions {
		res, err := evaluateOne(store, q)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func evaluateOne(store *ontology.Store, q Question) (Result, error) {
	for _, pred := range q.Requires {
		if !store.HasFacts(pred) {
			return Result{
				ID:       q.ID,
				Status:   StatusInconclusive,
				Evidence: fmt.Sprintf("no facts for required predicate %s", pred),
				Note:     q.Note,
			}, nil
		}
	}

	matches, err := store.Query(q.Query)
	if err != nil {
		return Result{}, fmt.Errorf("question %s: %w", q.ID, err)
	}

	status := StatusViolated
	switch q.Expect {
	case ExpectNonEmpty:
		if len(matches) > 0 {
			status = StatusSatisfied
		}
	case ExpectEmpty:
		if len(matches) == 0 {
			status = StatusSatisfied
		}
	}

	return Result{
		ID:       q.ID,
		Status:   status,
		Evidence: fmt.Sprintf("rows=%d query=%s", len(matches), q.Query),
		Note:     q.Note,
	}, nil
}
