package shacl

import (
	"fmt"
	"strings"

	"costkb/internal/ontology"
)

// Verdicts.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Result is one row of the shacl_results table.
//
// Granularity: one fail row per violated (focus node, constraint path)
// pair, and exactly one pass row per (shape, focus node) with no
// violations. Introducing a single violated constraint therefore adds
// exactly one fail row.
type Result struct {
	ShapeID   string
	FocusNode string
	Path      string
	Status    string
	Message   string
}

// Validate checks every shape against every focus node it targets.
// Ordering is deterministic: shapes in file order, focus nodes sorted,
// constraints in declaration order.
func Validate(store *ontology.Store, set *ShapeSet) []Result {
	var results []Result
	for _, shape := range set.Shapes {
		for _, node := range store.SubjectsWith("is_a", shape.TargetClass) {
			results = append(results, checkNode(store, shape, node)...)
		}
	}
	return results
}

func checkNode(store *ontology.Store, shape Shape, node string) []Result {
	var failures []Result
	for _, c := range shape.Constraints {
		if msg := c.check(store, node); msg != "" {
			failures = append(failures, Result{
				ShapeID:   shape.ID,
				FocusNode: node,
				Path:      c.Path,
				Status:    StatusFail,
				Message:   msg,
			})
		}
	}
	if len(failures) == 0 {
		return []Result{{
			ShapeID:   shape.ID,
			FocusNode: node,
			Status:    StatusPass,
			Message:   "conforms",
		}}
	}
	return failures
}

// check returns an empty string when the node conforms, otherwise the
// failure message for the first violated check of this constraint.
func (c Constraint) check(store *ontology.Store, node string) string {
	values := store.TriplesFor(node, c.Path)

	if c.MinCount != nil && len(values) < *c.MinCount {
		return fmt.Sprintf("minCount %d, found %d", *c.MinCount, len(values))
	}
	if c.MaxCount != nil && len(values) > *c.MaxCount {
		return fmt.Sprintf("maxCount %d, found %d", *c.MaxCount, len(values))
	}
	for _, t := range values {
		if c.Datatype != "" && t.Object.Kind.String() != c.Datatype {
			return fmt.Sprintf("value %s has datatype %s, expected %s", t.Object.Str, t.Object.Kind, c.Datatype)
		}
		if len(c.In) > 0 && !contains(c.In, t.Object.Str) {
			return fmt.Sprintf("value %s not in [%s]", t.Object.Str, strings.Join(c.In, " "))
		}
		if c.re != nil && !c.re.MatchString(t.Object.Str) {
			return fmt.Sprintf("value %s does not match pattern %s", t.Object.Str, c.Pattern)
		}
	}
	return ""
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// FailCount is the number of fail rows, the quantity the external
// acceptance gate treats as pipeline-fatal.
func FailCount(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusFail {
			n++
		}
	}
	return n
}
