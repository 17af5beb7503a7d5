package pipeline

import (
	"fmt"
	"strconv"

	"costkb/internal/ontology"
	"costkb/internal/record"
)

// Projection of well-formed records into the data graph. Each record
// becomes a node with one is_a edge and one has_* edge per populated
// field. Enum-like fields become name constants so SHACL in-lists and
// CQ patterns can reference them as /Value; free-text fields stay
// strings; magnitudes become numbers when they parse.
//
// Every predicate used here must be declared by the ontology — drift
// between loader and ontology vocabulary surfaces as a fatal error in
// Store.AddFacts, before anything is written.

func costNode(row int) string {
	return fmt.Sprintf("/cost/r%04d", row)
}

func incidentNode(row int) string {
	return fmt.Sprintf("/incident/r%04d", row)
}

// ProjectCostTuples converts the well-formed cost rows to facts.
func ProjectCostTuples(tuples []record.CostTuple) []ontology.Fact {
	var facts []ontology.Fact
	for _, t := range tuples {
		node := costNode(t.Row)
		facts = append(facts,
			ontology.Fact{Predicate: "is_a", Args: []any{node, "/CostTuple"}},
			ontology.Fact{Predicate: "has_family", Args: []any{node, nameOrString(t.MechanismFamily)}},
			ontology.Fact{Predicate: "has_cost_type", Args: []any{node, nameOrString(t.CostType)}},
			ontology.Fact{Predicate: "has_stakeholder", Args: []any{node, nameOrString(t.Stakeholder)}},
			ontology.Fact{Predicate: "has_time_horizon", Args: []any{node, nameOrString(t.TimeHorizon)}},
			ontology.Fact{Predicate: "has_magnitude", Args: []any{node, numberOrString(t.Magnitude)}},
			ontology.Fact{Predicate: "has_unit", Args: []any{node, t.Unit}},
			ontology.Fact{Predicate: "has_bearing_mode", Args: []any{node, nameOrString(t.BearingMode)}},
			ontology.Fact{Predicate: "has_evidence_grade", Args: []any{node, nameOrString(t.EvidenceGrade)}},
			ontology.Fact{Predicate: "has_data_origin", Args: []any{node, nameOrString(t.DataOrigin)}},
		)
		facts = appendOptional(facts, node, "has_source_key", t.SourceKey)
		facts = appendOptional(facts, node, "has_source_locator", t.SourceLocator)
		if t.BearingParty != "" {
			facts = append(facts, ontology.Fact{Predicate: "has_bearing_party", Args: []any{node, nameOrString(t.BearingParty)}})
		}
		if t.CostType == record.CostTypeOpportunity {
			facts = append(facts,
				ontology.Fact{Predicate: "has_forgone_value", Args: []any{node, numberOrString(t.ForgoneValue)}},
				ontology.Fact{Predicate: "has_realization_probability", Args: []any{node, numberOrString(t.RealizationProbability)}},
				ontology.Fact{Predicate: "has_discount_rate", Args: []any{node, numberOrString(t.DiscountRate)}},
				ontology.Fact{Predicate: "has_baseline_option", Args: []any{node, nameOrString(t.BaselineOption)}},
			)
		}
	}
	return facts
}

// ProjectIncidentTuples converts the well-formed incident rows to facts.
func ProjectIncidentTuples(tuples []record.IncidentTuple) []ontology.Fact {
	var facts []ontology.Fact
	for _, t := range tuples {
		node := incidentNode(t.Row)
		facts = append(facts,
			ontology.Fact{Predicate: "is_a", Args: []any{node, "/IncidentTuple"}},
			ontology.Fact{Predicate: "has_incident_label", Args: []any{node, t.IncidentLabel}},
			ontology.Fact{Predicate: "has_incident_category", Args: []any{node, nameOrString(t.IncidentCategory)}},
			ontology.Fact{Predicate: "has_linked_family", Args: []any{node, nameOrString(t.LinkedFamily)}},
			ontology.Fact{Predicate: "has_occurred_period", Args: []any{node, nameOrString(t.OccurredPeriod)}},
			ontology.Fact{Predicate: "has_loss_magnitude", Args: []any{node, numberOrString(t.LossMagnitude)}},
			ontology.Fact{Predicate: "has_loss_unit", Args: []any{node, t.LossUnit}},
			ontology.Fact{Predicate: "has_attribution_confidence", Args: []any{node, nameOrString(t.AttributionConfidence)}},
			ontology.Fact{Predicate: "has_evidence_grade", Args: []any{node, nameOrString(t.EvidenceGrade)}},
			ontology.Fact{Predicate: "has_data_origin", Args: []any{node, nameOrString(t.DataOrigin)}},
			ontology.Fact{Predicate: "has_source_key", Args: []any{node, t.SourceKey}},
			ontology.Fact{Predicate: "has_source_locator", Args: []any{node, t.SourceLocator}},
		)
	}
	return facts
}

func appendOptional(facts []ontology.Fact, node, predicate, value string) []ontology.Fact {
	if value == "" {
		return facts
	}
	return append(facts, ontology.Fact{Predicate: predicate, Args: []any{node, value}})
}

// nameOrString promotes identifier-like values to name constants. A
// value that is not a clean identifier stays a string, where a SHACL
// datatype/name constraint will flag it instead of crashing the run.
func nameOrString(value string) any {
	if !isIdentifier(value) {
		return value
	}
	return "/" + value
}

func numberOrString(value string) any {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
