package artifact

import (
	"strconv"

	"costkb/internal/analytics"
	"costkb/internal/cq"
	"costkb/internal/shacl"
)

// Artifact file names, fixed contract with the external aggregator.
const (
	CQResultsFile            = "cq_results.csv"
	VOIPrioritiesFile        = "voi_priorities.csv"
	SensitivityRankingsFile  = "sensitivity_rankings.csv"
	ObjectiveComparisonsFile = "objective_comparisons.csv"
	SHACLResultsFile         = "shacl_results.csv"
)

// CQResults lays out the competency-question verdicts.
func CQResults(results []cq.Result) Table {
	t := Table{
		Name:   CQResultsFile,
		Header: []string{"cq_id", "status", "evidence", "notes"},
	}
	for _, r := range results {
		t.Rows = append(t.Rows, []string{r.ID, r.Status, r.Evidence, r.Note})
	}
	return t
}

// VOIPriorities lays out the VOI ranking; scores carry two decimals,
// matching the upstream reproducibility contract.
func VOIPriorities(rows []analytics.VOIPriorityRow) Table {
	t := Table{
		Name: VOIPrioritiesFile,
		Header: []string{
			"priority_rank", "mechanism_family", "cost_type",
			"e2_rows", "e3_rows", "transfer_externalized_rows",
			"incident_link_rows", "voi_score",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Rank),
			r.Family,
			r.CostType,
			strconv.Itoa(r.E2Rows),
			strconv.Itoa(r.E3Rows),
			strconv.Itoa(r.TransferRows),
			strconv.Itoa(r.IncidentLinks),
			strconv.FormatFloat(r.Score, 'f', 2, 64),
		})
	}
	return t
}

// SensitivityRankings lays out the scenario rankings; means carry four
// decimals.
func SensitivityRankings(rows []analytics.SensitivityRow) Table {
	t := Table{
		Name:   SensitivityRankingsFile,
		Header: []string{"scenario", "rank", "mechanism_family", "mean_microperf_percent_runtime"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Scenario,
			strconv.Itoa(r.Rank),
			r.Family,
			strconv.FormatFloat(r.Mean, 'f', 4, 64),
		})
	}
	return t
}

// ObjectiveComparisons lays out the weighted comparison; scores carry
// four decimals.
func ObjectiveComparisons(rows []analytics.ObjectiveRow) Table {
	t := Table{
		Name: ObjectiveComparisonsFile,
		Header: []string{
			"rank", "mechanism_family",
			"cost_score", "evidence_score", "incident_score", "containment_score",
			"aggregate_score",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Rank),
			r.Family,
			strconv.FormatFloat(r.CostScore, 'f', 4, 64),
			strconv.FormatFloat(r.EvidenceScore, 'f', 4, 64),
			strconv.FormatFloat(r.IncidentScore, 'f', 4, 64),
			strconv.FormatFloat(r.ContainmentScore, 'f', 4, 64),
			strconv.FormatFloat(r.Aggregate, 'f', 4, 64),
		})
	}
	return t
}

// SHACLResults lays out the constraint verdicts.
func SHACLResults(results []shacl.Result) Table {
	t := Table{
		Name:   SHACLResultsFile,
		Header: []string{"shape_id", "focus_node", "path", "status", "message"},
	}
	for _, r := range results {
		t.Rows = append(t.Rows, []string{r.ShapeID, r.FocusNode, r.Path, r.Status, r.Message})
	}
	return t
}
