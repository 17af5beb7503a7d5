// Package analytics computes the ranked decision metrics over the
// well-formed records: value-of-information priorities, perturbation
// sensitivity rankings, and the weighted multi-objective comparison.
// Every ranking documents its secondary sort key at the sort site; the
// outputs must be byte-stable across runs.
package analytics

import (
	"sort"

	"costkb/internal/record"
)

// VOI scoring weights. Weak evidence rows (E2 heuristic, E3 anecdotal)
// and transferred/externalized rows raise the expected value of
// resolving uncertainty; linked incidents raise the stakes.
const (
	voiWeightE2       = 1.0
	voiWeightE3       = 2.0
	voiWeightTransfer = 1.2
	voiWeightIncident = 0.8
)

// VOIPriorityRow is one (family, cost type) cell of the VOI ranking.
type VOIPriorityRow struct {
	Rank          int
	Family        string
	CostType      string
	E2Rows        int
	E3Rows        int
	TransferRows  int
	IncidentLinks int
	Score         float64
}

// VOIPriorities scores every (mechanism family, cost type) cell and
// ranks descending by score; ties break ascending by family, then cost
// type, so identical inputs always yield identical rank order.
func VOIPriorities(costs []record.CostTuple, incidents []record.IncidentTuple) []VOIPriorityRow {
	incidentsByFamily := make(map[string]int)
	for _, inc := range incidents {
		incidentsByFamily[inc.LinkedFamily]++
	}

	type cellKey struct{ family, costType string }
	cells := make(map[cellKey]*VOIPriorityRow)
	for _, t := range costs {
		key := cellKey{t.MechanismFamily, t.CostType}
		row, ok := cells[key]
		if !ok {
			row = &VOIPriorityRow{Family: t.MechanismFamily, CostType: t.CostType}
			cells[key] = row
		}
		switch t.EvidenceGrade {
		case "E2":
			row.E2Rows++
		case "E3":
			row.E3Rows++
		}
		if t.Transfers() {
			row.TransferRows++
		}
	}

	rows := make([]VOIPriorityRow, 0, len(cells))
	for _, row := range cells {
		row.IncidentLinks = incidentsByFamily[row.Family]
		row.Score = voiWeightE2*float64(row.E2Rows) +
			voiWeightE3*float64(row.E3Rows) +
			voiWeightTransfer*float64(row.TransferRows) +
			voiWeightIncident*float64(row.IncidentLinks)
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Family != rows[j].Family {
			return rows[i].Family < rows[j].Family
		}
		return rows[i].CostType < rows[j].CostType
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
