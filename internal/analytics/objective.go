package analytics

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"costkb/internal/record"
)

// The comparator scores each mechanism family as a risk-bearing
// arrangement over a fixed objective registry. Weights come from the
// external weight table and are validated strictly: a negative weight or
// an unknown objective is a configuration error and produces no rows.
const (
	ObjectiveCost        = "cost"        // lower mean magnitude is better
	ObjectiveEvidence    = "evidence"    // higher share of E0/E1 rows is better
	ObjectiveIncidents   = "incidents"   // fewer linked incidents is better
	ObjectiveContainment = "containment" // higher internally-borne share is better
)

var objectiveRegistry = []string{
	ObjectiveCost,
	ObjectiveEvidence,
	ObjectiveIncidents,
	ObjectiveContainment,
}

// Weights maps objective name to a non-negative weight. Objectives
// absent from the table weigh zero; weights need not sum to one.
type Weights map[string]float64

// LoadWeights reads the objective-weight table. All validation failures
// here are configuration errors: the run must stop before any output.
func LoadWeights(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weight table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read weight table: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 || rows[0][0] != "objective" || rows[0][1] != "weight" {
		return nil, fmt.Errorf("weight table %s violates header contract (want objective,weight)", path)
	}

	w := make(Weights, len(rows)-1)
	for i, row := range rows[1:] {
		name := strings.TrimSpace(row[0])
		if !knownObjective(name) {
			return nil, fmt.Errorf("weight table row %d: unknown objective %q", i+1, name)
		}
		if _, dup := w[name]; dup {
			return nil, fmt.Errorf("weight table row %d: duplicate objective %q", i+1, name)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("weight table row %d: bad weight %q", i+1, row[1])
		}
		if value < 0 {
			return nil, fmt.Errorf("weight table row %d: negative weight %v for %q", i+1, value, name)
		}
		w[name] = value
	}
	if len(w) == 0 {
		return nil, fmt.Errorf("weight table %s assigns no weights", path)
	}
	return w, nil
}

func knownObjective(name string) bool {
	for _, o := range objectiveRegistry {
		if o == name {
			return true
		}
	}
	return false
}

// ObjectiveRow is one compared arrangement with its per-objective
// weighted scores and aggregate.
type ObjectiveRow struct {
	Rank             int
	Family           string
	CostScore        float64
	EvidenceScore    float64
	IncidentScore    float64
	ContainmentScore float64
	Aggregate        float64
}

// CompareObjectives scores every family under the weight set. Metrics
// are min-max normalized across families (a metric with no spread scores
// 1.0 everywhere: it cannot discriminate). Rank descends by aggregate;
// ties break ascending by family.
func CompareObjectives(costs []record.CostTuple, incidents []record.IncidentTuple, w Weights) []ObjectiveRow {
	metrics := familyMetrics(costs, incidents)
	if len(metrics) == 0 {
		return nil
	}

	families := make([]string, 0, len(metrics))
	for fam := range metrics {
		families = append(families, fam)
	}
	sort.Strings(families)

	costN := normalize(families, metrics, func(m familyMetric) float64 { return m.meanMagnitude }, true)
	evidenceN := normalize(families, metrics, func(m familyMetric) float64 { return m.strongEvidenceShare }, false)
	incidentN := normalize(families, metrics, func(m familyMetric) float64 { return float64(m.incidentLinks) }, true)
	containN := normalize(families, metrics, func(m familyMetric) float64 { return m.containedShare }, false)

	rows := make([]ObjectiveRow, 0, len(families))
	for _, fam := range families {
		row := ObjectiveRow{
			Family:           fam,
			CostScore:        w[ObjectiveCost] * costN[fam],
			EvidenceScore:    w[ObjectiveEvidence] * evidenceN[fam],
			IncidentScore:    w[ObjectiveIncidents] * incidentN[fam],
			ContainmentScore: w[ObjectiveContainment] * containN[fam],
		}
		row.Aggregate = row.CostScore + row.EvidenceScore + row.IncidentScore + row.ContainmentScore
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Aggregate != rows[j].Aggregate {
			return rows[i].Aggregate > rows[j].Aggregate
		}
		return rows[i].Family < rows[j].Family
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

type familyMetric struct {
	meanMagnitude       float64
	strongEvidenceShare float64
	containedShare      float64
	incidentLinks       int
}

func familyMetrics(costs []record.CostTuple, incidents []record.IncidentTuple) map[string]familyMetric {
	incidentsByFamily := make(map[string]int)
	for _, inc := range incidents {
		incidentsByFamily[inc.LinkedFamily]++
	}

	type acc struct {
		magnitudeSum            float64
		magnitudeRows           int
		rows, strong, contained int
	}
	accs := make(map[string]*acc)
	for _, t := range costs {
		a, ok := accs[t.MechanismFamily]
		if !ok {
			a = &acc{}
			accs[t.MechanismFamily] = a
		}
		a.rows++
		if v, err := strconv.ParseFloat(t.Magnitude, 64); err == nil {
			a.magnitudeSum += v
			a.magnitudeRows++
		}
		if t.EvidenceGrade == "E0" || t.EvidenceGrade == "E1" {
			a.strong++
		}
		if !t.Transfers() {
			a.contained++
		}
	}

	metrics := make(map[string]familyMetric, len(accs))
	for fam, a := range accs {
		m := familyMetric{incidentLinks: incidentsByFamily[fam]}
		if a.magnitudeRows > 0 {
			m.meanMagnitude = a.magnitudeSum / float64(a.magnitudeRows)
		}
		m.strongEvidenceShare = float64(a.strong) / float64(a.rows)
		m.containedShare = float64(a.contained) / float64(a.rows)
		metrics[fam] = m
	}
	return metrics
}

// normalize rescales one metric to [0,1] across families; invert flips
// the scale for lower-is-better metrics.
func normalize(families []string, metrics map[string]familyMetric, pick func(familyMetric) float64, invert bool) map[string]float64 {
	min, max := pick(metrics[families[0]]), pick(metrics[families[0]])
	for _, fam := range families[1:] {
		v := pick(metrics[fam])
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make(map[string]float64, len(families))
	for _, fam := range families {
		if max == min {
			out[fam] = 1.0
			continue
		}
		n := (pick(metrics[fam]) - min) / (max - min)
		if invert {
			n = 1.0 - n
		}
		out[fam] = n
	}
	return out
}
