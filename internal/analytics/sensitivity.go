package analytics

import (
	"sort"
	"strconv"
	"strings"

	"costkb/internal/record"
)

// The sensitivity method is a uniform perturbation: magnitudes of
// weak-evidence rows (E2/E3) are scaled by each scenario multiplier and
// the per-family means re-ranked. A stable ranking across scenarios
// means the comparison does not hinge on the weak evidence.
const (
	microperfCostType = "MicroarchitecturalPerformanceCost"
	microperfUnit     = "percent_runtime"
)

var sensitivityScenarios = []struct {
	Name       string
	Multiplier float64
}{
	{"baseline", 1.0},
	{"minus20_e2e3", 0.8},
	{"plus20_e2e3", 1.2},
}

// SensitivityRow is one family's position under one scenario.
type SensitivityRow struct {
	Scenario string
	Rank     int
	Family   string
	Mean     float64
}

// SensitivityRankings computes the three scenario rankings over the
// microarchitectural-performance rows. Within a scenario, rank ascends
// by mean runtime share (cheapest first); ties break ascending by
// family. Rows with unparsable magnitudes are skipped per scenario, the
// same tolerance the loader grants descriptive fields.
func SensitivityRankings(costs []record.CostTuple) []SensitivityRow {
	var rows []SensitivityRow
	for _, scenario := range sensitivityScenarios {
		means := familyMeans(costs, scenario.Multiplier)

		families := make([]string, 0, len(means))
		for fam := range means {
			families = append(families, fam)
		}
		sort.Slice(families, func(i, j int) bool {
			if means[families[i]] != means[families[j]] {
				return means[families[i]] < means[families[j]]
			}
			return families[i] < families[j]
		})

		for rank, fam := range families {
			rows = append(rows, SensitivityRow{
				Scenario: scenario.Name,
				Rank:     rank + 1,
				Family:   fam,
				Mean:     means[fam],
			})
		}
	}
	return rows
}

// RankingStable reports whether the family ordering is identical across
// all scenarios; the CQ battery cites this through the sensitivity
// artifact rather than recomputing it.
func RankingStable(rows []SensitivityRow) bool {
	orders := make(map[string][]string)
	for _, r := range rows {
		orders[r.Scenario] = append(orders[r.Scenario], r.Family)
	}
	baseline := orders["baseline"]
	if len(baseline) == 0 {
		return false
	}
	for _, order := range orders {
		if len(order) != len(baseline) {
			return false
		}
		for i := range order {
			if order[i] != baseline[i] {
				return false
			}
		}
	}
	return true
}

func familyMeans(costs []record.CostTuple, multiplier float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range costs {
		if t.CostType != microperfCostType || !strings.Contains(t.Unit, microperfUnit) {
			continue
		}
		value, err := strconv.ParseFloat(t.Magnitude, 64)
		if err != nil {
			continue
		}
		if t.EvidenceGrade == "E2" || t.EvidenceGrade == "E3" {
			value *= multiplier
		}
		sums[t.MechanismFamily] += value
		counts[t.MechanismFamily]++
	}

	means := make(map[string]float64, len(sums))
	for fam, sum := range sums {
		means[fam] = sum / float64(counts[fam])
	}
	return means
}
