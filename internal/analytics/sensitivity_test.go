package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costkb/internal/record"
)

func perfRow(family, magnitude, grade string) record.CostTuple {
	return record.CostTuple{
		MechanismFamily: family,
		CostType:        microperfCostType,
		Magnitude:       magnitude,
		Unit:            "percent_runtime_overhead",
		EvidenceGrade:   grade,
		BearingMode:     "Internal",
	}
}

func TestSensitivityRankingsScenarios(t *testing.T) {
	costs := []record.CostTuple{
		perfRow("pa", "4.0", "E1"),
		perfRow("pa", "6.0", "E1"),
		perfRow("cfi", "3.0", "E1"),
		perfRow("cfi", "5.0", "E2"),
		// Wrong cost type and wrong unit never enter the means.
		{MechanismFamily: "pa", CostType: "EngineeringCost", Magnitude: "100", Unit: "percent_runtime", EvidenceGrade: "E1"},
		{MechanismFamily: "pa", CostType: microperfCostType, Magnitude: "100", Unit: "engineer_months", EvidenceGrade: "E1"},
	}

	rows := SensitivityRankings(costs)
	require.Len(t, rows, 6) // 2 families x 3 scenarios

	byScenario := make(map[string][]SensitivityRow)
	for _, r := range rows {
		byScenario[r.Scenario] = append(byScenario[r.Scenario], r)
	}
	require.Len(t, byScenario, 3)

	// Baseline: pa mean 5.0, cfi mean 4.0 -> cfi ranks first (cheapest).
	base := byScenario["baseline"]
	require.Len(t, base, 2)
	assert.Equal(t, "cfi", base[0].Family)
	assert.Equal(t, 1, base[0].Rank)
	assert.InDelta(t, 4.0, base[0].Mean, 1e-9)
	assert.Equal(t, "pa", base[1].Family)
	assert.InDelta(t, 5.0, base[1].Mean, 1e-9)

	// Only the E2 row scales: cfi minus20 mean = (3.0 + 5.0*0.8)/2.
	minus := byScenario["minus20_e2e3"]
	require.Len(t, minus, 2)
	assert.Equal(t, "cfi", minus[0].Family)
	assert.InDelta(t, 3.5, minus[0].Mean, 1e-9)
	assert.InDelta(t, 5.0, minus[1].Mean, 1e-9) // pa rows are E1, untouched

	plus := byScenario["plus20_e2e3"]
	require.Len(t, plus, 2)
	assert.Equal(t, "cfi", plus[0].Family)
	assert.InDelta(t, 4.5, plus[0].Mean, 1e-9)
}

func TestSensitivityRankingsSkipsUnparsableMagnitude(t *testing.T) {
	costs := []record.CostTuple{
		perfRow("pa", "4.0", "E1"),
		perfRow("pa", "not_a_number", "E1"),
	}
	rows := SensitivityRankings(costs)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.InDelta(t, 4.0, r.Mean, 1e-9)
	}
}

func TestSensitivityRankingsTieBreakByFamily(t *testing.T) {
	costs := []record.CostTuple{
		perfRow("beta", "4.0", "E1"),
		perfRow("alpha", "4.0", "E1"),
	}
	rows := SensitivityRankings(costs)
	require.Len(t, rows, 6)
	assert.Equal(t, "alpha", rows[0].Family)
	assert.Equal(t, "beta", rows[1].Family)
}

func TestRankingStable(t *testing.T) {
	stable := []record.CostTuple{
		perfRow("pa", "6.0", "E1"),
		perfRow("cfi", "3.0", "E1"),
		perfRow("cfi", "5.0", "E2"),
	}
	assert.True(t, RankingStable(SensitivityRankings(stable)))

	// cfi's mean rides entirely on weak evidence close to pa's; the +20%
	// scenario flips the order.
	unstable := []record.CostTuple{
		perfRow("pa", "5.0", "E1"),
		perfRow("cfi", "4.5", "E3"),
	}
	rows := SensitivityRankings(unstable)
	assert.False(t, RankingStable(rows))

	assert.False(t, RankingStable(nil))
}
