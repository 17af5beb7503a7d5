package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const costHeader = "mechanism_family,cost_type,stakeholder,time_horizon,magnitude,unit,bearing_mode,evidence_grade,data_origin,source_key,source_locator,bearing_party,forgone_value,realization_probability,discount_rate,baseline_option"

func writeTable(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func costLine(overrides map[string]string) string {
	fields := map[string]string{
		"mechanism_family": "pointer_authentication",
		"cost_type":        "EngineeringCost",
		"stakeholder":      "vendor",
		"time_horizon":     "long_term",
		"magnitude":        "4",
		"unit":             "engineer_months",
		"bearing_mode":     "Internal",
		"evidence_grade":   "E1",
		"data_origin":      "measured",
		"source_key":       "src",
		"source_locator":   "doc",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	cols := strings.Split(costHeader, ",")
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = fields[col]
	}
	return strings.Join(out, ",")
}

func TestLoadCostTuplesAccumulatesViolations(t *testing.T) {
	// Ten rows; row 7 is an opportunity cost missing one valuation
	// field. The load must keep the other nine and report exactly one
	// violation, attributed to row 7.
	lines := []string{costHeader}
	for i := 1; i <= 10; i++ {
		if i == 7 {
			lines = append(lines, costLine(map[string]string{
				"cost_type":               CostTypeOpportunity,
				"forgone_value":           "10.0",
				"realization_probability": "0.4",
				"discount_rate":           "", // missing
				"baseline_option":         "status_quo",
			}))
			continue
		}
		lines = append(lines, costLine(nil))
	}

	tuples, violations, err := LoadCostTuples(writeTable(t, lines...))
	require.NoError(t, err)
	assert.Len(t, tuples, 9)
	require.Len(t, violations, 1)
	assert.Equal(t, 7, violations[0].Row)
	assert.Equal(t, []string{"discount_rate"}, violations[0].Missing)
}

func TestLoadCostTuplesKeepsConditionalFields(t *testing.T) {
	path := writeTable(t, costHeader, costLine(map[string]string{
		"bearing_mode":  BearingTransferred,
		"bearing_party": "downstream_vendor",
	}))

	tuples, violations, err := LoadCostTuples(path)
	require.NoError(t, err)
	require.Empty(t, violations)
	require.Len(t, tuples, 1)
	assert.Equal(t, 1, tuples[0].Row)
	assert.Equal(t, "downstream_vendor", tuples[0].BearingParty)
	assert.True(t, tuples[0].Transfers())
}

func TestLoadCostTuplesHeaderContract(t *testing.T) {
	// bearing_party is conditional but still part of the header
	// contract; a table without the column cannot express the rule.
	header := strings.Replace(costHeader, "bearing_party", "bp", 1)
	_, _, err := LoadCostTuples(writeTable(t, header))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header contract")
	assert.Contains(t, err.Error(), "bearing_party")
}

func TestLoadCostTuplesShortRowIsViolation(t *testing.T) {
	// A ragged row reads as empty trailing fields, so it surfaces as a
	// missing-field violation rather than aborting the load.
	path := writeTable(t, costHeader, "pointer_authentication,EngineeringCost,vendor")
	tuples, violations, err := LoadCostTuples(path)
	require.NoError(t, err)
	assert.Empty(t, tuples)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Missing, "magnitude")
}

func TestLoadCostTuplesTrimsWhitespace(t *testing.T) {
	path := writeTable(t, costHeader, costLine(map[string]string{
		"mechanism_family": "  pointer_authentication ",
		"magnitude":        " 4.5 ",
	}))
	tuples, violations, err := LoadCostTuples(path)
	require.NoError(t, err)
	require.Empty(t, violations)
	require.Len(t, tuples, 1)
	assert.Equal(t, "pointer_authentication", tuples[0].MechanismFamily)
	assert.Equal(t, "4.5", tuples[0].Magnitude)
}

func TestLoadIncidentTuples(t *testing.T) {
	header := "incident_label,incident_category,linked_family,occurred_period,loss_magnitude,loss_unit,attribution_confidence,evidence_grade,data_origin,source_key,source_locator"
	path := writeTable(t, header,
		"spectre_bypass,bypass,control_flow_integrity,2019,1.2,million_usd,medium,E1,report,inc1,url1",
		"pac_forgery,forgery,pointer_authentication,2022,,million_usd,low,E2,report,inc2,url2",
	)

	tuples, violations, err := LoadIncidentTuples(path)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, "spectre_bypass", tuples[0].IncidentLabel)
	assert.Equal(t, "control_flow_integrity", tuples[0].LinkedFamily)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Row)
	assert.Equal(t, []string{"loss_magnitude"}, violations[0].Missing)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := LoadCostTuples(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
