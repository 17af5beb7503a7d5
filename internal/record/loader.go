package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCostTuples reads the cost-tuple table, returning the well-formed
// tuples and one Violation per row that misses a required field. Only
// I/O and header-contract problems are errors; data defects accumulate.
func LoadCostTuples(path string) ([]CostTuple, []Violation, error) {
	schema := CostSchema()
	rows, violations, err := loadTable(path, schema)
	if err != nil {
		return nil, nil, err
	}

	tuples := make([]CostTuple, 0, len(rows))
	for _, row := range rows {
		tuples = append(tuples, CostTuple{
			Row:                    row.num,
			MechanismFamily:        row.fields["mechanism_family"],
			CostType:               row.fields["cost_type"],
			Stakeholder:            row.fields["stakeholder"],
			TimeHorizon:            row.fields["time_horizon"],
			Magnitude:              row.fields["magnitude"],
			Unit:                   row.fields["unit"],
			BearingMode:            row.fields["bearing_mode"],
			EvidenceGrade:          row.fields["evidence_grade"],
			DataOrigin:             row.fields["data_origin"],
			SourceKey:              row.fields["source_key"],
			SourceLocator:          row.fields["source_locator"],
			BearingParty:           row.fields["bearing_party"],
			ForgoneValue:           row.fields["forgone_value"],
			RealizationProbability: row.fields["realization_probability"],
			DiscountRate:           row.fields["discount_rate"],
			BaselineOption:         row.fields["baseline_option"],
		})
	}
	return tuples, violations, nil
}

// LoadIncidentTuples reads the incident-tuple table with the same
// accumulate-don't-halt contract as LoadCostTuples.
func LoadIncidentTuples(path string) ([]IncidentTuple, []Violation, error) {
	schema := IncidentSchema()
	rows, violations, err := loadTable(path, schema)
	if err != nil {
		return nil, nil, err
	}

	tuples := make([]IncidentTuple, 0, len(rows))
	for _, row := range rows {
		tuples = append(tuples, IncidentTuple{
			Row:                   row.num,
			IncidentLabel:         row.fields["incident_label"],
			IncidentCategory:      row.fields["incident_category"],
			LinkedFamily:          row.fields["linked_family"],
			OccurredPeriod:        row.fields["occurred_period"],
			LossMagnitude:         row.fields["loss_magnitude"],
			LossUnit:              row.fields["loss_unit"],
			AttributionConfidence: row.fields["attribution_confidence"],
			EvidenceGrade:         row.fields["evidence_grade"],
			DataOrigin:            row.fields["data_origin"],
			SourceKey:             row.fields["source_key"],
			SourceLocator:         row.fields["source_locator"],
		})
	}
	return tuples, violations, nil
}

type tableRow struct {
	num    int // 1-based data row
	fields map[string]string
}

func loadTable(path string, schema Schema) ([]tableRow, []Violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row-shape defects are data violations, not fatal

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range schema.Columns() {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("table %s violates header contract: missing column %q", path, col)
		}
	}

	var (
		rows       []tableRow
		violations []Violation
		num        int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		num++

		fields := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(rec) {
				fields[name] = strings.TrimSpace(rec[i])
			}
		}

		if missing := schema.MissingFields(fields); len(missing) > 0 {
			violations = append(violations, Violation{Row: num, Missing: missing})
			continue
		}
		rows = append(rows, tableRow{num: num, fields: fields})
	}
	return rows, violations, nil
}
