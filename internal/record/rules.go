package record

// ConditionalRule adds required columns when a discriminator column holds
// one of the listed values. Rules are evaluated uniformly per row; they
// are the only mechanism for conditional requirements.
type ConditionalRule struct {
	Field    string
	Values   []string
	Requires []string
}

// Schema is the required-field contract for one table.
type Schema struct {
	Required    []string
	Conditional []ConditionalRule
}

// CostSchema covers the cost-tuple table: nine unconditional columns,
// bearing_party when the cost is transferred or externalized, and the
// four alternative-use valuation columns for opportunity costs.
func CostSchema() Schema {
	return Schema{
		Required: []string{
			"mechanism_family",
			"cost_type",
			"stakeholder",
			"time_horizon",
			"magnitude",
			"unit",
			"bearing_mode",
			"evidence_grade",
			"data_origin",
		},
		Conditional: []ConditionalRule{
			{
				Field:    "bearing_mode",
				Values:   []string{BearingTransferred, BearingExternalized},
				Requires: []string{"bearing_party"},
			},
			{
				Field:  "cost_type",
				Values: []string{CostTypeOpportunity},
				Requires: []string{
					"forgone_value",
					"realization_probability",
					"discount_rate",
					"baseline_option",
				},
			},
		},
	}
}

// IncidentSchema covers the incident-tuple table; every column is
// unconditionally required.
func IncidentSchema() Schema {
	return Schema{
		Required: []string{
			"incident_label",
			"incident_category",
			"linked_family",
			"occurred_period",
			"loss_magnitude",
			"loss_unit",
			"attribution_confidence",
			"evidence_grade",
			"data_origin",
			"source_key",
			"source_locator",
		},
	}
}

// MissingFields returns the required columns that are empty in row,
// in schema order so violation reports are stable.
func (s Schema) MissingFields(row map[string]string) []string {
	var missing []string
	for _, col := range s.Required {
		if row[col] == "" {
			missing = append(missing, col)
		}
	}
	for _, rule := range s.Conditional {
		if !rule.matches(row[rule.Field]) {
			continue
		}
		for _, col := range rule.Requires {
			if row[col] == "" {
				missing = append(missing, col)
			}
		}
	}
	return missing
}

func (r ConditionalRule) matches(value string) bool {
	for _, v := range r.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Columns returns every column the schema can require, used to verify
// the header contract before any row is read.
func (s Schema) Columns() []string {
	cols := append([]string(nil), s.Required...)
	for _, rule := range s.Conditional {
		cols = append(cols, rule.Requires...)
	}
	return cols
}
