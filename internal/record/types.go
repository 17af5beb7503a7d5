// Package record parses the cost-tuple and incident-tuple tables into
// validated in-memory records. Required-field rules are data-driven: the
// unconditional column set plus a conditional rule table keyed by field
// value (see rules.go), so new cost types are a table change, not a code
// change.
package record

// Bearing modes that imply a counterparty.
const (
	BearingTransferred  = "Transferred"
	BearingExternalized = "Externalized"
)

// CostTypeOpportunity triggers the alternative-use valuation fields.
const CostTypeOpportunity = "OpportunityCost"

// CostTuple is one claimed or estimated cost item. Magnitude and the
// opportunity fields stay as strings: the loader only enforces presence,
// and each analytic parses what it needs (unparsable magnitudes are
// skipped per metric, matching the upstream pipeline).
type CostTuple struct {
	Row int // 1-based data row in the source table

	MechanismFamily string
	CostType        string
	Stakeholder     string
	TimeHorizon     string
	Magnitude       string
	Unit            string
	BearingMode     string
	EvidenceGrade   string
	DataOrigin      string

	// Provenance, completeness checked by the CQ battery rather than
	// the loader.
	SourceKey     string
	SourceLocator string

	// Required iff BearingMode is Transferred or Externalized.
	BearingParty string

	// Required iff CostType is OpportunityCost.
	ForgoneValue           string
	RealizationProbability string
	DiscountRate           string
	BaselineOption         string
}

// IncidentTuple is one observed incident record. All eleven fields are
// unconditionally required.
type IncidentTuple struct {
	Row int

	IncidentLabel         string
	IncidentCategory      string
	LinkedFamily          string
	OccurredPeriod        string
	LossMagnitude         string
	LossUnit              string
	AttributionConfidence string
	EvidenceGrade         string
	DataOrigin            string
	SourceKey             string
	SourceLocator         string
}

// Violation attributes missing required fields to a single source row.
// Violations accumulate; a bad row never aborts the load.
type Violation struct {
	Row     int
	Missing []string
}

// Transfers reports whether the tuple's cost is carried by a counterparty.
func (t CostTuple) Transfers() bool {
	return t.BearingMode == BearingTransferred || t.BearingMode == BearingExternalized
}
