// Package pipeline runs the generator end to end: load every input,
// project the records into the data graph, evaluate the validation and
// analytics layers, and emit the five artifacts. One pass, one thread,
// deterministic output; fatal errors abort before the first artifact is
// written.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"costkb/internal/analytics"
	"costkb/internal/artifact"
	"costkb/internal/config"
	"costkb/internal/cq"
	"costkb/internal/manifest"
	"costkb/internal/ontology"
	"costkb/internal/record"
	"costkb/internal/shacl"
)

// Summary carries the counts the external acceptance gate re-derives
// from the artifacts and the raw inputs.
type Summary struct {
	RunID string

	CostRows           int
	CostViolations     int
	IncidentRows       int
	IncidentViolations int

	CQRows          int
	VOIRows         int
	SensitivityRows int
	ObjectiveRows   int
	SHACLRows       int
	SHACLFailures   int
}

// Run executes one generator pass. The returned Summary is valid only
// when err is nil; on error no artifact has been published.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Summary, error) {
	startedAt := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, configErr(err)
	}

	// Definitional inputs first: a battery or shape set that cannot be
	// parsed must stop the run while the output directory is untouched.
	store, err := ontology.Load(cfg.Inputs.Ontology)
	if err != nil {
		return nil, querySetErr(err)
	}
	battery, err := cq.LoadBattery(cfg.Inputs.CQSet)
	if err != nil {
		return nil, querySetErr(err)
	}
	shapes, err := shacl.LoadShapeSet(cfg.Inputs.ShapeSet)
	if err != nil {
		return nil, querySetErr(err)
	}
	weights, err := analytics.LoadWeights(cfg.Inputs.Weights)
	if err != nil {
		return nil, configErr(err)
	}

	costs, costViolations, err := record.LoadCostTuples(cfg.Inputs.CostTuples)
	if err != nil {
		return nil, configErr(err)
	}
	incidents, incidentViolations, err := record.LoadIncidentTuples(cfg.Inputs.IncidentTuples)
	if err != nil {
		return nil, configErr(err)
	}
	logger.Info("records loaded",
		zap.Int("cost_rows", len(costs)),
		zap.Int("cost_violations", len(costViolations)),
		zap.Int("incident_rows", len(incidents)),
		zap.Int("incident_violations", len(incidentViolations)))
	for _, v := range costViolations {
		logger.Warn("cost tuple rejected", zap.Int("row", v.Row), zap.Strings("missing", v.Missing))
	}
	for _, v := range incidentViolations {
		logger.Warn("incident tuple rejected", zap.Int("row", v.Row), zap.Strings("missing", v.Missing))
	}

	// Merge the well-formed records into the graph and run the
	// ontology's rules once. Vocabulary drift between records and
	// ontology is a configuration error, not a data defect.
	if err := store.AddFacts(ProjectCostTuples(costs)); err != nil {
		return nil, configErr(err)
	}
	if err := store.AddFacts(ProjectIncidentTuples(incidents)); err != nil {
		return nil, configErr(err)
	}
	if err := store.Evaluate(); err != nil {
		return nil, querySetErr(err)
	}

	if err := battery.Validate(store); err != nil {
		return nil, querySetErr(err)
	}
	if err := shapes.Validate(store); err != nil {
		return nil, configErr(err)
	}

	cqResults, err := cq.Evaluate(store, battery)
	if err != nil {
		return nil, querySetErr(err)
	}
	shaclResults := shacl.Validate(store, shapes)
	voiRows := analytics.VOIPriorities(costs, incidents)
	sensitivityRows := analytics.SensitivityRankings(costs)
	objectiveRows := analytics.CompareObjectives(costs, incidents, weights)

	summary := &Summary{
		RunID:              uuid.NewString(),
		CostRows:           len(costs),
		CostViolations:     len(costViolations),
		IncidentRows:       len(incidents),
		IncidentViolations: len(incidentViolations),
		CQRows:             len(cqResults),
		VOIRows:            len(voiRows),
		SensitivityRows:    len(sensitivityRows),
		ObjectiveRows:      len(objectiveRows),
		SHACLRows:          len(shaclResults),
		SHACLFailures:      shacl.FailCount(shaclResults),
	}

	tables := []artifact.Table{
		artifact.CQResults(cqResults),
		artifact.SHACLResults(shaclResults),
		artifact.VOIPriorities(voiRows),
		artifact.SensitivityRankings(sensitivityRows),
		artifact.ObjectiveComparisons(objectiveRows),
	}
	for _, t := range tables {
		if err := artifact.Write(cfg.OutDir, t); err != nil {
			return nil, err
		}
		logger.Info("artifact written", zap.String("file", t.Name), zap.Int("rows", len(t.Rows)))
	}

	if cfg.Manifest != "" {
		if err := recordRun(ctx, cfg, summary, startedAt, tables); err != nil {
			// The artifacts are already published; a manifest failure
			// degrades auditability, not correctness.
			logger.Warn("manifest not recorded", zap.Error(err))
		}
	}

	logger.Info("run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("shacl_failures", summary.SHACLFailures),
		zap.Duration("elapsed", time.Since(startedAt)))
	return summary, nil
}

func recordRun(ctx context.Context, cfg *config.Config, s *Summary, startedAt time.Time, tables []artifact.Table) error {
	digests, err := manifest.DigestInputs(cfg.Paths())
	if err != nil {
		return err
	}
	store, err := manifest.Open(cfg.Manifest)
	if err != nil {
		return err
	}
	defer store.Close()

	rows := make(map[string]int, len(tables))
	for _, t := range tables {
		rows[t.Name] = len(t.Rows)
	}
	return store.Record(ctx, manifest.Run{
		ID:                 s.RunID,
		StartedAt:          startedAt,
		InputDigests:       digests,
		CostRows:           s.CostRows,
		CostViolations:     s.CostViolations,
		IncidentRows:       s.IncidentRows,
		IncidentViolations: s.IncidentViolations,
		SHACLFailures:      s.SHACLFailures,
		ArtifactRows:       rows,
	})
}
