package run

import (
	"itsa/domain/core"
	"itsa/domain/model"
	"itsa/domain/stats"
)

// Manifest records what a run was computed from, for audit. Seed is set only
// when the observations came from a seeded synthetic source.
type Manifest struct {
	ID          core.RunID              `json:"id"`
	CreatedAt   core.Timestamp          `json:"created_at"`
	Dataset     core.DatasetFingerprint `json:"dataset_fingerprint"`
	Rows        int                     `json:"rows"`
	ModelLadder []string                `json:"model_ladder"`
	Seed        uint64                  `json:"seed,omitempty"`
}

// ModelReport is everything reported for one rung of the model ladder.
type ModelReport struct {
	Model        *model.FittedModel          `json:"model"`
	Coefficients []stats.CoefficientEstimate `json:"coefficients"`
	Correlogram  *stats.Correlogram          `json:"correlogram"`
}

// Report is the complete output of one analysis run, assembled once and then
// handed read-only to every report writer.
type Report struct {
	Manifest    Manifest                `json:"manifest"`
	Summaries   []stats.VariableSummary `json:"summaries"`
	Models      []ModelReport           `json:"models"`
	Predictions []stats.PredictionSet   `json:"predictions"`
	Comparison  *stats.NestedFTest      `json:"comparison,omitempty"`
}

// FinalModel returns the last rung of the ladder, or nil before any fit.
func (r *Report) FinalModel() *model.FittedModel {
	if len(r.Models) == 0 {
		return nil
	}
	return r.Models[len(r.Models)-1].Model
}
