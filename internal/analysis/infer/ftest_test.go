package infer

import (
	"errors"
	"testing"

	"itsa/domain/core"
	"itsa/domain/model"
	"itsa/internal/analysis/glm"
	"itsa/internal/testkit"
)

func TestCompareFDetectsStepEffect(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.StepRR = 1.5

	ds, err := testkit.Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	trendOnly, err := glm.Fit("trend", model.FormulaSpec{Trend: true}, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("trend fit: %v", err)
	}
	withStep, err := glm.Fit("step", model.FormulaSpec{Step: true, Trend: true}, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("step fit: %v", err)
	}

	res, err := CompareF(trendOnly, withStep)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.NumDF != 1 {
		t.Fatalf("one added term, expected 1 numerator df, got %d", res.NumDF)
	}
	if res.DenomDF != withStep.ResidualDF {
		t.Fatalf("denominator df must be the larger model's residual df")
	}
	if res.Dispersion != withStep.Dispersion {
		t.Fatalf("dispersion must come from the larger model")
	}
	if res.PValue > 0.001 {
		t.Fatalf("true RR 1.5 should produce a significant F-test, p=%.6f (F=%.3f)", res.PValue, res.Statistic)
	}
}

func TestCompareFNullSlopeChangeIsNotSignificant(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.StepRR = 1.4 // real step, no true slope change

	ds, err := testkit.Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	seasonal := model.FormulaSpec{Step: true, Trend: true, HarmonicPairs: 2}
	slope := seasonal
	slope.Interaction = true

	small, err := glm.Fit("seasonal", seasonal, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("seasonal fit: %v", err)
	}
	large, err := glm.Fit("slope", slope, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("slope fit: %v", err)
	}

	res, err := CompareF(small, large)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.Statistic < 0 {
		t.Fatalf("F statistic must be non-negative, got %.4f", res.Statistic)
	}
	if res.PValue < 0.001 {
		t.Fatalf("no true slope change, but p=%.6f", res.PValue)
	}
}

func TestCompareFRejectsNonNestedPairs(t *testing.T) {
	ds, err := testkit.Generate(testkit.DefaultConfig())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	base, err := glm.Fit("base", model.FormulaSpec{Step: true, Trend: true}, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("base fit: %v", err)
	}
	seasonal, err := glm.Fit("seasonal", model.FormulaSpec{Step: true, Trend: true, HarmonicPairs: 2}, model.QuasiPoisson, ds)
	if err != nil {
		t.Fatalf("seasonal fit: %v", err)
	}
	poisson, err := glm.Fit("poisson", model.FormulaSpec{Step: true, Trend: true}, model.Poisson, ds)
	if err != nil {
		t.Fatalf("poisson fit: %v", err)
	}

	if _, err := CompareF(seasonal, base); !errors.Is(err, core.ErrNotNested) {
		t.Fatalf("reversed nesting must be rejected, got %v", err)
	}
	if _, err := CompareF(poisson, seasonal); !errors.Is(err, core.ErrNotNested) {
		t.Fatalf("mixed families must be rejected, got %v", err)
	}
	if _, err := CompareF(base, base); !errors.Is(err, core.ErrNotNested) {
		t.Fatalf("identical models have no added terms, got %v", err)
	}

	short := testkit.DefaultConfig()
	short.Months = 48
	short.InterventionAt = 25
	dsShort, err := testkit.Generate(short)
	if err != nil {
		t.Fatalf("generate short: %v", err)
	}
	otherObs, err := glm.Fit("short", model.FormulaSpec{Step: true, Trend: true, HarmonicPairs: 2}, model.QuasiPoisson, dsShort)
	if err != nil {
		t.Fatalf("short fit: %v", err)
	}
	if _, err := CompareF(base, otherObs); !errors.Is(err, core.ErrNotNested) {
		t.Fatalf("different observation sets must be rejected, got %v", err)
	}

	// same size is not the same data: the fingerprint must distinguish them
	alt := testkit.DefaultConfig()
	alt.Seed = 7
	dsAlt, err := testkit.Generate(alt)
	if err != nil {
		t.Fatalf("generate alt: %v", err)
	}
	altSeasonal, err := glm.Fit("alt", model.FormulaSpec{Step: true, Trend: true, HarmonicPairs: 2}, model.QuasiPoisson, dsAlt)
	if err != nil {
		t.Fatalf("alt fit: %v", err)
	}
	if _, err := CompareF(base, altSeasonal); !errors.Is(err, core.ErrNotNested) {
		t.Fatalf("equally sized but different datasets must be rejected, got %v", err)
	}
}
