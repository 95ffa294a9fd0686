package run

import (
	"testing"

	"itsa/domain/model"
)

func TestFinalModel(t *testing.T) {
	r := &Report{}
	if r.FinalModel() != nil {
		t.Fatal("empty report should have no final model")
	}

	first := &model.FittedModel{Name: "poisson"}
	last := &model.FittedModel{Name: "quasipoisson-seasonal-slope"}
	r.Models = []ModelReport{{Model: first}, {Model: last}}

	got := r.FinalModel()
	if got != last {
		t.Fatalf("expected the last ladder rung, got %v", got)
	}
}
