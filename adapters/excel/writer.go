// Package excel writes the analysis results workbook: one sheet per pipeline
// stage, with the dense prediction grid the markdown report elides.
package excel

import (
	"context"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"itsa/domain/run"
	"itsa/ports"
)

// WorkbookWriter renders the report to an XLSX workbook.
type WorkbookWriter struct {
	path string
}

func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

var _ ports.ReportWriter = (*WorkbookWriter)(nil)

func (w *WorkbookWriter) Name() string { return "workbook" }

func (w *WorkbookWriter) Write(ctx context.Context, r *run.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, r); err != nil {
		return err
	}
	if err := w.writeModels(f, r); err != nil {
		return err
	}
	if err := w.writeDiagnostics(f, r); err != nil {
		return err
	}
	if err := w.writePredictions(f, r); err != nil {
		return err
	}
	if err := w.writeComparison(f, r); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	log.Printf("[Report] Wrote workbook to %s", w.path)
	return nil
}

func (w *WorkbookWriter) writeSummary(f *excelize.File, r *run.Report) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "variable", "period", "n", "mean", "sd", "median", "iqr", "min", "max"); err != nil {
		return err
	}
	for i, s := range r.Summaries {
		if err := setRow(f, sheet, i+2, s.Variable, string(s.Period), s.N, s.Mean, s.StdDev, s.Median, s.IQR, s.Min, s.Max); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeModels(f *excelize.File, r *run.Report) error {
	const sheet = "Models"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "model", "family", "term", "estimate", "std_err", "statistic", "p_value",
		"ci_lower", "ci_upper", "rate_ratio", "rr_lower", "rr_upper", "dispersion", "deviance", "residual_df"); err != nil {
		return err
	}
	row := 2
	for _, mr := range r.Models {
		m := mr.Model
		for _, c := range mr.Coefficients {
			if err := setRow(f, sheet, row, m.Name, m.Family.String(), c.Term, c.Estimate, c.StdErr,
				c.Statistic, c.PValue, c.Lower, c.Upper, c.RateRatio, c.RRLower, c.RRUpper,
				m.Dispersion, m.Deviance, m.ResidualDF); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (w *WorkbookWriter) writeDiagnostics(f *excelize.File, r *run.Report) error {
	const sheet = "Diagnostics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "model", "lag", "acf", "pacf", "bound"); err != nil {
		return err
	}
	row := 2
	for _, mr := range r.Models {
		if mr.Correlogram == nil {
			continue
		}
		c := mr.Correlogram
		for k := 0; k < len(c.ACF); k++ {
			if err := setRow(f, sheet, row, mr.Model.Name, k, c.ACF[k], c.PACF[k], c.Bound); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (w *WorkbookWriter) writePredictions(f *excelize.File, r *run.Report) error {
	const sheet = "Predictions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "model", "time", "fitted", "counterfactual", "deseasonalized"); err != nil {
		return err
	}
	row := 2
	for _, ps := range r.Predictions {
		for i := range ps.Fitted {
			if err := setRow(f, sheet, row, ps.ModelName, ps.Fitted[i].TimeIndex,
				ps.Fitted[i].Rate, ps.Counterfactual[i].Rate, ps.Deseasonalized[i].Rate); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (w *WorkbookWriter) writeComparison(f *excelize.File, r *run.Report) error {
	if r.Comparison == nil {
		return nil
	}
	const sheet = "Comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	c := r.Comparison
	if err := setRow(f, sheet, 1, "small", "large", "f_statistic", "p_value", "num_df", "denom_df", "dispersion"); err != nil {
		return err
	}
	return setRow(f, sheet, 2, c.Small, c.Large, c.Statistic, c.PValue, c.NumDF, c.DenomDF, c.Dispersion)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
