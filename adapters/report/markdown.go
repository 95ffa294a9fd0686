// Package report renders a completed analysis run to markdown, HTML, or an
// XLSX workbook.
package report

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"itsa/domain/run"
	"itsa/domain/stats"
	"itsa/ports"
)

// MarkdownWriter renders the report as a single markdown document.
type MarkdownWriter struct {
	path string
}

func NewMarkdownWriter(path string) *MarkdownWriter {
	return &MarkdownWriter{path: path}
}

var _ ports.ReportWriter = (*MarkdownWriter)(nil)

func (w *MarkdownWriter) Name() string { return "markdown" }

func (w *MarkdownWriter) Write(ctx context.Context, r *run.Report) error {
	doc := Render(r)
	if err := os.WriteFile(w.path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	log.Printf("[Report] Wrote markdown report to %s", w.path)
	return nil
}

// Render builds the markdown document for a report.
func Render(r *run.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Interrupted time-series analysis\n\n")
	fmt.Fprintf(&b, "Run `%s` at %s over %d observations (dataset `%s`).\n\n",
		r.Manifest.ID, r.Manifest.CreatedAt, r.Manifest.Rows, shortHash(string(r.Manifest.Dataset)))

	b.WriteString("## Descriptive summary\n\n")
	writeSummaryTable(&b, r.Summaries)

	for _, mr := range r.Models {
		m := mr.Model
		fmt.Fprintf(&b, "## Model: %s (%s)\n\n", m.Name, m.Family)
		fmt.Fprintf(&b, "Deviance %.2f on %d residual df, dispersion %.3f, %d IRLS iterations.\n\n",
			m.Deviance, m.ResidualDF, m.Dispersion, m.Iterations)
		writeCoefficientTable(&b, mr.Coefficients)
		if mr.Correlogram != nil {
			writeCorrelogram(&b, mr.Correlogram)
		}
	}

	for _, ps := range r.Predictions {
		fmt.Fprintf(&b, "## Predicted rates: %s\n\n", ps.ModelName)
		writePredictions(&b, ps)
	}

	if r.Comparison != nil {
		c := r.Comparison
		b.WriteString("## Nested model comparison\n\n")
		fmt.Fprintf(&b, "F-test of `%s` against `%s`: F(%d, %d) = %.3f, p = %s (dispersion %.3f).\n\n",
			c.Large, c.Small, c.NumDF, c.DenomDF, c.Statistic, formatP(c.PValue), c.Dispersion)
	}

	return b.String()
}

func writeSummaryTable(b *strings.Builder, rows []stats.VariableSummary) {
	b.WriteString("| variable | period | n | mean | sd | median | IQR | min | max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, s := range rows {
		fmt.Fprintf(b, "| %s | %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			s.Variable, s.Period, s.N, s.Mean, s.StdDev, s.Median, s.IQR, s.Min, s.Max)
	}
	b.WriteString("\n")
}

func writeCoefficientTable(b *strings.Builder, rows []stats.CoefficientEstimate) {
	if len(rows) == 0 {
		return
	}
	level := int(math.Round(rows[0].Level * 100))
	fmt.Fprintf(b, "| term | estimate | std err | stat | p | %d%% CI | rate ratio | RR %d%% CI |\n", level, level)
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, c := range rows {
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %.2f | %s | (%.4f, %.4f) | %.4f | (%.4f, %.4f) |\n",
			c.Term, c.Estimate, c.StdErr, c.Statistic, formatP(c.PValue),
			c.Lower, c.Upper, c.RateRatio, c.RRLower, c.RRUpper)
	}
	b.WriteString("\n")
}

func writeCorrelogram(b *strings.Builder, c *stats.Correlogram) {
	fmt.Fprintf(b, "Residual correlogram, white-noise bound ±%.3f", c.Bound)
	if c.LjungBox != nil {
		fmt.Fprintf(b, "; Ljung-Box Q(%d) = %.2f, p = %s",
			c.LjungBox.Lags, c.LjungBox.Statistic, formatP(c.LjungBox.PValue))
	}
	b.WriteString(".\n\n")

	b.WriteString("| lag | ACF | PACF |\n|---|---|---|\n")
	for k := 1; k < len(c.ACF); k++ {
		fmt.Fprintf(b, "| %d | %s | %s |\n", k, markExceeds(c.ACF[k], c.Bound), markExceeds(c.PACF[k], c.Bound))
	}
	b.WriteString("\n")
}

// writePredictions emits whole-month grid rows only; the dense grid lives in
// the workbook.
func writePredictions(b *strings.Builder, ps stats.PredictionSet) {
	fmt.Fprintf(b, "Rates per %.0f (deseasonalized at month %d).\n\n", ps.ReferencePop, ps.ReferenceMonth)
	b.WriteString("| time | fitted | counterfactual | deseasonalized |\n|---|---|---|---|\n")
	for i := range ps.Fitted {
		t := ps.Fitted[i].TimeIndex
		if t != math.Trunc(t) {
			continue
		}
		fmt.Fprintf(b, "| %.0f | %.2f | %.2f | %.2f |\n",
			t, ps.Fitted[i].Rate, ps.Counterfactual[i].Rate, ps.Deseasonalized[i].Rate)
	}
	b.WriteString("\n")
}

func markExceeds(v, bound float64) string {
	if math.Abs(v) > bound {
		return fmt.Sprintf("**%.3f**", v)
	}
	return fmt.Sprintf("%.3f", v)
}

func formatP(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
