package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"itsa/adapters/csvfile"
	"itsa/adapters/excel"
	"itsa/adapters/postgres"
	"itsa/adapters/report"
	"itsa/app"
	"itsa/internal/config"
	"itsa/internal/testkit"
	"itsa/ports"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "itsa",
		Short: "Interrupted time-series analysis of monthly count outcomes",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDescribeCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis pipeline and write reports",
		Long: `Load the observation set, summarize it, fit the four-model ladder
(Poisson, quasi-Poisson, + seasonal harmonics, + slope change), run residual
diagnostics, generate fitted/counterfactual/deseasonalized predictions, and
compare the final nested pair with a quasi-likelihood F-test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath != "" {
				os.Setenv("ITSA_DATA_SOURCE", "csv")
				os.Setenv("ITSA_CSV_PATH", csvPath)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			rep, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			final := rep.FinalModel()
			log.Printf("[CLI] Run %s complete: %d models, %d prediction sets, final %s (dispersion %.3f)",
				rep.Manifest.ID, len(rep.Models), len(rep.Predictions), final.Name, final.Dispersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file of observations (overrides ITSA_CSV_PATH)")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive summaries only",
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath != "" {
				os.Setenv("ITSA_DATA_SOURCE", "csv")
				os.Setenv("ITSA_CSV_PATH", csvPath)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := svc.Describe(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%-16s %-5s %5s %10s %10s %10s %10s %10s %10s\n",
				"variable", "period", "n", "mean", "sd", "median", "iqr", "min", "max")
			for _, s := range summaries {
				fmt.Printf("%-16s %-5s %5d %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
					s.Variable, s.Period, s.N, s.Mean, s.StdDev, s.Median, s.IQR, s.Min, s.Max)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file of observations (overrides ITSA_CSV_PATH)")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	gen := testkit.DefaultConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write a synthetic observation CSV from a known Poisson process",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := testkit.Generate(gen)
			if err != nil {
				return err
			}
			if err := csvfile.WriteFile(out, ds); err != nil {
				return err
			}
			log.Printf("[CLI] Wrote %d synthetic observations to %s", ds.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "synthetic.csv", "output CSV path")
	cmd.Flags().IntVar(&gen.Months, "months", gen.Months, "number of monthly observations")
	cmd.Flags().Uint64Var(&gen.Seed, "seed", gen.Seed, "random seed")
	cmd.Flags().IntVar(&gen.InterventionAt, "intervention-at", gen.InterventionAt, "time index of first intervention month (0 = never)")
	cmd.Flags().Float64Var(&gen.BaselineMean, "baseline", gen.BaselineMean, "expected pre-intervention monthly count")
	cmd.Flags().Float64Var(&gen.StepRR, "step-rr", gen.StepRR, "step rate ratio at the intervention")
	cmd.Flags().Float64Var(&gen.TrendRR, "trend-rr", gen.TrendRR, "per-month trend rate ratio")
	cmd.Flags().Float64Var(&gen.SeasonalAmplitude, "seasonal-amp", gen.SeasonalAmplitude, "log-scale seasonal amplitude")
	return cmd
}

// buildService assembles the observation source and report writers from
// configuration.
func buildService(ctx context.Context, cfg *config.Config) (*app.AnalysisService, func(), error) {
	var source ports.ObservationSource
	cleanup := func() {}

	switch cfg.Data.Source {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		source = postgres.NewObservationRepository(db, cfg.Data.Table)
		cleanup = func() { db.Close() }
	case "synthetic":
		gen := testkit.DefaultConfig()
		gen.Seed = cfg.Data.Seed
		source = testkit.NewSource(gen)
	default:
		source = csvfile.NewSource(cfg.Data.CSVPath)
	}

	var writers []ports.ReportWriter
	if cfg.Report.MarkdownPath != "" {
		writers = append(writers, report.NewMarkdownWriter(cfg.Report.MarkdownPath))
	}
	if cfg.Report.HTMLPath != "" {
		writers = append(writers, report.NewHTMLWriter(cfg.Report.HTMLPath))
	}
	if cfg.Report.WorkbookPath != "" {
		writers = append(writers, excel.NewWorkbookWriter(cfg.Report.WorkbookPath))
	}

	return app.NewAnalysisService(source, writers, cfg.Analysis), cleanup, nil
}
