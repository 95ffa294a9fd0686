package ports

import (
	"context"

	"itsa/domain/run"
)

// ReportWriter renders a completed analysis report to some output medium.
// Writers receive the report read-only and must not retain it.
type ReportWriter interface {
	Name() string
	Write(ctx context.Context, report *run.Report) error
}
