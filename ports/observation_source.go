package ports

import (
	"context"

	"itsa/domain/timeseries"
)

// ObservationSource loads the full observation set for one analysis run.
// Implementations validate at load time: a dataset that comes back non-nil
// satisfies the domain invariants.
type ObservationSource interface {
	Load(ctx context.Context) (*timeseries.Dataset, error)
}
