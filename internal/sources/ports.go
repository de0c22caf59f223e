package sources

import (
	"context"

	"asicrev/internal/core"
)

// Ports for outbound adapters.
type (
	// ASICLister returns the hardware configurations the revenue series can be computed for.
	ASICLister interface {
		ListASICs(ctx context.Context) ([]core.ASIC, error)
	}

	// RevenueReader returns the per-MWh revenue series for one query.
	RevenueReader interface {
		Revenue(ctx context.Context, q core.RevenueQuery) ([]core.RawRevenuePoint, error)
	}

	// Source is the full backend used by the web server.
	Source interface {
		ASICLister
		RevenueReader
	}
)
