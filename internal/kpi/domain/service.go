package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// ComputeKPIs recomputes the snapshot from every ledger event of the pump.
	// A failing volume source yields a degraded snapshot, not an error.
	ComputeKPIs(ctx context.Context, pumpID snowflake.ID) (*Snapshot, error)
}
