package domain

import (
	"context"
	"time"

	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
)

type Service interface {
	Evaluate(ctx context.Context, snap kpidomain.Snapshot, today time.Time) []Alert
}
