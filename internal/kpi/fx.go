package kpi

import (
	"github.com/smallbiznis/pumpops/internal/kpi/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kpi.service",
	fx.Provide(service.NewService),
)
