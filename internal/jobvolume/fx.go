package jobvolume

import (
	"github.com/smallbiznis/pumpops/internal/jobvolume/repository"
	"github.com/smallbiznis/pumpops/internal/jobvolume/service"
	"go.uber.org/fx"
)

var Module = fx.Module("jobvolume.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
