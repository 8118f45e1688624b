package booking

import (
	"github.com/smallbiznis/pumpops/internal/booking/repository"
	"github.com/smallbiznis/pumpops/internal/booking/service"
	"github.com/smallbiznis/pumpops/internal/booking/slotlock"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(slotlock.Provide),
	fx.Provide(service.NewService),
)
