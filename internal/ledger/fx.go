package ledger

import (
	"github.com/smallbiznis/pumpops/internal/ledger/repository"
	"github.com/smallbiznis/pumpops/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
