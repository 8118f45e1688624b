package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/pumpops/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/pumpops/internal/ledger/service"
	"github.com/smallbiznis/pumpops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (ledgerdomain.Service, *snowflake.Node) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&ledgerdomain.EventRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return ledgerservice.NewService(ledgerservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  ledgerrepo.Provide(),
	}), node
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAppendFuelDerivesAmount(t *testing.T) {
	ctx := context.Background()
	svc, node := newService(t)
	pumpID := node.Generate()

	event, err := svc.Append(ctx, ledgerdomain.AppendRequest{
		PumpID:     pumpID,
		OccurredOn: day("2026-03-01"),
		Payload: ledgerdomain.Fuel{
			LitersFilled: decimal.RequireFromString("50"),
			CostPerLiter: decimal.RequireFromString("5.5"),
			Discount:     decimal.RequireFromString("10"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.CategoryFuel, event.Category)
	assert.True(t, event.Amount.Equal(decimal.RequireFromString("265")), event.Amount.String())

	events, err := svc.ListByPump(ctx, pumpID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	fuel, ok := events[0].Payload.(ledgerdomain.Fuel)
	require.True(t, ok)
	assert.True(t, fuel.LitersFilled.Equal(decimal.NewFromInt(50)))
	assert.True(t, events[0].Amount.Equal(decimal.NewFromInt(265)))
	assert.True(t, day("2026-03-01").Equal(events[0].OccurredOn))
}

func TestAppendFuelRejectsMismatchedAmount(t *testing.T) {
	svc, node := newService(t)
	_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
		PumpID:     node.Generate(),
		OccurredOn: day("2026-03-01"),
		Amount:     decimal.NewFromInt(999),
		Payload: ledgerdomain.Fuel{
			LitersFilled: decimal.NewFromInt(10),
			CostPerLiter: decimal.NewFromInt(6),
		},
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrAmountMismatch)
}

func TestAppendFuelRejectsDiscountAboveCost(t *testing.T) {
	svc, node := newService(t)
	_, err := svc.Append(context.Background(), ledgerdomain.AppendRequest{
		PumpID:     node.Generate(),
		OccurredOn: day("2026-03-01"),
		Payload: ledgerdomain.Fuel{
			LitersFilled: decimal.NewFromInt(10),
			CostPerLiter: decimal.NewFromInt(1),
			Discount:     decimal.NewFromInt(11),
		},
	})
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidDiscount)
}

func TestAppendValidation(t *testing.T) {
	svc, node := newService(t)
	ctx := context.Background()
	pumpID := node.Generate()

	cases := []struct {
		name string
		req  ledgerdomain.AppendRequest
		want error
	}{
		{
			name: "missing pump",
			req:  ledgerdomain.AppendRequest{OccurredOn: day("2026-01-01"), Payload: ledgerdomain.Other{Description: "x"}},
			want: ledgerdomain.ErrInvalidPump,
		},
		{
			name: "missing date",
			req:  ledgerdomain.AppendRequest{PumpID: pumpID, Payload: ledgerdomain.Other{Description: "x"}},
			want: ledgerdomain.ErrInvalidOccurredOn,
		},
		{
			name: "nil payload",
			req:  ledgerdomain.AppendRequest{PumpID: pumpID, OccurredOn: day("2026-01-01")},
			want: ledgerdomain.ErrInvalidPayload,
		},
		{
			name: "negative amount",
			req: ledgerdomain.AppendRequest{
				PumpID: pumpID, OccurredOn: day("2026-01-01"), Amount: decimal.NewFromInt(-1),
				Payload: ledgerdomain.Investment{Name: "boom arm"},
			},
			want: ledgerdomain.ErrInvalidAmount,
		},
		{
			name: "maintenance without label",
			req: ledgerdomain.AppendRequest{
				PumpID: pumpID, OccurredOn: day("2026-01-01"),
				Payload: ledgerdomain.Maintenance{Kind: ledgerdomain.MaintenanceKindPreventive},
			},
			want: ledgerdomain.ErrInvalidLabel,
		},
		{
			name: "maintenance bad kind",
			req: ledgerdomain.AppendRequest{
				PumpID: pumpID, OccurredOn: day("2026-01-01"),
				Payload: ledgerdomain.Maintenance{Label: "oil", Kind: "cosmetic"},
			},
			want: ledgerdomain.ErrInvalidMaintenanceKind,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Append(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestListByPumpKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc, node := newService(t)
	pumpID := node.Generate()
	otherPump := node.Generate()

	labels := []string{"first", "second", "third"}
	for _, label := range labels {
		_, err := svc.Append(ctx, ledgerdomain.AppendRequest{
			PumpID:     pumpID,
			OccurredOn: day("2026-05-01"),
			Amount:     decimal.NewFromInt(100),
			Payload: ledgerdomain.Maintenance{
				Label: label,
				Kind:  ledgerdomain.MaintenanceKindCorrective,
			},
		})
		require.NoError(t, err)
	}
	_, err := svc.Append(ctx, ledgerdomain.AppendRequest{
		PumpID:     otherPump,
		OccurredOn: day("2026-05-01"),
		Payload:    ledgerdomain.Other{Description: "elsewhere"},
	})
	require.NoError(t, err)

	events, err := svc.ListByPump(ctx, pumpID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, event := range events {
		m, ok := event.Payload.(ledgerdomain.Maintenance)
		require.True(t, ok)
		assert.Equal(t, labels[i], m.Label)
		assert.Equal(t, ledgerdomain.MaintenanceDone, m.Status)
	}
}

func TestGetMissingEvent(t *testing.T) {
	svc, node := newService(t)
	_, err := svc.Get(context.Background(), node.Generate())
	assert.ErrorIs(t, err, ledgerdomain.ErrNotFound)
}
