package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/pumpops/internal/alert/domain"
	alertservice "github.com/smallbiznis/pumpops/internal/alert/service"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	bookingrepo "github.com/smallbiznis/pumpops/internal/booking/repository"
	bookingservice "github.com/smallbiznis/pumpops/internal/booking/service"
	"github.com/smallbiznis/pumpops/internal/booking/slotlock"
	"github.com/smallbiznis/pumpops/internal/clock"
	"github.com/smallbiznis/pumpops/internal/config"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	jobrepo "github.com/smallbiznis/pumpops/internal/jobvolume/repository"
	jobservice "github.com/smallbiznis/pumpops/internal/jobvolume/service"
	kpiservice "github.com/smallbiznis/pumpops/internal/kpi/service"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/pumpops/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/pumpops/internal/ledger/service"
	"github.com/smallbiznis/pumpops/internal/notify"
	"github.com/smallbiznis/pumpops/internal/notify/mocks"
	overviewdomain "github.com/smallbiznis/pumpops/internal/overview/domain"
	overviewservice "github.com/smallbiznis/pumpops/internal/overview/service"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	pumprepo "github.com/smallbiznis/pumpops/internal/pump/repository"
	pumpservice "github.com/smallbiznis/pumpops/internal/pump/service"
	"github.com/smallbiznis/pumpops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	svc      overviewdomain.Service
	pumps    pumpdomain.Service
	bookings bookingdomain.Service
	ledger   ledgerdomain.Service
}

type options struct {
	notifier notify.Notifier
	volume   jobdomain.Service
	bookings bookingdomain.Service
}

func setup(t *testing.T, today time.Time, opts options) fixture {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&pumpdomain.Pump{},
		&ledgerdomain.EventRecord{},
		&jobdomain.JobCompletion{},
		&bookingdomain.Booking{},
	))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	policy := config.NewStaticPolicyHolder(config.DefaultPolicy())

	pumps := pumpservice.New(pumpservice.Params{DB: conn, Log: log, GenID: node, Repo: pumprepo.Provide()})
	ledger := ledgerservice.NewService(ledgerservice.Params{DB: conn, Log: log, GenID: node, Repo: ledgerrepo.Provide()})
	volume := opts.volume
	if volume == nil {
		volume = jobservice.NewService(jobservice.Params{DB: conn, Log: log, GenID: node, Repo: jobrepo.Provide()})
	}
	bookings := opts.bookings
	if bookings == nil {
		bookings = bookingservice.NewService(bookingservice.Params{
			DB:      conn,
			Log:     log,
			GenID:   node,
			Repo:    bookingrepo.Provide(),
			PumpSvc: pumps,
			Locker:  slotlock.NewMemoryLocker(nil),
		})
	}
	kpis := kpiservice.NewService(kpiservice.Params{Log: log, Policy: policy, LedgerSvc: ledger, VolumeSvc: volume})
	alerts := alertservice.NewService(alertservice.Params{Policy: policy})

	svc := overviewservice.NewService(overviewservice.Params{
		Log:        log,
		Clock:      clock.NewFakeClock(today.Add(10 * time.Hour)),
		Policy:     policy,
		PumpSvc:    pumps,
		LedgerSvc:  ledger,
		KPISvc:     kpis,
		AlertSvc:   alerts,
		BookingSvc: bookings,
		VolumeSvc:  volume,
		Notifier:   opts.notifier,
	})
	return fixture{svc: svc, pumps: pumps, bookings: bookings, ledger: ledger}
}

func TestOverviewEndToEnd(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	var (
		mu      sync.Mutex
		notices []notify.Notice
	)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(func(_ context.Context, n notify.Notice) {
		mu.Lock()
		defer mu.Unlock()
		notices = append(notices, n)
	}).Times(3)

	f := setup(t, date("2026-07-05"), options{notifier: notifier})

	pump, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-01", OwnerID: "owner-1"})
	require.NoError(t, err)

	_, err = f.svc.RecordMaintenance(ctx, pump.ID, overviewdomain.MaintenanceRequest{
		OccurredOn: date("2026-01-10"),
		Amount:     decimal.NewFromInt(500),
		Maintenance: ledgerdomain.Maintenance{
			Label:  "Oil change",
			Kind:   ledgerdomain.MaintenanceKindPreventive,
			Status: ledgerdomain.MaintenanceDone,
		},
	})
	require.NoError(t, err)

	fuel, err := f.svc.RecordFuel(ctx, pump.ID, overviewdomain.FuelRequest{
		OccurredOn: date("2026-02-01"),
		Fuel: ledgerdomain.Fuel{
			LitersFilled: decimal.NewFromInt(100),
			CostPerLiter: decimal.NewFromInt(6),
		},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(fuel.Amount))

	_, err = f.svc.RecordJobCompletion(ctx, pump.ID, overviewdomain.JobCompletionRequest{
		Volume:      decimal.NewFromInt(200),
		CompletedOn: date("2026-02-02"),
	})
	require.NoError(t, err)

	_, err = f.bookings.Create(ctx, bookingdomain.Draft{
		PumpID:            &pump.ID,
		ClientID:          "client-1",
		ResponsiblePerson: "Ana",
		CompanyID:         "company-1",
	})
	require.NoError(t, err)

	got, err := f.svc.GetPumpOverview(ctx, pump.ID)
	require.NoError(t, err)

	assert.Equal(t, "PX-01", got.Pump.Prefix)
	assert.False(t, got.Degraded)
	assert.True(t, decimal.NewFromInt(500).Equal(got.KPIs.TotalMaintenanceCost))
	assert.True(t, decimal.NewFromInt(600).Equal(got.KPIs.TotalFuelCost))
	assert.True(t, decimal.NewFromInt(200).Equal(got.KPIs.TotalVolumePumped))
	assert.True(t, decimal.RequireFromString("0.5").Equal(got.KPIs.AverageFuelPerVolumeUnit))
	require.NotNil(t, got.KPIs.PredictedNextMaintenanceDate)
	assert.Equal(t, "2026-07-09", got.KPIs.PredictedNextMaintenanceDate.Format("2006-01-02"))
	assert.True(t, date("2026-07-05").Equal(got.AsOf))

	require.Len(t, got.Alerts, 1)
	assert.Equal(t, alertdomain.AlertTypeMaintenanceDue, got.Alerts[0].Type)
	assert.Equal(t, alertdomain.SeverityWarning, got.Alerts[0].Severity)
	assert.Contains(t, got.Alerts[0].Message, "4 days")
	assert.Len(t, got.RecentBookings, 1)

	mu.Lock()
	defer mu.Unlock()
	kinds := map[notify.Kind]int{}
	for _, n := range notices {
		kinds[n.Kind]++
		assert.Equal(t, pump.ID, n.PumpID)
	}
	assert.Equal(t, 2, kinds[notify.KindFinancial])
	assert.Equal(t, 1, kinds[notify.KindCalendar])
	for _, n := range notices {
		if n.Kind == notify.KindCalendar {
			assert.Equal(t, "px-01-oil-change-2026-01-10", n.Key)
		}
	}
}

func TestFreshPumpThenMaintenanceToday(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).AnyTimes()

	today := date("2026-07-05")
	f := setup(t, today, options{notifier: notifier})

	pump, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-01", OwnerID: "owner-1"})
	require.NoError(t, err)

	empty, err := f.svc.GetPumpOverview(ctx, pump.ID)
	require.NoError(t, err)
	assert.True(t, empty.KPIs.TotalVolumePumped.IsZero())
	assert.True(t, empty.KPIs.TotalCost.IsZero())
	assert.Nil(t, empty.KPIs.LastMaintenanceDate)
	assert.Nil(t, empty.KPIs.PredictedNextMaintenanceDate)
	assert.Empty(t, empty.Alerts)
	assert.Empty(t, empty.RecentBookings)
	assert.False(t, empty.Degraded)

	event, err := f.svc.RecordMaintenance(ctx, pump.ID, overviewdomain.MaintenanceRequest{
		Amount: decimal.NewFromInt(200),
		Maintenance: ledgerdomain.Maintenance{
			Label: "Hose inspection",
			Kind:  ledgerdomain.MaintenanceKindPreventive,
		},
	})
	require.NoError(t, err)
	assert.True(t, today.Equal(event.OccurredOn))

	got, err := f.svc.GetPumpOverview(ctx, pump.ID)
	require.NoError(t, err)
	require.NotNil(t, got.KPIs.LastMaintenanceDate)
	assert.True(t, today.Equal(*got.KPIs.LastMaintenanceDate))
	require.NotNil(t, got.KPIs.PredictedNextMaintenanceDate)
	assert.True(t, today.AddDate(0, 0, 180).Equal(*got.KPIs.PredictedNextMaintenanceDate))
	assert.Equal(t, "2027-01-01", got.KPIs.PredictedNextMaintenanceDate.Format("2006-01-02"))
	assert.Empty(t, got.Alerts)
}

type brokenVolume struct{}

func (brokenVolume) Record(context.Context, jobdomain.RecordRequest) (*jobdomain.JobCompletion, error) {
	return nil, errors.New("job store offline")
}

func (brokenVolume) SumVolumeForPump(context.Context, snowflake.ID) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("job store offline")
}

type brokenBookings struct {
	bookingdomain.Service
}

func (brokenBookings) ListByPump(context.Context, snowflake.ID, int) ([]bookingdomain.Booking, error) {
	return nil, errors.New("booking store offline")
}

func TestOverviewDegradesInsteadOfFailing(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).AnyTimes()

	f := setup(t, date("2026-07-05"), options{
		notifier: notifier,
		volume:   brokenVolume{},
		bookings: brokenBookings{},
	})

	pump, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-02", OwnerID: "owner-1"})
	require.NoError(t, err)
	_, err = f.svc.RecordFuel(ctx, pump.ID, overviewdomain.FuelRequest{
		OccurredOn: date("2026-07-01"),
		Fuel:       ledgerdomain.Fuel{LitersFilled: decimal.NewFromInt(40), CostPerLiter: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	got, err := f.svc.GetPumpOverview(ctx, pump.ID)
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, []string{"job_volume", overviewdomain.SourceBookings}, got.DegradedSources)
	assert.True(t, got.KPIs.TotalVolumePumped.IsZero())
	assert.True(t, got.KPIs.AverageFuelPerVolumeUnit.IsZero())
	assert.True(t, decimal.NewFromInt(200).Equal(got.KPIs.TotalFuelCost))
	assert.NotNil(t, got.RecentBookings)
	assert.Empty(t, got.RecentBookings)
}

func TestOverviewUnknownPump(t *testing.T) {
	f := setup(t, date("2026-07-05"), options{notifier: mocks.NewMockNotifier(gomock.NewController(t))})
	_, err := f.svc.GetPumpOverview(context.Background(), 12345)
	assert.ErrorIs(t, err, pumpdomain.ErrNotFound)
}

type failingSender struct{}

func (failingSender) Send(context.Context, notify.Notice) error {
	return errors.New("finance system down")
}

func TestNoticeFailureDoesNotRollBackAppend(t *testing.T) {
	ctx := context.Background()
	dispatcher := notify.NewDispatcher(failingSender{}, zap.NewNop(), time.Second)
	f := setup(t, date("2026-07-05"), options{notifier: dispatcher})

	pump, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-03", OwnerID: "owner-1"})
	require.NoError(t, err)

	event, err := f.svc.RecordInvestment(ctx, pump.ID, overviewdomain.InvestmentRequest{
		Amount:     decimal.NewFromInt(12000),
		Investment: ledgerdomain.Investment{Name: "Boom arm"},
	})
	require.NoError(t, err)
	dispatcher.Wait()

	stored, err := f.ledger.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, ledgerdomain.CategoryInvestment, stored.Category)
	assert.True(t, date("2026-07-05").Equal(stored.OccurredOn))
}

func TestMaintenanceProgressDrivesPumpStatus(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).AnyTimes()

	f := setup(t, date("2026-07-05"), options{notifier: notifier})
	pump, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-04", OwnerID: "owner-1"})
	require.NoError(t, err)

	record := func(status ledgerdomain.MaintenanceStatus) {
		_, err := f.svc.RecordMaintenance(ctx, pump.ID, overviewdomain.MaintenanceRequest{
			Amount: decimal.NewFromInt(100),
			Maintenance: ledgerdomain.Maintenance{
				Label:  "Hydraulic seal",
				Kind:   ledgerdomain.MaintenanceKindCorrective,
				Status: status,
			},
		})
		require.NoError(t, err)
	}

	record(ledgerdomain.MaintenanceInProgress)
	got, err := f.pumps.Get(ctx, pump.ID)
	require.NoError(t, err)
	assert.Equal(t, pumpdomain.StatusInMaintenance, got.Status)

	record(ledgerdomain.MaintenanceDone)
	got, err = f.pumps.Get(ctx, pump.ID)
	require.NoError(t, err)
	assert.Equal(t, pumpdomain.StatusAvailable, got.Status)
}

func TestRecordJobCompletionChecksBookingPump(t *testing.T) {
	ctx := context.Background()
	f := setup(t, date("2026-07-05"), options{notifier: mocks.NewMockNotifier(gomock.NewController(t))})

	a, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-05", OwnerID: "owner-1"})
	require.NoError(t, err)
	b, err := f.pumps.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-06", OwnerID: "owner-1"})
	require.NoError(t, err)

	booking, err := f.bookings.Create(ctx, bookingdomain.Draft{
		PumpID:            &a.ID,
		ClientID:          "client-1",
		ResponsiblePerson: "Ana",
		CompanyID:         "company-1",
	})
	require.NoError(t, err)

	_, err = f.svc.RecordJobCompletion(ctx, b.ID, overviewdomain.JobCompletionRequest{
		BookingID: &booking.ID,
		Volume:    decimal.NewFromInt(30),
	})
	assert.ErrorIs(t, err, overviewdomain.ErrBookingPumpMismatch)

	job, err := f.svc.RecordJobCompletion(ctx, a.ID, overviewdomain.JobCompletionRequest{
		BookingID: &booking.ID,
		Volume:    decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	assert.True(t, date("2026-07-05").Equal(job.CompletedOn))
}
