package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	alertdomain "github.com/smallbiznis/pumpops/internal/alert/domain"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"github.com/smallbiznis/pumpops/internal/clock"
	"github.com/smallbiznis/pumpops/internal/config"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	"github.com/smallbiznis/pumpops/internal/notify"
	obslogger "github.com/smallbiznis/pumpops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	overviewdomain "github.com/smallbiznis/pumpops/internal/overview/domain"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Policy     *config.PolicyHolder
	PumpSvc    pumpdomain.Service
	LedgerSvc  ledgerdomain.Service
	KPISvc     kpidomain.Service
	AlertSvc   alertdomain.Service
	BookingSvc bookingdomain.Service
	VolumeSvc  jobdomain.Service
	Notifier   notify.Notifier
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	policy     *config.PolicyHolder
	pumpSvc    pumpdomain.Service
	ledgerSvc  ledgerdomain.Service
	kpiSvc     kpidomain.Service
	alertSvc   alertdomain.Service
	bookingSvc bookingdomain.Service
	volumeSvc  jobdomain.Service
	notifier   notify.Notifier
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) overviewdomain.Service {
	return &Service{
		log:        p.Log.Named("overview.service"),
		clock:      p.Clock,
		policy:     p.Policy,
		pumpSvc:    p.PumpSvc,
		ledgerSvc:  p.LedgerSvc,
		kpiSvc:     p.KPISvc,
		alertSvc:   p.AlertSvc,
		bookingSvc: p.BookingSvc,
		volumeSvc:  p.VolumeSvc,
		notifier:   p.Notifier,
		obsMetrics: p.ObsMetrics,
	}
}

// GetPumpOverview fails only when the pump or its ledger cannot be read.
// Volume and booking failures come back as a degraded overview.
func (s *Service) GetPumpOverview(ctx context.Context, pumpID snowflake.ID) (*overviewdomain.Overview, error) {
	pump, err := s.pumpSvc.Get(ctx, pumpID)
	if err != nil {
		return nil, err
	}

	snap, err := s.kpiSvc.ComputeKPIs(ctx, pump.ID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	alerts := s.alertSvc.Evaluate(ctx, *snap, today)
	if alerts == nil {
		alerts = []alertdomain.Alert{}
	}

	out := &overviewdomain.Overview{
		Pump:            *pump,
		KPIs:            *snap,
		Alerts:          alerts,
		AsOf:            today,
		Degraded:        snap.Degraded,
		DegradedSources: append([]string(nil), snap.DegradedSources...),
	}

	bookings, err := s.bookingSvc.ListByPump(ctx, pump.ID, s.policy.Get().RecentBookingsLimit)
	if err != nil {
		obslogger.WithPump(obslogger.WithContext(ctx, s.log), int64(pump.ID)).Warn(
			"booking list unavailable, returning overview without bookings",
			zap.Error(&kpidomain.DegradedDataError{Source: overviewdomain.SourceBookings, Err: err}),
		)
		s.obsMetrics.RecordDegradedRead(ctx, overviewdomain.SourceBookings)
		bookings = []bookingdomain.Booking{}
		out.Degraded = true
		out.DegradedSources = append(out.DegradedSources, overviewdomain.SourceBookings)
	}
	out.RecentBookings = bookings

	return out, nil
}

func (s *Service) RecordMaintenance(ctx context.Context, pumpID snowflake.ID, req overviewdomain.MaintenanceRequest) (*ledgerdomain.Event, error) {
	pump, event, err := s.append(ctx, pumpID, req.OccurredOn, req.Amount, req.Maintenance)
	if err != nil {
		return nil, err
	}

	m, _ := event.Payload.(ledgerdomain.Maintenance)
	date := event.OccurredOn.Format(bookingdomain.DateLayout)
	s.notifier.Notify(ctx, notify.NewNotice(
		notify.KindCalendar,
		notify.CalendarKey(pump.Prefix, m.Label, date),
		pump.ID,
		fmt.Sprintf("%s: %s", pump.Prefix, m.Label),
		map[string]any{
			"event_id": event.ID.String(),
			"label":    m.Label,
			"kind":     string(m.Kind),
			"status":   string(m.Status),
			"date":     date,
		},
	))

	s.syncPumpStatus(ctx, pump, m.Status)
	return event, nil
}

func (s *Service) RecordFuel(ctx context.Context, pumpID snowflake.ID, req overviewdomain.FuelRequest) (*ledgerdomain.Event, error) {
	_, event, err := s.append(ctx, pumpID, req.OccurredOn, req.Amount, req.Fuel)
	return event, err
}

func (s *Service) RecordInvestment(ctx context.Context, pumpID snowflake.ID, req overviewdomain.InvestmentRequest) (*ledgerdomain.Event, error) {
	_, event, err := s.append(ctx, pumpID, req.OccurredOn, req.Amount, req.Investment)
	return event, err
}

func (s *Service) RecordExpense(ctx context.Context, pumpID snowflake.ID, req overviewdomain.ExpenseRequest) (*ledgerdomain.Event, error) {
	_, event, err := s.append(ctx, pumpID, req.OccurredOn, req.Amount, req.Expense)
	return event, err
}

func (s *Service) RecordJobCompletion(ctx context.Context, pumpID snowflake.ID, req overviewdomain.JobCompletionRequest) (*jobdomain.JobCompletion, error) {
	pump, err := s.pumpSvc.Get(ctx, pumpID)
	if err != nil {
		return nil, err
	}
	if req.BookingID != nil {
		booking, err := s.bookingSvc.Get(ctx, *req.BookingID)
		if err != nil {
			return nil, err
		}
		if booking.PumpID == nil || *booking.PumpID != pump.ID {
			return nil, overviewdomain.ErrBookingPumpMismatch
		}
	}

	completedOn := req.CompletedOn
	if completedOn.IsZero() {
		completedOn = clock.Today(s.clock)
	}
	return s.volumeSvc.Record(ctx, jobdomain.RecordRequest{
		PumpID:      pump.ID,
		BookingID:   req.BookingID,
		Volume:      req.Volume,
		CompletedOn: completedOn,
	})
}

// append writes the event and emits the financial notice. Delivery happens
// after the write and cannot undo it.
func (s *Service) append(ctx context.Context, pumpID snowflake.ID, occurredOn time.Time, amount decimal.Decimal, payload ledgerdomain.Payload) (*pumpdomain.Pump, *ledgerdomain.Event, error) {
	pump, err := s.pumpSvc.Get(ctx, pumpID)
	if err != nil {
		return nil, nil, err
	}
	if occurredOn.IsZero() {
		occurredOn = clock.Today(s.clock)
	}

	event, err := s.ledgerSvc.Append(ctx, ledgerdomain.AppendRequest{
		PumpID:     pump.ID,
		OccurredOn: occurredOn,
		Amount:     amount,
		Payload:    payload,
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Notify(ctx, notify.NewNotice(
		notify.KindFinancial,
		"ledger:"+event.ID.String(),
		pump.ID,
		fmt.Sprintf("%s %s expense", pump.Prefix, event.Category),
		map[string]any{
			"event_id":    event.ID.String(),
			"pump_prefix": pump.Prefix,
			"category":    string(event.Category),
			"amount":      event.Amount.StringFixed(2),
			"occurred_on": event.OccurredOn.Format(bookingdomain.DateLayout),
		},
	))
	return pump, event, nil
}

// syncPumpStatus mirrors maintenance progress onto the pump. It is
// best-effort: the ledger event is already recorded.
func (s *Service) syncPumpStatus(ctx context.Context, pump *pumpdomain.Pump, status ledgerdomain.MaintenanceStatus) {
	var target pumpdomain.Status
	switch {
	case status == ledgerdomain.MaintenanceInProgress && pump.Status != pumpdomain.StatusInMaintenance:
		target = pumpdomain.StatusInMaintenance
	case status == ledgerdomain.MaintenanceDone && pump.Status == pumpdomain.StatusInMaintenance:
		target = pumpdomain.StatusAvailable
	default:
		return
	}

	if _, err := s.pumpSvc.SetStatus(ctx, pump.ID, target); err != nil {
		obslogger.WithPump(obslogger.WithContext(ctx, s.log), int64(pump.ID)).Warn("pump status sync failed",
			zap.String("target", string(target)),
			zap.Error(err),
		)
	}
}
