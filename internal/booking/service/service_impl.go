package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"github.com/smallbiznis/pumpops/internal/booking/slotlock"
	"github.com/smallbiznis/pumpops/internal/clock"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"github.com/smallbiznis/pumpops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	opCreate = "create"
	opMove   = "move"
	opUpdate = "update"
	opDelete = "delete"

	statusOK       = "ok"
	statusConflict = "conflict"
	statusInvalid  = "invalid"
	statusNotFound = "not_found"
	statusError    = "error"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        bookingdomain.Repository
	PumpSvc     pumpdomain.Service
	Locker      slotlock.Locker
	ObsMetrics  *obsmetrics.Metrics     `optional:"true"`
	CoreMetrics *obsmetrics.CoreMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        bookingdomain.Repository
	pumpSvc     pumpdomain.Service
	locker      slotlock.Locker
	obsMetrics  *obsmetrics.Metrics
	coreMetrics *obsmetrics.CoreMetrics
}

func NewService(p Params) bookingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("booking.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		pumpSvc:     p.PumpSvc,
		locker:      p.Locker,
		obsMetrics:  p.ObsMetrics,
		coreMetrics: p.CoreMetrics,
	}
}

func (s *Service) CheckConflict(ctx context.Context, slot bookingdomain.Slot, exclude *snowflake.ID) (bool, error) {
	if slot.PumpID <= 0 {
		return false, bookingdomain.ErrInvalidPump
	}
	slotTime, ok := normalizeTime(&slot.Time)
	if !ok || slotTime == nil || slot.Date.IsZero() {
		verr := &bookingdomain.ValidationError{}
		if slot.Date.IsZero() {
			verr.Required("date")
		}
		if !ok {
			verr.Invalid("time", "time must be HH:MM")
		} else if slotTime == nil {
			verr.Required("time")
		}
		return false, verr
	}
	slot.Date = clock.DateOf(slot.Date)
	slot.Time = *slotTime

	blocker, err := s.repo.FindBySlot(ctx, s.db, slot, exclude)
	if err != nil {
		return false, err
	}
	return blocker != nil, nil
}

func (s *Service) Create(ctx context.Context, draft bookingdomain.Draft) (*bookingdomain.Booking, error) {
	n, err := normalizeDraft(draft)
	if err == nil {
		err = s.ensurePump(ctx, n.pumpID)
	}
	if err != nil {
		s.record(ctx, opCreate, err)
		return nil, err
	}

	now := time.Now().UTC()
	booking := &bookingdomain.Booking{
		ID:        s.genID.Generate(),
		CreatedAt: now,
	}
	apply(booking, n, now)

	err = s.claim(ctx, opCreate, n.slot(), nil, func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, booking)
	})
	s.record(ctx, opCreate, err)
	if err != nil {
		return nil, err
	}

	booking.Fill()
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("lifecycle_state", string(booking.LifecycleState)),
		zap.String("date", booking.Date),
	)
	return booking, nil
}

func (s *Service) Move(ctx context.Context, id snowflake.ID, date time.Time, slotTime *string) (*bookingdomain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &bookingdomain.ValidationError{}
	if booking.PumpID == nil {
		verr.Required("pump_id")
	}
	if date.IsZero() {
		verr.Required("date")
	}
	normalizedTime, ok := normalizeTime(slotTime)
	if !ok {
		verr.Invalid("time", "time must be HH:MM")
	} else if normalizedTime == nil && booking.LifecycleState == bookingdomain.LifecyclePlanned {
		verr.Required("time")
	}
	if err := verr.Err(); err != nil {
		s.record(ctx, opMove, err)
		return nil, err
	}

	newDate := clock.DateOf(date)
	var slot *bookingdomain.Slot
	if normalizedTime != nil {
		slot = &bookingdomain.Slot{PumpID: *booking.PumpID, Date: newDate, Time: *normalizedTime}
	}

	now := time.Now().UTC()
	err = s.claim(ctx, opMove, slot, &booking.ID, func(tx *gorm.DB) error {
		return s.repo.UpdateSlot(ctx, tx, booking.ID, &newDate, normalizedTime, now)
	})
	s.record(ctx, opMove, err)
	if err != nil {
		return nil, err
	}

	booking.SlotDate = &newDate
	booking.SlotTime = normalizedTime
	booking.UpdatedAt = now
	booking.Fill()
	s.log.Info("booking moved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("date", booking.Date),
	)
	return booking, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, draft bookingdomain.Draft) (*bookingdomain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if draft.LifecycleState == "" {
		draft.LifecycleState = booking.LifecycleState
	}
	n, err := normalizeDraft(draft)
	if booking.LifecycleState == bookingdomain.LifecyclePlanned && n.state == bookingdomain.LifecycleReserved {
		var verr *bookingdomain.ValidationError
		if !errors.As(err, &verr) {
			verr = &bookingdomain.ValidationError{}
		}
		verr.Transition("lifecycle_state", "a planned booking cannot return to reserved")
		err = verr
	}
	if err == nil {
		err = s.ensurePump(ctx, n.pumpID)
	}
	if err != nil {
		s.record(ctx, opUpdate, err)
		return nil, err
	}

	now := time.Now().UTC()
	from := booking.LifecycleState
	apply(booking, n, now)

	err = s.claim(ctx, opUpdate, n.slot(), &booking.ID, func(tx *gorm.DB) error {
		return s.repo.Update(ctx, tx, booking)
	})
	s.record(ctx, opUpdate, err)
	if err != nil {
		return nil, err
	}

	booking.Fill()
	s.log.Info("booking updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(booking.LifecycleState)),
	)
	return booking, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id <= 0 {
		return bookingdomain.ErrInvalidID
	}
	affected, err := s.repo.Delete(ctx, s.db, id)
	s.record(ctx, opDelete, err)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.log.Info("booking deleted", zap.String("booking_id", id.String()))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*bookingdomain.Booking, error) {
	if id <= 0 {
		return nil, bookingdomain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, bookingdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) ListByPump(ctx context.Context, pumpID snowflake.ID, limit int) ([]bookingdomain.Booking, error) {
	if pumpID <= 0 {
		return nil, bookingdomain.ErrInvalidPump
	}
	items, err := s.repo.ListByPump(ctx, s.db, pumpID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []bookingdomain.Booking{}
	}
	return items, nil
}

// ensurePump rejects drafts that point at a pump the registry does not know.
func (s *Service) ensurePump(ctx context.Context, pumpID *snowflake.ID) error {
	if pumpID == nil {
		return nil
	}
	_, err := s.pumpSvc.Get(ctx, *pumpID)
	return err
}

// claim runs write under the slot lock, re-checking the slot inside the
// transaction. A unique-index violation that slips past the check is reported
// as a conflict; the blocker is looked up after the transaction has ended.
// A foreign key violation means the pump no longer exists.
func (s *Service) claim(ctx context.Context, op string, slot *bookingdomain.Slot, exclude *snowflake.ID, write func(tx *gorm.DB) error) error {
	if slot == nil {
		err := s.db.WithContext(ctx).Transaction(write)
		if db.IsForeignKeyErr(err) {
			return pumpdomain.ErrNotFound
		}
		return err
	}

	release, err := s.locker.Acquire(ctx, slotlock.Key(slot.PumpID.String(), slot.DateString(), slot.Time))
	if err != nil {
		return err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocker, err := s.repo.FindBySlot(ctx, tx, *slot, exclude)
		if err != nil {
			return err
		}
		if blocker != nil {
			return &bookingdomain.ConflictError{BookingID: blocker.ID, Slot: *slot}
		}
		return write(tx)
	})
	if violation, ok := db.ClassifyConstraint(err); ok && violation.ForeignKey {
		return pumpdomain.ErrNotFound
	} else if ok && violation.Unique {
		s.log.Debug("slot claimed concurrently", zap.String("constraint", violation.Constraint))
		conflict := &bookingdomain.ConflictError{Slot: *slot}
		blocker, lookupErr := s.repo.FindBySlot(ctx, s.db, *slot, exclude)
		if lookupErr != nil {
			s.log.Warn("conflict blocker lookup failed", zap.Error(lookupErr))
		} else if blocker != nil {
			conflict.BookingID = blocker.ID
		}
		err = conflict
	}

	var conflict *bookingdomain.ConflictError
	if errors.As(err, &conflict) {
		s.obsMetrics.RecordSlotConflict(ctx, op)
		s.coreMetrics.IncConflict(op)
		s.log.Info("slot conflict",
			zap.String("operation", op),
			zap.String("pump_id", slot.PumpID.String()),
			zap.String("date", slot.DateString()),
			zap.String("time", slot.Time),
			zap.String("blocking_booking_id", conflict.BookingID.String()),
		)
	}
	return err
}

func (s *Service) record(ctx context.Context, op string, err error) {
	status := statusOK
	switch {
	case err == nil:
	case errors.Is(err, bookingdomain.ErrSlotTaken):
		status = statusConflict
	case errors.Is(err, bookingdomain.ErrValidation):
		status = statusInvalid
	case errors.Is(err, pumpdomain.ErrNotFound), errors.Is(err, bookingdomain.ErrNotFound):
		status = statusNotFound
	default:
		status = statusError
	}
	s.obsMetrics.RecordBooking(ctx, op, status)
}

func apply(b *bookingdomain.Booking, n normalized, now time.Time) {
	b.PumpID = n.pumpID
	b.SlotDate = n.date
	b.SlotTime = n.slotTime
	b.LifecycleState = n.state
	b.ClientID = n.clientID
	b.ResponsiblePerson = n.responsiblePerson
	b.CompanyID = n.companyID
	b.Address = n.address
	b.AddressNumber = n.addressNumber
	b.CrewAssistants = datatypes.JSONSlice[string](n.crew)
	if b.CrewAssistants == nil {
		b.CrewAssistants = datatypes.JSONSlice[string]{}
	}
	b.Notes = n.notes
	b.UpdatedAt = now
}
