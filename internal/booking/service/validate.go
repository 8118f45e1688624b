package service

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"github.com/smallbiznis/pumpops/internal/clock"
)

// normalized is a draft after trimming, with every violation collected.
type normalized struct {
	pumpID            *snowflake.ID
	date              *time.Time
	slotTime          *string
	state             bookingdomain.LifecycleState
	clientID          string
	responsiblePerson string
	companyID         string
	address           string
	addressNumber     string
	crew              []string
	notes             string
}

func (n normalized) slot() *bookingdomain.Slot {
	if n.pumpID == nil || n.date == nil || n.slotTime == nil {
		return nil
	}
	return &bookingdomain.Slot{PumpID: *n.pumpID, Date: *n.date, Time: *n.slotTime}
}

func normalizeDraft(d bookingdomain.Draft) (normalized, error) {
	verr := &bookingdomain.ValidationError{}
	n := normalized{
		clientID:          strings.TrimSpace(d.ClientID),
		responsiblePerson: strings.TrimSpace(d.ResponsiblePerson),
		companyID:         strings.TrimSpace(d.CompanyID),
		address:           strings.TrimSpace(d.Address),
		addressNumber:     strings.TrimSpace(d.AddressNumber),
		notes:             strings.TrimSpace(d.Notes),
	}

	n.state = bookingdomain.LifecycleState(strings.ToLower(strings.TrimSpace(string(d.LifecycleState))))
	if n.state == "" {
		n.state = bookingdomain.LifecycleReserved
	}
	if !n.state.Valid() {
		verr.Invalid("lifecycle_state", "lifecycle_state must be reserved or planned")
	}

	if n.clientID == "" {
		verr.Required("client_id")
	}
	if n.responsiblePerson == "" {
		verr.Required("responsible_person")
	}
	if n.companyID == "" {
		verr.Required("company_id")
	}

	slotTime, timeOK := normalizeTime(d.Time)
	n.slotTime = slotTime
	planned := n.state == bookingdomain.LifecyclePlanned

	if v, bad := d.UnparsedField("pump_id"); bad {
		verr.Append(v)
	} else if d.PumpID != nil {
		if *d.PumpID <= 0 {
			verr.Invalid("pump_id", "pump_id must be positive")
		} else {
			id := *d.PumpID
			n.pumpID = &id
		}
	} else if planned {
		verr.Required("pump_id")
	}

	if v, bad := d.UnparsedField("date"); bad {
		verr.Append(v)
	} else if d.Date != nil && !d.Date.IsZero() {
		date := clock.DateOf(*d.Date)
		n.date = &date
	} else if planned || n.slotTime != nil {
		verr.Required("date")
	}

	if !timeOK {
		verr.Invalid("time", "time must be HH:MM")
	} else if planned && n.slotTime == nil {
		verr.Required("time")
	}

	for _, member := range d.CrewAssistants {
		if member = strings.TrimSpace(member); member != "" {
			n.crew = append(n.crew, member)
		}
	}

	if planned {
		if n.address == "" {
			verr.Required("address")
		}
		if n.addressNumber == "" {
			verr.Required("address_number")
		}
		if len(n.crew) == 0 {
			verr.Required("crew_assistants")
		}
	}

	return n, verr.Err()
}

// normalizeTime accepts "H:MM" or "HH:MM" and returns the zero-padded form.
// A nil or blank input means no time; ok is false only for malformed input.
func normalizeTime(raw *string) (*string, bool) {
	if raw == nil {
		return nil, true
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(bookingdomain.TimeLayout, value)
	if err != nil {
		return nil, false
	}
	out := parsed.Format(bookingdomain.TimeLayout)
	return &out, true
}
