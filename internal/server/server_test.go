package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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
	"github.com/smallbiznis/pumpops/internal/observability"
	overviewservice "github.com/smallbiznis/pumpops/internal/overview/service"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	pumprepo "github.com/smallbiznis/pumpops/internal/pump/repository"
	pumpservice "github.com/smallbiznis/pumpops/internal/pump/service"
	"github.com/smallbiznis/pumpops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	volume := jobservice.NewService(jobservice.Params{DB: conn, Log: log, GenID: node, Repo: jobrepo.Provide()})
	bookings := bookingservice.NewService(bookingservice.Params{
		DB:      conn,
		Log:     log,
		GenID:   node,
		Repo:    bookingrepo.Provide(),
		PumpSvc: pumps,
		Locker:  slotlock.NewMemoryLocker(nil),
	})
	kpis := kpiservice.NewService(kpiservice.Params{Log: log, Policy: policy, LedgerSvc: ledger, VolumeSvc: volume})
	dispatcher := notify.NewDispatcher(notify.NewLogSender(log), log, time.Second)
	t.Cleanup(dispatcher.Wait)

	overview := overviewservice.NewService(overviewservice.Params{
		Log:        log,
		Clock:      clock.NewFakeClock(time.Date(2026, 7, 5, 9, 0, 0, 0, time.UTC)),
		Policy:     policy,
		PumpSvc:    pumps,
		LedgerSvc:  ledger,
		KPISvc:     kpis,
		AlertSvc:   alertservice.NewService(alertservice.Params{Policy: policy}),
		BookingSvc: bookings,
		VolumeSvc:  volume,
		Notifier:   dispatcher,
	})

	return NewServer(ServerParams{
		Gin:         NewEngine(observability.Config{Environment: "test", LogLevel: "info"}, nil),
		Cfg:         config.Config{Environment: "test"},
		PumpSvc:     pumps,
		LedgerSvc:   ledger,
		KPISvc:      kpis,
		BookingSvc:  bookings,
		OverviewSvc: overview,
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorPayload   `json:"error"`
}

func do(t *testing.T, s *Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func createPump(t *testing.T, s *Server, prefix string) string {
	t.Helper()
	code, env := do(t, s, http.MethodPost, "/api/pumps", gin.H{"prefix": prefix, "owner_id": "owner-1"})
	require.Equal(t, http.StatusOK, code)
	var p struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p.ID
}

func plannedBody(pumpID string) gin.H {
	return gin.H{
		"pump_id":            pumpID,
		"date":               "2026-07-10",
		"time":               "08:00",
		"lifecycle_state":    "planned",
		"client_id":          "client-1",
		"responsible_person": "Ana",
		"company_id":         "company-1",
		"address":            "Rua das Flores",
		"address_number":     "120",
		"crew_assistants":    []string{"Bruno"},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingConflictReturns409WithBlocker(t *testing.T) {
	s := newTestServer(t)
	pumpID := createPump(t, s, "PX-01")

	code, env := do(t, s, http.MethodPost, "/api/bookings", plannedBody(pumpID))
	require.Equal(t, http.StatusOK, code)
	var first struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.Equal(t, "2026-07-10", first.Date)

	code, env = do(t, s, http.MethodPost, "/api/bookings", plannedBody(pumpID))
	require.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	require.NotNil(t, env.Error.Conflict)
	assert.Equal(t, first.ID, env.Error.Conflict.BookingID)
	assert.Equal(t, "08:00", env.Error.Conflict.Time)

	code, env = do(t, s, http.MethodGet, "/api/bookings/conflicts?pump_id="+pumpID+"&date=2026-07-10&time=08:00", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"conflict":true}`, string(env.Data))

	code, _ = do(t, s, http.MethodDelete, "/api/bookings/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, s, http.MethodDelete, "/api/bookings/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, s, http.MethodPost, "/api/bookings", plannedBody(pumpID))
	assert.Equal(t, http.StatusOK, code)
}

func TestBookingValidationListsFields(t *testing.T) {
	s := newTestServer(t)

	code, env := do(t, s, http.MethodPost, "/api/bookings", gin.H{"lifecycle_state": "planned", "client_id": "c"})
	require.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Type)

	fields := make([]string, 0, len(env.Error.Errors))
	for _, e := range env.Error.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"responsible_person",
		"company_id",
		"pump_id",
		"date",
		"time",
		"address",
		"address_number",
		"crew_assistants",
	}, fields)
}

func TestFuelAmountMismatchIs400(t *testing.T) {
	s := newTestServer(t)
	pumpID := createPump(t, s, "PX-02")

	code, env := do(t, s, http.MethodPost, "/api/pumps/"+pumpID+"/fuel", gin.H{
		"occurred_on":    "2026-07-01",
		"liters_filled":  "50",
		"cost_per_liter": "6",
		"amount":         "250",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Len(t, env.Error.Errors, 1)
	assert.Equal(t, "fuel_amount_mismatch", env.Error.Errors[0].Code)
	assert.Equal(t, "amount", env.Error.Errors[0].Field)
}

func TestOverviewAfterRecording(t *testing.T) {
	s := newTestServer(t)
	pumpID := createPump(t, s, "PX-03")

	code, _ := do(t, s, http.MethodPost, "/api/pumps/"+pumpID+"/maintenance", gin.H{
		"occurred_on": "2026-01-01",
		"amount":      "350.00",
		"label":       "Pipe replacement",
		"kind":        "corrective",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, s, http.MethodPost, "/api/pumps/"+pumpID+"/jobs", gin.H{"volume": "120"})
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, s, http.MethodGet, "/api/pumps/"+pumpID+"/overview", nil)
	require.Equal(t, http.StatusOK, code)

	var got struct {
		KPIs struct {
			TotalMaintenanceCost decimal.Decimal `json:"total_maintenance_cost"`
			TotalVolumePumped    decimal.Decimal `json:"total_volume_pumped"`
		} `json:"kpis"`
		Alerts []struct {
			Type     string `json:"type"`
			Severity string `json:"severity"`
		} `json:"alerts"`
		Degraded bool `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.KPIs.TotalMaintenanceCost.Equal(decimal.NewFromInt(350)), got.KPIs.TotalMaintenanceCost.String())
	assert.True(t, got.KPIs.TotalVolumePumped.Equal(decimal.NewFromInt(120)), got.KPIs.TotalVolumePumped.String())
	assert.False(t, got.Degraded)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "maintenance_due", got.Alerts[0].Type)
	assert.Equal(t, "error", got.Alerts[0].Severity)
}

func TestUnknownPumpIs404(t *testing.T) {
	s := newTestServer(t)

	code, env := do(t, s, http.MethodGet, "/api/pumps/12345/overview", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)

	code, _ = do(t, s, http.MethodGet, "/api/pumps/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBookingOnUnknownPumpIs404(t *testing.T) {
	s := newTestServer(t)

	code, env := do(t, s, http.MethodPost, "/api/bookings", plannedBody("999999999"))
	require.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)

	code, _ = do(t, s, http.MethodGet, "/api/pumps/999999999/overview", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBookingUnparsedDateIsListedWithMissingFields(t *testing.T) {
	s := newTestServer(t)

	code, env := do(t, s, http.MethodPost, "/api/bookings", gin.H{
		"lifecycle_state": "planned",
		"date":            "10/07/2026",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)

	codes := make(map[string]string, len(env.Error.Errors))
	fields := make([]string, 0, len(env.Error.Errors))
	for _, e := range env.Error.Errors {
		fields = append(fields, e.Field)
		codes[e.Field] = e.Code
	}
	assert.Equal(t, []string{
		"client_id",
		"responsible_person",
		"company_id",
		"pump_id",
		"date",
		"time",
		"address",
		"address_number",
		"crew_assistants",
	}, fields)
	assert.Equal(t, bookingdomain.CodeInvalid, codes["date"])
	assert.Equal(t, bookingdomain.CodeRequired, codes["client_id"])
}
