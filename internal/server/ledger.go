package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	overviewdomain "github.com/smallbiznis/pumpops/internal/overview/domain"
)

type maintenanceRequest struct {
	OccurredOn string          `json:"occurred_on"`
	Amount     decimal.Decimal `json:"amount"`
	Label      string          `json:"label"`
	Kind       string          `json:"kind"`
	Status     string          `json:"status"`
	Supplier   string          `json:"supplier"`
}

type fuelRequest struct {
	OccurredOn   string           `json:"occurred_on"`
	Amount       decimal.Decimal  `json:"amount"`
	LitersFilled decimal.Decimal  `json:"liters_filled"`
	CostPerLiter decimal.Decimal  `json:"cost_per_liter"`
	Discount     decimal.Decimal  `json:"discount"`
	Odometer     *decimal.Decimal `json:"odometer"`
}

type investmentRequest struct {
	OccurredOn string          `json:"occurred_on"`
	Amount     decimal.Decimal `json:"amount"`
	Name       string          `json:"name"`
	Supplier   string          `json:"supplier"`
}

type expenseRequest struct {
	OccurredOn  string          `json:"occurred_on"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type jobCompletionRequest struct {
	BookingID   string          `json:"booking_id"`
	Volume      decimal.Decimal `json:"volume"`
	CompletedOn string          `json:"completed_on"`
}

func (s *Server) ListPumpLedger(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.pumpSvc.Get(ctx, id); err != nil {
		AbortWithError(c, err)
		return
	}
	resp, err := s.ledgerSvc.ListByPump(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordMaintenance(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	occurredOn, err := dateField("occurred_on", req.OccurredOn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overviewSvc.RecordMaintenance(c.Request.Context(), id, overviewdomain.MaintenanceRequest{
		OccurredOn: occurredOn,
		Amount:     req.Amount,
		Maintenance: ledgerdomain.Maintenance{
			Label:    req.Label,
			Kind:     ledgerdomain.MaintenanceKind(req.Kind),
			Status:   ledgerdomain.MaintenanceStatus(req.Status),
			Supplier: req.Supplier,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordFuel(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req fuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	occurredOn, err := dateField("occurred_on", req.OccurredOn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overviewSvc.RecordFuel(c.Request.Context(), id, overviewdomain.FuelRequest{
		OccurredOn: occurredOn,
		Amount:     req.Amount,
		Fuel: ledgerdomain.Fuel{
			LitersFilled: req.LitersFilled,
			CostPerLiter: req.CostPerLiter,
			Discount:     req.Discount,
			Odometer:     req.Odometer,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordInvestment(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req investmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	occurredOn, err := dateField("occurred_on", req.OccurredOn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overviewSvc.RecordInvestment(c.Request.Context(), id, overviewdomain.InvestmentRequest{
		OccurredOn: occurredOn,
		Amount:     req.Amount,
		Investment: ledgerdomain.Investment{Name: req.Name, Supplier: req.Supplier},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordExpense(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	occurredOn, err := dateField("occurred_on", req.OccurredOn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overviewSvc.RecordExpense(c.Request.Context(), id, overviewdomain.ExpenseRequest{
		OccurredOn: occurredOn,
		Amount:     req.Amount,
		Expense:    ledgerdomain.Other{Description: req.Description},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordJobCompletion(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req jobCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	completedOn, err := dateField("completed_on", req.CompletedOn)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	bookingID, err := parseOptionalSnowflakeID(req.BookingID)
	if err != nil {
		AbortWithError(c, newValidationError("booking_id", "invalid_booking_id", "invalid booking_id"))
		return
	}

	resp, err := s.overviewSvc.RecordJobCompletion(c.Request.Context(), id, overviewdomain.JobCompletionRequest{
		BookingID:   bookingID,
		Volume:      req.Volume,
		CompletedOn: completedOn,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
