package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
)

type bookingRequest struct {
	PumpID            string   `json:"pump_id"`
	Date              string   `json:"date"`
	Time              *string  `json:"time"`
	LifecycleState    string   `json:"lifecycle_state"`
	ClientID          string   `json:"client_id"`
	ResponsiblePerson string   `json:"responsible_person"`
	CompanyID         string   `json:"company_id"`
	Address           string   `json:"address"`
	AddressNumber     string   `json:"address_number"`
	CrewAssistants    []string `json:"crew_assistants"`
	Notes             string   `json:"notes"`
}

type moveBookingRequest struct {
	Date string  `json:"date"`
	Time *string `json:"time"`
}

// draft decodes the request. Fields that fail to decode travel with the
// draft so the service reports them alongside every other violation.
func (r bookingRequest) draft() bookingdomain.Draft {
	d := bookingdomain.Draft{
		Time:              r.Time,
		LifecycleState:    bookingdomain.LifecycleState(r.LifecycleState),
		ClientID:          r.ClientID,
		ResponsiblePerson: r.ResponsiblePerson,
		CompanyID:         r.CompanyID,
		Address:           r.Address,
		AddressNumber:     r.AddressNumber,
		CrewAssistants:    r.CrewAssistants,
		Notes:             r.Notes,
	}

	pumpID, err := parseOptionalSnowflakeID(r.PumpID)
	if err != nil {
		d.Unparsed = append(d.Unparsed, bookingdomain.FieldViolation{
			Field:   "pump_id",
			Code:    bookingdomain.CodeInvalid,
			Message: "pump_id must be a numeric id",
		})
	}
	d.PumpID = pumpID

	date, err := parseOptionalDate(r.Date)
	if err != nil {
		d.Unparsed = append(d.Unparsed, bookingdomain.FieldViolation{
			Field:   "date",
			Code:    bookingdomain.CodeInvalid,
			Message: "date must be YYYY-MM-DD",
		})
	}
	d.Date = date

	return d
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	resp, err := s.bookingSvc.Create(c.Request.Context(), req.draft())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBookingByID(c *gin.Context) {
	id, err := pathID(c, "booking_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.bookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBooking(c *gin.Context) {
	id, err := pathID(c, "booking_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	resp, err := s.bookingSvc.Update(c.Request.Context(), id, req.draft())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MoveBooking(c *gin.Context) {
	id, err := pathID(c, "booking_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req moveBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	date, err := dateField("date", req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.bookingSvc.Move(c.Request.Context(), id, date, req.Time)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBooking(c *gin.Context) {
	id, err := pathID(c, "booking_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.bookingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CheckBookingConflict(c *gin.Context) {
	var query struct {
		PumpID    string `form:"pump_id"`
		Date      string `form:"date"`
		Time      string `form:"time"`
		ExcludeID string `form:"exclude_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pumpID, err := parseOptionalSnowflakeID(query.PumpID)
	if err != nil || pumpID == nil {
		AbortWithError(c, newValidationError("pump_id", "invalid_pump_id", "invalid pump_id"))
		return
	}
	date, err := dateField("date", query.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	exclude, err := parseOptionalSnowflakeID(query.ExcludeID)
	if err != nil {
		AbortWithError(c, newValidationError("exclude_id", "invalid_exclude_id", "invalid exclude_id"))
		return
	}

	taken, err := s.bookingSvc.CheckConflict(c.Request.Context(), bookingdomain.Slot{
		PumpID: *pumpID,
		Date:   date,
		Time:   query.Time,
	}, exclude)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"conflict": taken}})
}
