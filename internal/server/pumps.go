package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
)

func (s *Server) CreatePump(c *gin.Context) {
	var req pumpdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pumpSvc.Create(c.Request.Context(), pumpdomain.CreateRequest{
		Prefix:  strings.TrimSpace(req.Prefix),
		OwnerID: strings.TrimSpace(req.OwnerID),
		Model:   strings.TrimSpace(req.Model),
		Status:  req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPumps(c *gin.Context) {
	var query struct {
		Prefix string `form:"prefix"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if prefix := strings.TrimSpace(query.Prefix); prefix != "" {
		resp, err := s.pumpSvc.GetByPrefix(c.Request.Context(), prefix)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": []pumpdomain.Pump{*resp}})
		return
	}

	resp, err := s.pumpSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPumpByID(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.pumpSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetPumpStatus(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req pumpdomain.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pumpSvc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPumpOverview(c *gin.Context) {
	id, err := pathID(c, "pump_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overviewSvc.GetPumpOverview(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPumpKPIs(c *gin.Context) {
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
	resp, err := s.kpiSvc.ComputeKPIs(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
