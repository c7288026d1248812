package handlers

import (
	"net/http"
	"time"

	"eventra/middleware"
	"eventra/models"
	"eventra/services/availability"
	"eventra/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler exposes schedule management and open-interval queries.
type AvailabilityHandler struct {
	Svc availability.Service
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc}
}

type setWeeklyRequest struct {
	Timezone string                   `json:"timezone"`
	Days     []models.DayAvailability `json:"days" binding:"required"`
}

// SetWeeklyAvailabilityHandler replaces the provider's full weekly pattern.
// Only the owning provider (or an admin) may mutate availability.
func (h *AvailabilityHandler) SetWeeklyAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	if !ownsProvider(c, providerID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "only the owning provider may change availability")
		return
	}

	var req setWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Svc.SetWeeklyAvailability(c.Request.Context(), providerID, req.Timezone, req.Days); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// AddSpecialDateHandler registers a dated exception for the provider.
func (h *AvailabilityHandler) AddSpecialDateHandler(c *gin.Context) {
	providerID := c.Param("id")
	if !ownsProvider(c, providerID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "only the owning provider may change availability")
		return
	}

	var sd models.SpecialDate
	if err := c.ShouldBindJSON(&sd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Svc.AddSpecialDate(c.Request.Context(), providerID, sd); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sd)
}

// RemoveSpecialDateHandler deletes a dated exception.
func (h *AvailabilityHandler) RemoveSpecialDateHandler(c *gin.Context) {
	providerID := c.Param("id")
	if !ownsProvider(c, providerID) {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "only the owning provider may change availability")
		return
	}

	if err := h.Svc.RemoveSpecialDate(c.Request.Context(), providerID, c.Param("date")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// GetOpenIntervalsHandler resolves the provider's concrete open UTC
// intervals over the requested range.
func (h *AvailabilityHandler) GetOpenIntervalsHandler(c *gin.Context) {
	providerID := c.Param("id")

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "from must be an RFC3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "to must be an RFC3339 timestamp")
		return
	}

	intervals, err := h.Svc.ResolveOpenIntervals(c.Request.Context(), providerID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "intervals": intervals})
}

func ownsProvider(c *gin.Context, providerID string) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	return middleware.Role(c) == middleware.RoleProvider && middleware.SubjectID(c) == providerID
}
