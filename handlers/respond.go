package handlers

import (
	"errors"
	"net/http"

	bookingRepo "eventra/database/repository/booking"
	reviewRepo "eventra/database/repository/review"
	scheduleRepo "eventra/database/repository/schedule"
	"eventra/services/availability"
	"eventra/services/booking"
	"eventra/services/review"
	"eventra/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError maps service errors onto HTTP responses. Validation
// errors identify the offending field, conflict errors carry structured
// detail, and anything else surfaces as a generic retryable failure.
func respondServiceError(c *gin.Context, err error) {
	var availErr *availability.AvailabilityError
	if errors.As(err, &availErr) {
		status := http.StatusBadRequest
		if availErr.Conflict {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": availErr.Code, "field": availErr.Field, "message": availErr.Message})
		return
	}

	var bookErr *booking.BookingError
	if errors.As(err, &bookErr) {
		status := http.StatusBadRequest
		if bookErr.IsConflict() {
			status = http.StatusConflict
		}
		payload := gin.H{"error": bookErr.Code, "message": bookErr.Message}
		if bookErr.Conflict != nil {
			payload["conflictingInterval"] = bookErr.Conflict
		}
		c.JSON(status, payload)
		return
	}

	var revErr *review.ReviewError
	if errors.As(err, &revErr) {
		status := http.StatusBadRequest
		switch {
		case revErr.Code == review.CodeForbidden:
			status = http.StatusForbidden
		case revErr.Conflict:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": revErr.Code, "field": revErr.Field, "message": revErr.Message})
		return
	}

	switch {
	case errors.Is(err, bookingRepo.ErrNotFound),
		errors.Is(err, reviewRepo.ErrNotFound),
		errors.Is(err, scheduleRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": err.Error()})
		return
	}

	// Infrastructure failure: log the internals, report "try again".
	utils.GetLogger().Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal",
		"message": "Something went wrong. Please try again later.",
	})
}
