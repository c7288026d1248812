package handlers

import (
	"net/http"

	"eventra/middleware"
	"eventra/models"
	"eventra/services/review"
	"eventra/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler exposes review submission and rating-aggregate reads.
type ReviewHandler struct {
	Svc review.Service
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(svc review.Service) *ReviewHandler {
	return &ReviewHandler{Svc: svc}
}

// SubmitReviewHandler creates a review authored by the authenticated user.
func (h *ReviewHandler) SubmitReviewHandler(c *gin.Context) {
	var input models.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	input.UserID = middleware.SubjectID(c)

	r, err := h.Svc.SubmitReview(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type editReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// EditReviewHandler updates a review's rating and comment.
func (h *ReviewHandler) EditReviewHandler(c *gin.Context) {
	var req editReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	r, err := h.Svc.EditReview(c.Request.Context(), c.Param("id"), middleware.SubjectID(c), middleware.IsAdmin(c), req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteReviewHandler removes a review.
func (h *ReviewHandler) DeleteReviewHandler(c *gin.Context) {
	if err := h.Svc.DeleteReview(c.Request.Context(), c.Param("id"), middleware.SubjectID(c), middleware.IsAdmin(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetProviderRatingHandler returns the provider's rating aggregate.
func (h *ReviewHandler) GetProviderRatingHandler(c *gin.Context) {
	h.getRating(c, models.TargetProvider)
}

// GetServiceRatingHandler returns the service's rating aggregate.
func (h *ReviewHandler) GetServiceRatingHandler(c *gin.Context) {
	h.getRating(c, models.TargetService)
}

func (h *ReviewHandler) getRating(c *gin.Context, kind models.RatingTarget) {
	agg, err := h.Svc.GetRating(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

// ListProviderReviewsHandler returns all reviews for a provider.
func (h *ReviewHandler) ListProviderReviewsHandler(c *gin.Context) {
	h.listReviews(c, models.TargetProvider)
}

// ListServiceReviewsHandler returns all reviews for a service.
func (h *ReviewHandler) ListServiceReviewsHandler(c *gin.Context) {
	h.listReviews(c, models.TargetService)
}

func (h *ReviewHandler) listReviews(c *gin.Context, kind models.RatingTarget) {
	reviews, err := h.Svc.ListByTarget(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
