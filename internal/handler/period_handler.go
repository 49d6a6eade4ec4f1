package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	"github.com/noah-isme/peer-review-api/pkg/response"
)

type periodService interface {
	List(ctx context.Context) ([]models.ReviewPeriod, error)
	Get(ctx context.Context, id int64) (*models.ReviewPeriod, error)
	GetActive(ctx context.Context) (*models.ReviewPeriod, error)
	Create(ctx context.Context, req dto.CreatePeriodRequest) (*models.ReviewPeriod, error)
	Activate(ctx context.Context, req dto.ActivatePeriodRequest) (*models.ReviewPeriod, error)
	DeactivateAll(ctx context.Context) error
}

// PeriodHandler exposes review period endpoints.
type PeriodHandler struct {
	service periodService
}

// NewPeriodHandler constructs a period handler.
func NewPeriodHandler(svc periodService) *PeriodHandler {
	return &PeriodHandler{service: svc}
}

// List godoc
// @Summary List review periods
// @Description Newest first by year then month
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, periods)
}

// Get godoc
// @Summary Get review period
// @Tags Periods
// @Produce json
// @Param id path int true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/{id} [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"), "period id")
	if err != nil {
		response.Error(c, err)
		return
	}
	period, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, period)
}

// GetActive godoc
// @Summary Get active review period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/active [get]
func (h *PeriodHandler) GetActive(c *gin.Context) {
	period, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, period)
}

// Create godoc
// @Summary Create review period
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.CreatePeriodRequest true "Month and year"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	period, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.PeriodResponse{Period: period})
}

// Activate godoc
// @Summary Activate review period
// @Description Deactivates every other period in the same transaction
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.ActivatePeriodRequest true "Period to activate"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/periods/activate [post]
func (h *PeriodHandler) Activate(c *gin.Context) {
	var req dto.ActivatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	period, err := h.service.Activate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.PeriodResponse{Period: period})
}

// DeactivateAll godoc
// @Summary Deactivate all review periods
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/periods/deactivate-all [post]
func (h *PeriodHandler) DeactivateAll(c *gin.Context) {
	if err := h.service.DeactivateAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MessageResponse{Message: "All periods deactivated"})
}
