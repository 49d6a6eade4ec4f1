package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/pkg/response"
)

type admissionService interface {
	Login(ctx context.Context, req dto.StudentLoginRequest) (*dto.StudentLoginResponse, error)
	SubmitBatch(ctx context.Context, req dto.SubmitReviewsRequest) (*dto.SubmitReviewsResponse, error)
}

// AdmissionHandler serves student login and review submission.
type AdmissionHandler struct {
	service admissionService
}

// NewAdmissionHandler constructs an admission handler.
func NewAdmissionHandler(svc admissionService) *AdmissionHandler {
	return &AdmissionHandler{service: svc}
}

// Login godoc
// @Summary Student login
// @Description Resolves a matric number against the active review period
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentLoginRequest true "Matric number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/login [post]
func (h *AdmissionHandler) Login(c *gin.Context) {
	var req dto.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}

// Submit godoc
// @Summary Submit peer reviews
// @Description Stores a reviewer's whole batch atomically; resubmitting replaces earlier scores
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body dto.SubmitReviewsRequest true "Review batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reviews/submit [post]
func (h *AdmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	resp, err := h.service.SubmitBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}
