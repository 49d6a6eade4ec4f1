package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/pkg/response"
)

type adminAuthService interface {
	Login(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
}

// AuthHandler exposes administrator authentication.
type AuthHandler struct {
	service adminAuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc adminAuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
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
