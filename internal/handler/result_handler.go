package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/middleware"
	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
	"github.com/noah-isme/peer-review-api/pkg/response"
)

type resultService interface {
	GroupResults(ctx context.Context, periodID, groupID int64) ([]models.StudentResult, bool, error)
	Export(ctx context.Context, periodID, groupID int64, format dto.ExportFormat) (*dto.ResultsExport, error)
}

// ResultHandler serves aggregated group results.
type ResultHandler struct {
	service resultService
}

// NewResultHandler constructs the handler.
func NewResultHandler(svc resultService) *ResultHandler {
	return &ResultHandler{service: svc}
}

// GroupResults godoc
// @Summary Group results for a period
// @Description Per-student averages of the reviews received; students without reviews are omitted
// @Tags Results
// @Produce json
// @Param period_id query int true "Period ID"
// @Param group_id query int true "Group ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /results [get]
func (h *ResultHandler) GroupResults(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	periodID := parseOptionalID(c.Query("period_id"))
	groupID := parseOptionalID(c.Query("group_id"))

	results, cacheHit, err := h.service.GroupResults(c.Request.Context(), periodID, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, results, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export group results
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param period_id query int true "Period ID"
// @Param group_id query int true "Group ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	periodID := parseOptionalID(c.Query("period_id"))
	groupID := parseOptionalID(c.Query("group_id"))
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV)))

	file, err := h.service.Export(c.Request.Context(), periodID, groupID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
