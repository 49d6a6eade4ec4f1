package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/models"
	"github.com/noah-isme/peer-review-api/pkg/response"
)

type directoryService interface {
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GroupMembers(ctx context.Context, groupID int64) ([]models.Student, error)
	Search(ctx context.Context, term string) ([]models.Student, error)
	Groups(ctx context.Context) ([]models.Group, error)
	Questions(ctx context.Context) ([]models.ReviewQuestion, error)
}

// DirectoryHandler exposes read-only lookups used by the review form.
type DirectoryHandler struct {
	service directoryService
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(svc directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// Groups godoc
// @Summary List groups
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *DirectoryHandler) Groups(c *gin.Context) {
	groups, err := h.service.Groups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, groups)
}

// Members godoc
// @Summary List group members
// @Tags Directory
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/members [get]
func (h *DirectoryHandler) Members(c *gin.Context) {
	id, err := parseID(c.Param("id"), "group id")
	if err != nil {
		response.Error(c, err)
		return
	}
	members, err := h.service.GroupMembers(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, members)
}

// Student godoc
// @Summary Get student
// @Tags Directory
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *DirectoryHandler) Student(c *gin.Context) {
	id, err := parseID(c.Param("id"), "student id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.service.GetStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Search godoc
// @Summary Search students by name
// @Description Case-insensitive; terms shorter than two characters return an empty list
// @Tags Directory
// @Produce json
// @Param q query string true "Name fragment"
// @Success 200 {object} response.Envelope
// @Router /students/search [get]
func (h *DirectoryHandler) Search(c *gin.Context) {
	students, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// Questions godoc
// @Summary List review questions
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /questions [get]
func (h *DirectoryHandler) Questions(c *gin.Context) {
	questions, err := h.service.Questions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, questions)
}
