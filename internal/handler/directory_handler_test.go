package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type fakeDirectorySrv struct {
	lastTerm  string
	lastGroup int64
}

func (f *fakeDirectorySrv) GetStudent(_ context.Context, id int64) (*models.Student, error) {
	if id != 1 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &models.Student{ID: 1, Name: "Alice"}, nil
}

func (f *fakeDirectorySrv) GroupMembers(_ context.Context, groupID int64) ([]models.Student, error) {
	f.lastGroup = groupID
	return []models.Student{{ID: 1, GroupID: groupID}, {ID: 2, GroupID: groupID}}, nil
}

func (f *fakeDirectorySrv) Search(_ context.Context, term string) ([]models.Student, error) {
	f.lastTerm = term
	return []models.Student{}, nil
}

func (f *fakeDirectorySrv) Groups(context.Context) ([]models.Group, error) {
	return []models.Group{{ID: 1, Name: "Group A"}}, nil
}

func (f *fakeDirectorySrv) Questions(context.Context) ([]models.ReviewQuestion, error) {
	return []models.ReviewQuestion{{ID: 1, QuestionNumber: 1}, {ID: 2, QuestionNumber: 2}}, nil
}

func TestDirectoryHandlerStudent(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectorySrv{})

	c, rec := newTestContext(http.MethodGet, "/students/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Student(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/students/9", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Student(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectoryHandlerMembers(t *testing.T) {
	srv := &fakeDirectorySrv{}
	h := NewDirectoryHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/groups/4/members", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	h.Members(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), srv.lastGroup)
	var members []models.Student
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &members))
	assert.Len(t, members, 2)
}

func TestDirectoryHandlerSearchReturnsEmptyArray(t *testing.T) {
	srv := &fakeDirectorySrv{}
	h := NewDirectoryHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/students/search?q=al", nil)

	h.Search(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "al", srv.lastTerm)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}

func TestDirectoryHandlerListings(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectorySrv{})

	c, rec := newTestContext(http.MethodGet, "/groups", nil)
	h.Groups(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group A")

	c, rec = newTestContext(http.MethodGet, "/questions", nil)
	h.Questions(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"question_number":2`)
}
