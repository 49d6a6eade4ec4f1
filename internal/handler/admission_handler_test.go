package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peer-review-api/internal/dto"
	"github.com/noah-isme/peer-review-api/internal/models"
	appErrors "github.com/noah-isme/peer-review-api/pkg/errors"
)

type fakeAdmissionSrv struct {
	loginErr   error
	submitErr  error
	lastSubmit dto.SubmitReviewsRequest
}

func (f *fakeAdmissionSrv) Login(_ context.Context, req dto.StudentLoginRequest) (*dto.StudentLoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.StudentLoginResponse{
		Student:    models.Student{ID: 1, MatricNumber: req.MatricNumber},
		PeriodID:   3,
		PeriodName: "March 2025",
	}, nil
}

func (f *fakeAdmissionSrv) SubmitBatch(_ context.Context, req dto.SubmitReviewsRequest) (*dto.SubmitReviewsResponse, error) {
	f.lastSubmit = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &dto.SubmitReviewsResponse{Message: "Reviews submitted successfully", Count: len(req.Reviews)}, nil
}

func TestAdmissionHandlerLogin(t *testing.T) {
	h := NewAdmissionHandler(&fakeAdmissionSrv{})
	c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"matric_number": "A001"})

	h.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.StudentLoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	assert.Equal(t, "March 2025", resp.PeriodName)
	assert.False(t, resp.AlreadySubmitted)
}

func TestAdmissionHandlerLoginErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		code   string
	}{
		"unknown matric":   {appErrors.Clone(appErrors.ErrNotFound, "invalid matric number, please check and try again"), http.StatusNotFound, "NOT_FOUND"},
		"no active period": {appErrors.ErrNoActivePeriod, http.StatusBadRequest, "NO_ACTIVE_PERIOD"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewAdmissionHandler(&fakeAdmissionSrv{loginErr: tc.err})
			c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"matric_number": "A001"})
			h.Login(c)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeEnvelope(t, rec).Error.Code)
		})
	}
}

func TestAdmissionHandlerSubmit(t *testing.T) {
	srv := &fakeAdmissionSrv{}
	h := NewAdmissionHandler(srv)
	body := `{"reviewer_id":1,"review_period_id":3,"reviews":[{"reviewed_id":2,"question1_score":4,"question2_score":5}]}`
	c, rec := newTestContext(http.MethodPost, "/reviews/submit", body)

	h.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(3), srv.lastSubmit.ReviewPeriodID)
	require.Len(t, srv.lastSubmit.Reviews, 1)
	assert.Equal(t, 5, srv.lastSubmit.Reviews[0].Question2Score)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestAdmissionHandlerSubmitRejected(t *testing.T) {
	h := NewAdmissionHandler(&fakeAdmissionSrv{submitErr: appErrors.Clone(appErrors.ErrValidation, "scores must be between 1 and 5")})
	c, rec := newTestContext(http.MethodPost, "/reviews/submit", `{"reviewer_id":1,"review_period_id":3,"reviews":[]}`)

	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/reviews/submit", `not json`)
	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
