package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/middleware"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/service"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type requestRepoFake struct {
	created       []*models.BorrowingRequest
	found         *models.BorrowingRequest
	findErr       error
	detail        *models.BorrowingRequestDetail
	detailErr     error
	list          []models.BorrowingRequestDetail
	lastFilter    models.RequestFilter
	overlapCount  int
	approveResult *models.BorrowingRequest
	approveErr    error
	rejectOK      bool
	returnOK      bool
}

func (f *requestRepoFake) Create(ctx context.Context, req *models.BorrowingRequest) error {
	req.ID = "req-new"
	f.created = append(f.created, req)
	return nil
}

func (f *requestRepoFake) FindByID(ctx context.Context, id string) (*models.BorrowingRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.found, nil
}

func (f *requestRepoFake) FindDetailByID(ctx context.Context, id string) (*models.BorrowingRequestDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

func (f *requestRepoFake) List(ctx context.Context, filter models.RequestFilter) ([]models.BorrowingRequestDetail, error) {
	f.lastFilter = filter
	return f.list, nil
}

func (f *requestRepoFake) CountOverlappingApproved(ctx context.Context, equipmentID string, start, end models.Date, excludeRequestID string) (int, error) {
	return f.overlapCount, nil
}

func (f *requestRepoFake) Approve(ctx context.Context, requestID, approverID string, now time.Time) (*models.BorrowingRequest, error) {
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return f.approveResult, nil
}

func (f *requestRepoFake) Reject(ctx context.Context, requestID, approverID string, now time.Time) (bool, error) {
	return f.rejectOK, nil
}

func (f *requestRepoFake) MarkReturned(ctx context.Context, requestID string, now time.Time) (bool, error) {
	return f.returnOK, nil
}

type equipmentFinderFake struct {
	items map[string]*models.Equipment
}

func (f equipmentFinderFake) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	if item, ok := f.items[id]; ok {
		return item, nil
	}
	return nil, sql.ErrNoRows
}

func newRequestHandlerForTest(repo *requestRepoFake, equipment equipmentFinderFake) *RequestHandler {
	svc := service.NewRequestService(repo, equipment, nil, zap.NewNop())
	exports := service.NewExportService(svc, zap.NewNop())
	return NewRequestHandler(svc, exports)
}

func testContext(t *testing.T, method, target string, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestRequestHandlerCreate(t *testing.T) {
	repo := &requestRepoFake{}
	equipment := equipmentFinderFake{items: map[string]*models.Equipment{"equip-1": {ID: "equip-1", Quantity: 2}}}
	handler := newRequestHandlerForTest(repo, equipment)

	start := models.DateOf(time.Now().AddDate(0, 0, 1))
	end := models.DateOf(time.Now().AddDate(0, 0, 5))
	body := `{"equipment_id":"equip-1","start_date":"` + start.String() + `","end_date":"` + end.String() + `"}`

	c, rec := testContext(t, http.MethodPost, "/api/requests", body, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var created models.BorrowingRequest
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "user-1", created.UserID)
}

func TestRequestHandlerCreateInvalidPayload(t *testing.T) {
	handler := newRequestHandlerForTest(&requestRepoFake{}, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodPost, "/api/requests", `{"equipment_id":`, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestHandlerCreateMissingClaims(t *testing.T) {
	handler := newRequestHandlerForTest(&requestRepoFake{}, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodPost, "/api/requests", `{}`, nil)
	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestHandlerApprove(t *testing.T) {
	approver := "staff-1"
	repo := &requestRepoFake{approveResult: &models.BorrowingRequest{ID: "req-1", Status: models.StatusApproved, ApprovedBy: &approver}}
	handler := newRequestHandlerForTest(repo, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodPut, "/api/requests/req-1/approve", "", &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Approve(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var approved models.BorrowingRequest
	require.NoError(t, json.Unmarshal(envelope.Data, &approved))
	assert.Equal(t, models.StatusApproved, approved.Status)
}

func TestRequestHandlerApproveForbiddenForStudents(t *testing.T) {
	handler := newRequestHandlerForTest(&requestRepoFake{}, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodPut, "/api/requests/req-1/approve", "", &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Approve(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestHandlerListPassesStatusFilter(t *testing.T) {
	repo := &requestRepoFake{}
	handler := newRequestHandlerForTest(repo, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodGet, "/api/requests?status=pending", "", &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.StatusPending, *repo.lastFilter.Status)
}

func TestRequestHandlerRejectNoContent(t *testing.T) {
	repo := &requestRepoFake{rejectOK: true}
	handler := newRequestHandlerForTest(repo, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodPut, "/api/requests/req-1/reject", "", &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Reject(c)
	// gin only flushes a body-less status at end-of-request; the test
	// context has no request lifecycle, so flush explicitly.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestHandlerExportCSV(t *testing.T) {
	repo := &requestRepoFake{list: []models.BorrowingRequestDetail{{
		BorrowingRequest: models.BorrowingRequest{ID: "req-1", RequestDate: time.Now(), StartDate: models.Today(), EndDate: models.Today(), Status: models.StatusPending},
		UserName:         "Student A",
		UserEmail:        "a@example.com",
		EquipmentName:    "Microscope",
	}}}
	handler := newRequestHandlerForTest(repo, equipmentFinderFake{})

	c, rec := testContext(t, http.MethodGet, "/api/requests/export?format=csv", "", &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Microscope")
}
