package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"brfiq/internal/domain"
	"brfiq/internal/handler"
	"brfiq/mocks"
)

func newDocumentHandler() (*handler.DocumentHandler, *mocks.MockExtractionService) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewDocumentHandler(mockSvc)
	return h, mockSvc
}

func TestDocumentHandler_List_Success(t *testing.T) {
	h, mockSvc := newDocumentHandler()

	docs := []domain.Document{
		{ID: uuid.New(), Filename: "brf_bjornen_2023.pdf", AvgConfidence: 78.5},
	}
	mockSvc.On("ListDocuments", mock.Anything, 0, 20).Return(docs, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Meta.Total)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newDocumentHandler()

	docID := uuid.New()
	mockSvc.On("GetDocument", mock.Anything, docID).Return(nil, domain.ErrDocumentNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/"+docID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", resp.Error.Code)
}

func TestDocumentHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newDocumentHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Export_SetsXLSXHeaders(t *testing.T) {
	h, mockSvc := newDocumentHandler()
	mockSvc.On("ListDocuments", mock.Anything, 0, 1000).Return([]domain.Document{}, 0, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/documents/export", nil)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestJobHandler_GetByID_Success(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockSvc)

	jobID := uuid.New()
	mockSvc.On("GetJob", mock.Anything, jobID).Return(&domain.ExtractionJob{
		ID:       jobID,
		Filename: "brf_bjornen_2023.pdf",
		Status:   domain.JobStatusCompleted,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}
