package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brfiq/internal/middleware"
	"brfiq/internal/service"
)

// JobHandler handles extraction job endpoints.
type JobHandler struct {
	svc service.ExtractionService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(svc service.ExtractionService) *JobHandler {
	return &JobHandler{svc: svc}
}

// Create handles POST /api/v1/jobs. Accepts a multipart PDF upload and queues
// it for extraction.
func (h *JobHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}
	defer f.Close()

	job, err := h.svc.CreateJob(c.Request.Context(), service.CreateJobInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        f,
		Provider:    c.PostForm("provider"),
		RequestedBy: middleware.GetSubject(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, job)
}

// GetByID handles GET /api/v1/jobs/:id
func (h *JobHandler) GetByID(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	job, err := h.svc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}

// GetDocument handles GET /api/v1/jobs/:id/document
func (h *JobHandler) GetDocument(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	doc, err := h.svc.GetDocumentByJob(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}
