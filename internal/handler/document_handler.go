package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brfiq/internal/service"
	"brfiq/internal/xlsxexport"
)

// exportLimit caps how many documents one export request pulls.
const exportLimit = 1000

// DocumentHandler handles extracted-document endpoints.
type DocumentHandler struct {
	svc service.ExtractionService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc service.ExtractionService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	docs, total, err := h.svc.ListDocuments(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.svc.GetDocument(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Export handles GET /api/v1/documents/export. Streams an xlsx key-figures
// workbook over all documents.
func (h *DocumentHandler) Export(c *gin.Context) {
	docs, _, err := h.svc.ListDocuments(c.Request.Context(), 0, exportLimit)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("brf-key-figures-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := xlsxexport.Write(c.Writer, docs); err != nil {
		HandleError(c, err)
		return
	}
}
