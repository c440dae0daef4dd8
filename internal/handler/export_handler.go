package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/internal/dto"
	"github.com/noah-isme/sma-journal-api/internal/middleware"
	"github.com/noah-isme/sma-journal-api/internal/service"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/response"
	"github.com/noah-isme/sma-journal-api/pkg/storage"
)

// ExportHandler exposes journal export endpoints.
type ExportHandler struct {
	exports *service.JournalExportService
	files   *storage.ArtifactStore
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports *service.JournalExportService, files *storage.ArtifactStore) *ExportHandler {
	return &ExportHandler{exports: exports, files: files}
}

// Create godoc
// @Summary Queue a journal export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export format and filter"
// @Success 202 {object} response.Envelope
// @Router /journal/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	createdBy := ""
	if claims := middleware.ClaimsFrom(c); claims != nil {
		createdBy = claims.UserID
	}
	job, err := h.exports.Create(c.Request.Context(), req, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Poll an export job
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /journal/exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	job, err := h.exports.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /journal/exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.exports.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.Header("Content-Type", contentType)
	c.File(h.files.Path(relPath))
}
