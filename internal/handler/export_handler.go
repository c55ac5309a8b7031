package handler

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankithlg/PeerBridge/internal/service"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
	"github.com/ankithlg/PeerBridge/pkg/response"
)

// ExportHandler creates connection exports and serves their downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Export accepted connections
// @Description Render the caller's accepted connections as csv or pdf
// @Tags Exports
// @Produce json
// @Param format query string true "csv or pdf"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/connections [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	ticket, err := h.service.CreateConnectionsExport(c.Request.Context(), claims.StudentID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ticket)
}

// Download godoc
// @Summary Download an export
// @Description Stream a previously created export given its signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, name, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(name))
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, filepath.Base(name), time.Time{}, file)
}
