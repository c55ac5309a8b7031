package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankithlg/PeerBridge/internal/models"
	"github.com/ankithlg/PeerBridge/internal/service"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
	"github.com/ankithlg/PeerBridge/pkg/response"
)

// ConnectionHandler exposes the connection-request lifecycle.
type ConnectionHandler struct {
	service *service.ConnectionService
}

// NewConnectionHandler creates a new handler.
func NewConnectionHandler(svc *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: svc}
}

type connectionRequestPayload struct {
	ReceiverID string `json:"receiver_id"`
}

type connectionResponsePayload struct {
	Decision string `json:"decision"`
}

// Request godoc
// @Summary Send connection request
// @Description Open a pending connection request towards another student
// @Tags Connections
// @Accept json
// @Produce json
// @Param payload body connectionRequestPayload true "Receiver"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /connections [post]
func (h *ConnectionHandler) Request(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload connectionRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.ReceiverID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "receiver_id is required"))
		return
	}

	req, err := h.service.Request(c.Request.Context(), claims.StudentID, payload.ReceiverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, req)
}

// Respond godoc
// @Summary Resolve a pending request
// @Description Accept or reject a request addressed to the caller
// @Tags Connections
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body connectionResponsePayload true "Decision: ACCEPTED or REJECTED"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /connections/{id}/respond [post]
func (h *ConnectionHandler) Respond(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload connectionResponsePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}

	req, err := h.service.Respond(c.Request.Context(), c.Param("id"), claims.StudentID, models.ConnectionDecision(payload.Decision))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, req, nil)
}

// List godoc
// @Summary List own connections
// @Description Every request involving the caller, newest first
// @Tags Connections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	list, err := h.service.ListForStudent(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list, nil)
}

// Status godoc
// @Summary Connection status with another student
// @Description Status of the latest request between the caller and studentId
// @Tags Connections
// @Produce json
// @Param studentId query string true "The other student's ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /connections/status [get]
func (h *ConnectionHandler) Status(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	otherID := c.Query("studentId")
	if otherID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}

	status, err := h.service.Status(c.Request.Context(), claims.StudentID, otherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"status": status}, nil)
}

// Remove godoc
// @Summary Remove an accepted connection
// @Description Delete the connection with studentId, wiping its history
// @Tags Connections
// @Produce json
// @Param studentId query string true "The other student's ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /connections [delete]
func (h *ConnectionHandler) Remove(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	otherID := c.Query("studentId")
	if otherID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}

	outcome, err := h.service.Remove(c.Request.Context(), claims.StudentID, otherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"outcome": outcome}, nil)
}
