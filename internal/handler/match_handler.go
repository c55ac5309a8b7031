package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankithlg/PeerBridge/internal/dto"
	"github.com/ankithlg/PeerBridge/internal/service"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
	"github.com/ankithlg/PeerBridge/pkg/response"
)

// MatchHandler serves scored teacher matches.
type MatchHandler struct {
	service *service.MatchService
}

// NewMatchHandler creates a new handler.
func NewMatchHandler(svc *service.MatchService) *MatchHandler {
	return &MatchHandler{service: svc}
}

// Find godoc
// @Summary Find teachers for a skill
// @Description Score and rank teaching offers against the caller's criteria
// @Tags Matching
// @Accept json
// @Produce json
// @Param payload body dto.MatchQuery true "Match criteria"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /matches [post]
func (h *MatchHandler) Find(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.MatchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid match query"))
		return
	}

	page, err := h.service.FindMatches(c.Request.Context(), claims.StudentID, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, page, nil)
}
