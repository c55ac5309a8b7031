package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankithlg/PeerBridge/internal/models"
	"github.com/ankithlg/PeerBridge/internal/service"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
	"github.com/ankithlg/PeerBridge/pkg/response"
)

// SkillHandler manages the authenticated student's skill lists.
type SkillHandler struct {
	service *service.SkillService
}

// NewSkillHandler creates a new handler.
func NewSkillHandler(svc *service.SkillService) *SkillHandler {
	return &SkillHandler{service: svc}
}

type teachSkillPayload struct {
	SkillName       string `json:"skill_name"`
	ExperienceLevel string `json:"experience_level"`
}

type learnSkillPayload struct {
	SkillName string `json:"skill_name"`
}

// AddTeachSkill godoc
// @Summary Add teaching offer
// @Tags Skills
// @Accept json
// @Produce json
// @Param payload body teachSkillPayload true "Skill to teach"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /skills/teach [post]
func (h *SkillHandler) AddTeachSkill(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload teachSkillPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid skill payload"))
		return
	}

	skill, err := h.service.AddTeachSkill(c.Request.Context(), claims.StudentID, payload.SkillName, models.ExperienceLevel(payload.ExperienceLevel))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, skill)
}

// ListTeachSkills godoc
// @Summary List teaching offers
// @Tags Skills
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /skills/teach [get]
func (h *SkillHandler) ListTeachSkills(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	skills, err := h.service.ListTeachSkills(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, skills, nil)
}

// DeleteTeachSkill godoc
// @Summary Remove teaching offer
// @Tags Skills
// @Param id path string true "Skill ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /skills/teach/{id} [delete]
func (h *SkillHandler) DeleteTeachSkill(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteTeachSkill(c.Request.Context(), claims.StudentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddLearnSkill godoc
// @Summary Add learning interest
// @Tags Skills
// @Accept json
// @Produce json
// @Param payload body learnSkillPayload true "Skill to learn"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /skills/learn [post]
func (h *SkillHandler) AddLearnSkill(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload learnSkillPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid skill payload"))
		return
	}

	skill, err := h.service.AddLearnSkill(c.Request.Context(), claims.StudentID, payload.SkillName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, skill)
}

// ListLearnSkills godoc
// @Summary List learning interests
// @Tags Skills
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /skills/learn [get]
func (h *SkillHandler) ListLearnSkills(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	skills, err := h.service.ListLearnSkills(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, skills, nil)
}

// DeleteLearnSkill godoc
// @Summary Remove learning interest
// @Tags Skills
// @Param id path string true "Skill ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /skills/learn/{id} [delete]
func (h *SkillHandler) DeleteLearnSkill(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteLearnSkill(c.Request.Context(), claims.StudentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
