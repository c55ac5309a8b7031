package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/dto"
	"github.com/ankithlg/PeerBridge/internal/models"
	"github.com/ankithlg/PeerBridge/internal/service"
)

type memSkillCatalog struct {
	candidates []models.TeachSkillCandidate
}

func (m *memSkillCatalog) FindTeachersBySkill(ctx context.Context, skillName string) ([]models.TeachSkillCandidate, error) {
	return m.candidates, nil
}

type noAcceptedChecker struct{}

func (noAcceptedChecker) ExistsAccepted(ctx context.Context, a, b string) (bool, error) {
	return false, nil
}

func buildMatchRouter(candidates []models.TeachSkillCandidate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewMatchService(&memSkillCatalog{candidates: candidates}, noAcceptedChecker{}, nil, false, 0, nil, zap.NewNop())
	h := NewMatchHandler(svc)

	router := gin.New()
	router.Use(authAs())
	router.POST("/matches", h.Find)
	return router
}

func guitarTeacher(id string, level models.ExperienceLevel) models.TeachSkillCandidate {
	return models.TeachSkillCandidate{
		TeachSkill: models.TeachSkill{
			ID:              "offer-" + id,
			StudentID:       id,
			SkillName:       "Guitar",
			ExperienceLevel: level,
		},
		Teacher: models.StudentRef{
			ID:            id,
			Name:          "Teacher " + id,
			Email:         id + "@example.com",
			PreferredMode: "both",
		},
	}
}

func TestMatchRouteRanksTeachers(t *testing.T) {
	router := buildMatchRouter([]models.TeachSkillCandidate{
		guitarTeacher("beginner", models.ExperienceBeginner),
		guitarTeacher("advanced", models.ExperienceAdvanced),
	})

	payload := `{"skill_name":"Guitar","preferred_mode":"online"}`
	req, _ := http.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Student", "learner")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data dto.MatchPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Matches, 2)
	require.Equal(t, "advanced", envelope.Data.Matches[0].ID)
	require.Greater(t, envelope.Data.Matches[0].MatchScore, envelope.Data.Matches[1].MatchScore)
}

func TestMatchRouteExcludesRequester(t *testing.T) {
	router := buildMatchRouter([]models.TeachSkillCandidate{
		guitarTeacher("learner", models.ExperienceAdvanced),
		guitarTeacher("other", models.ExperienceAdvanced),
	})

	payload := `{"skill_name":"Guitar","preferred_mode":"online"}`
	req, _ := http.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Student", "learner")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data dto.MatchPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Matches, 1)
	require.Equal(t, "other", envelope.Data.Matches[0].ID)
}

func TestMatchRouteRequiresSkillName(t *testing.T) {
	router := buildMatchRouter(nil)

	req, _ := http.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Student", "learner")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMatchRouteRequiresAuth(t *testing.T) {
	router := buildMatchRouter(nil)

	req, _ := http.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(`{"skill_name":"Guitar"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
