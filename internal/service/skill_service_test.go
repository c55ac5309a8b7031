package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
)

type mockSkillRepo struct {
	teach   map[string]*models.TeachSkill
	learn   map[string]*models.LearnSkill
	deleted []string
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{
		teach: make(map[string]*models.TeachSkill),
		learn: make(map[string]*models.LearnSkill),
	}
}

func (m *mockSkillRepo) CreateTeachSkill(ctx context.Context, skill *models.TeachSkill) error {
	skill.ID = "teach-001"
	m.teach[skill.ID] = skill
	return nil
}

func (m *mockSkillRepo) CreateLearnSkill(ctx context.Context, skill *models.LearnSkill) error {
	skill.ID = "learn-001"
	m.learn[skill.ID] = skill
	return nil
}

func (m *mockSkillRepo) ListTeachSkills(ctx context.Context, studentID string) ([]models.TeachSkill, error) {
	var out []models.TeachSkill
	for _, s := range m.teach {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSkillRepo) ListLearnSkills(ctx context.Context, studentID string) ([]models.LearnSkill, error) {
	var out []models.LearnSkill
	for _, s := range m.learn {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSkillRepo) FindTeachSkill(ctx context.Context, id string) (*models.TeachSkill, error) {
	if s, ok := m.teach[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSkillRepo) FindLearnSkill(ctx context.Context, id string) (*models.LearnSkill, error) {
	if s, ok := m.learn[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSkillRepo) DeleteTeachSkill(ctx context.Context, id string) error {
	delete(m.teach, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSkillRepo) DeleteLearnSkill(ctx context.Context, id string) error {
	delete(m.learn, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestAddTeachSkill(t *testing.T) {
	repo := newMockSkillRepo()
	svc := NewSkillService(repo, zap.NewNop())

	skill, err := svc.AddTeachSkill(context.Background(), "alice", "  Guitar  ", models.ExperienceAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "Guitar", skill.SkillName)
	assert.Equal(t, models.ExperienceAdvanced, skill.ExperienceLevel)
	assert.Equal(t, "alice", skill.StudentID)
}

func TestAddTeachSkillValidation(t *testing.T) {
	svc := NewSkillService(newMockSkillRepo(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.AddTeachSkill(ctx, "alice", "   ", models.ExperienceAdvanced)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.AddTeachSkill(ctx, "alice", "Guitar", models.ExperienceLevel("EXPERT"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAddLearnSkill(t *testing.T) {
	repo := newMockSkillRepo()
	svc := NewSkillService(repo, zap.NewNop())

	skill, err := svc.AddLearnSkill(context.Background(), "alice", "Piano")
	require.NoError(t, err)
	assert.Equal(t, "Piano", skill.SkillName)

	list, err := svc.ListLearnSkills(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteTeachSkillOwnership(t *testing.T) {
	repo := newMockSkillRepo()
	svc := NewSkillService(repo, zap.NewNop())
	ctx := context.Background()

	skill, err := svc.AddTeachSkill(ctx, "alice", "Guitar", models.ExperienceBeginner)
	require.NoError(t, err)

	err = svc.DeleteTeachSkill(ctx, "mallory", skill.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.DeleteTeachSkill(ctx, "alice", skill.ID)
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, skill.ID)

	err = svc.DeleteTeachSkill(ctx, "alice", skill.ID)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDeleteLearnSkillOwnership(t *testing.T) {
	repo := newMockSkillRepo()
	svc := NewSkillService(repo, zap.NewNop())
	ctx := context.Background()

	skill, err := svc.AddLearnSkill(ctx, "alice", "Piano")
	require.NoError(t, err)

	err = svc.DeleteLearnSkill(ctx, "mallory", skill.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.DeleteLearnSkill(ctx, "alice", skill.ID)
	assert.NoError(t, err)
}
