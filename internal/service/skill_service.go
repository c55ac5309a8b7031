package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
)

type skillRepository interface {
	CreateTeachSkill(ctx context.Context, skill *models.TeachSkill) error
	CreateLearnSkill(ctx context.Context, skill *models.LearnSkill) error
	ListTeachSkills(ctx context.Context, studentID string) ([]models.TeachSkill, error)
	ListLearnSkills(ctx context.Context, studentID string) ([]models.LearnSkill, error)
	FindTeachSkill(ctx context.Context, id string) (*models.TeachSkill, error)
	FindLearnSkill(ctx context.Context, id string) (*models.LearnSkill, error)
	DeleteTeachSkill(ctx context.Context, id string) error
	DeleteLearnSkill(ctx context.Context, id string) error
}

// SkillService manages the teaching offers and learning interests a
// student advertises on their profile.
type SkillService struct {
	repo   skillRepository
	logger *zap.Logger
}

func NewSkillService(repo skillRepository, logger *zap.Logger) *SkillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillService{repo: repo, logger: logger}
}

// AddTeachSkill registers a teaching offer for the student.
func (s *SkillService) AddTeachSkill(ctx context.Context, studentID, skillName string, level models.ExperienceLevel) (*models.TeachSkill, error) {
	skillName = strings.TrimSpace(skillName)
	if skillName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "skill_name is required")
	}
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid experience level %q", level))
	}

	skill := &models.TeachSkill{
		StudentID:       studentID,
		SkillName:       skillName,
		ExperienceLevel: level,
	}
	if err := s.repo.CreateTeachSkill(ctx, skill); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teach skill")
	}

	s.logger.Info("teach skill added",
		zap.String("student_id", studentID),
		zap.String("skill", skillName),
		zap.String("level", string(level)))
	return skill, nil
}

// AddLearnSkill registers a learning interest for the student.
func (s *SkillService) AddLearnSkill(ctx context.Context, studentID, skillName string) (*models.LearnSkill, error) {
	skillName = strings.TrimSpace(skillName)
	if skillName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "skill_name is required")
	}

	skill := &models.LearnSkill{
		StudentID: studentID,
		SkillName: skillName,
	}
	if err := s.repo.CreateLearnSkill(ctx, skill); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create learn skill")
	}

	s.logger.Info("learn skill added",
		zap.String("student_id", studentID),
		zap.String("skill", skillName))
	return skill, nil
}

// ListTeachSkills returns the student's teaching offers.
func (s *SkillService) ListTeachSkills(ctx context.Context, studentID string) ([]models.TeachSkill, error) {
	skills, err := s.repo.ListTeachSkills(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teach skills")
	}
	return skills, nil
}

// ListLearnSkills returns the student's learning interests.
func (s *SkillService) ListLearnSkills(ctx context.Context, studentID string) ([]models.LearnSkill, error) {
	skills, err := s.repo.ListLearnSkills(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learn skills")
	}
	return skills, nil
}

// DeleteTeachSkill removes a teaching offer. Only the owner may delete
// their own rows.
func (s *SkillService) DeleteTeachSkill(ctx context.Context, studentID, skillID string) error {
	skill, err := s.repo.FindTeachSkill(ctx, skillID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teach skill not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teach skill")
	}
	if skill.StudentID != studentID {
		return appErrors.ErrForbidden
	}

	if err := s.repo.DeleteTeachSkill(ctx, skillID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teach skill")
	}

	s.logger.Info("teach skill removed", zap.String("student_id", studentID), zap.String("skill_id", skillID))
	return nil
}

// DeleteLearnSkill removes a learning interest. Only the owner may
// delete their own rows.
func (s *SkillService) DeleteLearnSkill(ctx context.Context, studentID, skillID string) error {
	skill, err := s.repo.FindLearnSkill(ctx, skillID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "learn skill not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learn skill")
	}
	if skill.StudentID != studentID {
		return appErrors.ErrForbidden
	}

	if err := s.repo.DeleteLearnSkill(ctx, skillID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete learn skill")
	}

	s.logger.Info("learn skill removed", zap.String("student_id", studentID), zap.String("skill_id", skillID))
	return nil
}
