package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateProfile(ctx context.Context, student *models.Student) error
}

// StudentService exposes profile reads and partial updates.
type StudentService struct {
	repo   studentRepository
	logger *zap.Logger
}

func NewStudentService(repo studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// Get loads a student's full record.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetRef loads a student's public profile projection.
func (s *StudentService) GetRef(ctx context.Context, id string) (models.StudentRef, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return models.StudentRef{}, err
	}
	return student.Ref(), nil
}

// UpdateProfile applies a partial edit to the student's own profile.
// Nil fields keep their current value.
func (s *StudentService) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		student.Name = *update.Name
	}
	if update.Bio != nil {
		student.Bio = *update.Bio
	}
	if update.PreferredMode != nil {
		student.PreferredMode = *update.PreferredMode
	}
	if update.AvailableTime != nil {
		student.AvailableTime = *update.AvailableTime
	}

	if err := s.repo.UpdateProfile(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.logger.Info("profile updated", zap.String("student_id", id))
	return student, nil
}
