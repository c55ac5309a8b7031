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

type mockStudentRepo struct {
	students map[string]*models.Student
	updated  *models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) UpdateProfile(ctx context.Context, student *models.Student) error {
	m.updated = student
	m.students[student.ID] = student
	return nil
}

func newStudentFixture() (*StudentService, *mockStudentRepo) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"alice": {
			ID:            "alice",
			Email:         "alice@example.com",
			Name:          "Alice",
			Bio:           "guitarist",
			PreferredMode: "online",
			AvailableTime: "weekends",
			Active:        true,
		},
	}}
	return NewStudentService(repo, zap.NewNop()), repo
}

func TestGetStudent(t *testing.T) {
	svc, _ := newStudentFixture()

	student, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)

	_, err = svc.Get(context.Background(), "ghost")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGetRefHidesCredentials(t *testing.T) {
	svc, repo := newStudentFixture()
	repo.students["alice"].PasswordHash = "hash"

	ref, err := svc.GetRef(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", ref.ID)
	assert.Equal(t, "alice@example.com", ref.Email)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, repo := newStudentFixture()

	bio := "bassist now"
	mode := "both"
	student, err := svc.UpdateProfile(context.Background(), "alice", models.ProfileUpdate{
		Bio:           &bio,
		PreferredMode: &mode,
	})
	require.NoError(t, err)

	// Touched fields change, the rest stay put.
	assert.Equal(t, "bassist now", student.Bio)
	assert.Equal(t, "both", student.PreferredMode)
	assert.Equal(t, "Alice", student.Name)
	assert.Equal(t, "weekends", student.AvailableTime)
	require.NotNil(t, repo.updated)
}

func TestUpdateProfileUnknownStudent(t *testing.T) {
	svc, _ := newStudentFixture()

	name := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), "ghost", models.ProfileUpdate{Name: &name})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
