package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankithlg/PeerBridge/internal/models"
)

// SkillRepository provides database access to teach offers and learn requests.
type SkillRepository struct {
	db *sqlx.DB
}

// NewSkillRepository creates a new instance of SkillRepository.
func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// CreateTeachSkill inserts a teaching offer.
func (r *SkillRepository) CreateTeachSkill(ctx context.Context, skill *models.TeachSkill) error {
	if skill.ID == "" {
		skill.ID = uuid.NewString()
	}
	if skill.CreatedAt.IsZero() {
		skill.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teach_skills (id, student_id, skill_name, experience_level, created_at) VALUES (:id, :student_id, :skill_name, :experience_level, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, skill); err != nil {
		return fmt.Errorf("create teach skill: %w", err)
	}
	return nil
}

// CreateLearnSkill inserts a learning interest.
func (r *SkillRepository) CreateLearnSkill(ctx context.Context, skill *models.LearnSkill) error {
	if skill.ID == "" {
		skill.ID = uuid.NewString()
	}
	if skill.CreatedAt.IsZero() {
		skill.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO learn_skills (id, student_id, skill_name, created_at) VALUES (:id, :student_id, :skill_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, skill); err != nil {
		return fmt.Errorf("create learn skill: %w", err)
	}
	return nil
}

// ListTeachSkills returns the teaching offers owned by a student.
func (r *SkillRepository) ListTeachSkills(ctx context.Context, studentID string) ([]models.TeachSkill, error) {
	const query = `SELECT id, student_id, skill_name, experience_level, created_at FROM teach_skills WHERE student_id = $1 ORDER BY created_at DESC`
	var skills []models.TeachSkill
	if err := r.db.SelectContext(ctx, &skills, query, studentID); err != nil {
		return nil, fmt.Errorf("list teach skills: %w", err)
	}
	return skills, nil
}

// ListLearnSkills returns the learning interests owned by a student.
func (r *SkillRepository) ListLearnSkills(ctx context.Context, studentID string) ([]models.LearnSkill, error) {
	const query = `SELECT id, student_id, skill_name, created_at FROM learn_skills WHERE student_id = $1 ORDER BY created_at DESC`
	var skills []models.LearnSkill
	if err := r.db.SelectContext(ctx, &skills, query, studentID); err != nil {
		return nil, fmt.Errorf("list learn skills: %w", err)
	}
	return skills, nil
}

// FindTeachSkill returns a single teaching offer by id.
func (r *SkillRepository) FindTeachSkill(ctx context.Context, id string) (*models.TeachSkill, error) {
	const query = `SELECT id, student_id, skill_name, experience_level, created_at FROM teach_skills WHERE id = $1 LIMIT 1`
	var skill models.TeachSkill
	if err := r.db.GetContext(ctx, &skill, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teach skill: %w", err)
	}
	return &skill, nil
}

// FindLearnSkill returns a single learning interest by id.
func (r *SkillRepository) FindLearnSkill(ctx context.Context, id string) (*models.LearnSkill, error) {
	const query = `SELECT id, student_id, skill_name, created_at FROM learn_skills WHERE id = $1 LIMIT 1`
	var skill models.LearnSkill
	if err := r.db.GetContext(ctx, &skill, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find learn skill: %w", err)
	}
	return &skill, nil
}

// DeleteTeachSkill removes a teaching offer.
func (r *SkillRepository) DeleteTeachSkill(ctx context.Context, id string) error {
	const query = `DELETE FROM teach_skills WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete teach skill: %w", err)
	}
	return nil
}

// DeleteLearnSkill removes a learning interest.
func (r *SkillRepository) DeleteLearnSkill(ctx context.Context, id string) error {
	const query = `DELETE FROM learn_skills WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete learn skill: %w", err)
	}
	return nil
}

// FindTeachersBySkill returns every teaching offer whose skill name
// matches case-insensitively (exact match, not substring), joined with
// the owning student's profile. Ordered by offer id so the enumeration
// is deterministic for downstream tie-breaking.
func (r *SkillRepository) FindTeachersBySkill(ctx context.Context, skillName string) ([]models.TeachSkillCandidate, error) {
	const query = `SELECT ts.id, ts.student_id, ts.skill_name, ts.experience_level, ts.created_at,
        s.id AS "teacher.id", s.email AS "teacher.email", s.name AS "teacher.name", s.bio AS "teacher.bio",
        s.preferred_mode AS "teacher.preferred_mode", s.available_time AS "teacher.available_time"
        FROM teach_skills ts JOIN students s ON s.id = ts.student_id
        WHERE LOWER(ts.skill_name) = LOWER($1) AND s.active = TRUE
        ORDER BY ts.id ASC`
	var candidates []models.TeachSkillCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, skillName); err != nil {
		return nil, fmt.Errorf("find teachers by skill: %w", err)
	}
	return candidates, nil
}
