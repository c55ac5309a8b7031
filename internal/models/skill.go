package models

import "time"

// ExperienceLevel grades how experienced a teacher is in a skill.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "BEGINNER"
	ExperienceIntermediate ExperienceLevel = "INTERMEDIATE"
	ExperienceAdvanced     ExperienceLevel = "ADVANCED"
)

// Valid reports whether the level is one of the known grades.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// TeachSkill is a teaching offer advertised by a student.
type TeachSkill struct {
	ID              string          `db:"id" json:"id"`
	StudentID       string          `db:"student_id" json:"student_id"`
	SkillName       string          `db:"skill_name" json:"skill_name"`
	ExperienceLevel ExperienceLevel `db:"experience_level" json:"experience_level"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// LearnSkill is a learning interest registered by a student. The match
// engine takes ad-hoc query criteria instead of stored learn rows; these
// exist so members can keep a wishlist on their profile.
type LearnSkill struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SkillName string    `db:"skill_name" json:"skill_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeachSkillCandidate joins a teaching offer with its owner's profile,
// as enumerated by the match engine.
type TeachSkillCandidate struct {
	TeachSkill
	Teacher StudentRef `json:"teacher"`
}
