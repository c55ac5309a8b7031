package models

import "time"

// Student represents a member of the skill-exchange platform.
type Student struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Name          string    `db:"name" json:"name"`
	Bio           string    `db:"bio" json:"bio"`
	PreferredMode string    `db:"preferred_mode" json:"preferred_mode"`
	AvailableTime string    `db:"available_time" json:"available_time"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentRef is the read-only projection of a student consumed by the
// matching and connection flows. It never carries credentials.
type StudentRef struct {
	ID            string `db:"id" json:"id"`
	Email         string `db:"email" json:"email"`
	Name          string `db:"name" json:"name"`
	Bio           string `db:"bio" json:"bio"`
	PreferredMode string `db:"preferred_mode" json:"preferred_mode"`
	AvailableTime string `db:"available_time" json:"available_time"`
}

// Ref projects the full record down to its public reference.
func (s *Student) Ref() StudentRef {
	return StudentRef{
		ID:            s.ID,
		Email:         s.Email,
		Name:          s.Name,
		Bio:           s.Bio,
		PreferredMode: s.PreferredMode,
		AvailableTime: s.AvailableTime,
	}
}

// ProfileUpdate carries partial profile edits. Nil fields are left untouched.
type ProfileUpdate struct {
	Name          *string `json:"name"`
	Bio           *string `json:"bio"`
	PreferredMode *string `json:"preferred_mode"`
	AvailableTime *string `json:"available_time"`
}

// Pagination describes page metadata returned alongside list payloads.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
