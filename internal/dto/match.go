package dto

// MatchQuery describes what the learner wants to be taught and how.
// Negative Page and non-positive Size fall back to defaults; SortBy is
// accepted but the engine currently always ranks by relevance.
type MatchQuery struct {
	SkillName     string `json:"skill_name" validate:"required"`
	PreferredMode string `json:"preferred_mode"`
	AvailableTime string `json:"available_time"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	SortBy        string `json:"sort_by"`
}

// StudentMatch is one ranked teaching candidate.
type StudentMatch struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Bio              string  `json:"bio"`
	PreferredMode    string  `json:"preferred_mode"`
	AvailableTime    string  `json:"available_time"`
	SkillName        string  `json:"skill_name"`
	ExperienceLevel  string  `json:"experience_level"`
	MatchScore       float64 `json:"match_score"`
	AlreadyConnected bool    `json:"already_connected"`
}

// MatchPage is a scored, paginated result set.
type MatchPage struct {
	Matches       []StudentMatch `json:"matches"`
	TotalPages    int            `json:"total_pages"`
	TotalElements int            `json:"total_elements"`
	CurrentPage   int            `json:"current_page"`
}
