package models

import "time"

// User is a participant in the reporting program.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url"`
	Credits         int    `json:"credits"`
	IsPhoneVerified bool   `json:"is_phone_verified"`
	// LastValidationDate is a calendar-day key (YYYY-MM-DD), empty when the
	// user has never had a report validated.
	LastValidationDate string `json:"last_validation_date,omitempty"`
	Streak             int    `json:"streak"`
	Neighborhood       string `json:"neighborhood"`
}

// BadgeCriteriaType selects which user stat a badge threshold applies to.
type BadgeCriteriaType string

const (
	CriteriaValidatedCount BadgeCriteriaType = "validated_count"
	CriteriaStreakLength   BadgeCriteriaType = "streak_length"
)

// BadgeCriteria is the award rule of a badge.
type BadgeCriteria struct {
	Type      BadgeCriteriaType `json:"type"`
	Threshold int               `json:"threshold"`
}

// Badge is a static award definition.
type Badge struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Criteria    BadgeCriteria `json:"criteria"`
}

// UserBadge records a badge earned by a user. At most one exists per
// (user, badge) pair.
type UserBadge struct {
	UserID    string    `json:"user_id"`
	BadgeID   string    `json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`
}

// ValidationOutcome is the domain event produced by validating a report.
// The handler surfaces it to the client instead of a UI side-channel.
type ValidationOutcome struct {
	Applied        bool    `json:"applied"` // false when the report was already validated
	Report         *Report `json:"report"`
	User           *User   `json:"user,omitempty"`
	CreditsAwarded int     `json:"credits_awarded"`
	AwardedBadges  []Badge `json:"awarded_badges,omitempty"`
}
