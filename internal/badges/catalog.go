// Package badges holds the static badge catalog and the award evaluator.
package badges

import "civicpulse/internal/models"

// Catalog returns the badge definitions. The list is static; award state
// lives in the user-badge store.
func Catalog() []models.Badge {
	return []models.Badge{
		{
			ID:          "badge-1",
			Title:       "First Report",
			Description: "Submit your first validated report.",
			Icon:        "TrophyIcon",
			Criteria:    models.BadgeCriteria{Type: models.CriteriaValidatedCount, Threshold: 1},
		},
		{
			ID:          "badge-2",
			Title:       "Community Helper",
			Description: "Get 5 reports validated.",
			Icon:        "HeartIcon",
			Criteria:    models.BadgeCriteria{Type: models.CriteriaValidatedCount, Threshold: 5},
		},
		{
			ID:          "badge-3",
			Title:       "Civic Champion",
			Description: "Get 10 reports validated.",
			Icon:        "SparklesIcon",
			Criteria:    models.BadgeCriteria{Type: models.CriteriaValidatedCount, Threshold: 10},
		},
		{
			ID:          "badge-4",
			Title:       "Hot Streak",
			Description: "Maintain a 3-day validation streak.",
			Icon:        "RocketLaunchIcon",
			Criteria:    models.BadgeCriteria{Type: models.CriteriaStreakLength, Threshold: 3},
		},
	}
}
