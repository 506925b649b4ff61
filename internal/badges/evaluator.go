package badges

import "civicpulse/internal/models"

// Evaluator decides which badges a user has newly qualified for.
type Evaluator struct {
	catalog []models.Badge
}

// NewEvaluator creates an evaluator over the given catalog.
func NewEvaluator(catalog []models.Badge) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Eligible returns every catalog badge the user now qualifies for and does
// not already own. validatedCount is the user's total of validated reports
// after the triggering validation; owned is keyed by badge id.
func (e *Evaluator) Eligible(user *models.User, validatedCount int, owned map[string]bool) []models.Badge {
	var out []models.Badge
	for _, b := range e.catalog {
		if owned[b.ID] {
			continue
		}
		if e.met(b.Criteria, user, validatedCount) {
			out = append(out, b)
		}
	}
	return out
}

func (e *Evaluator) met(c models.BadgeCriteria, user *models.User, validatedCount int) bool {
	switch c.Type {
	case models.CriteriaValidatedCount:
		return validatedCount >= c.Threshold
	case models.CriteriaStreakLength:
		return user.Streak >= c.Threshold
	}
	return false
}
