package badges

import (
	"testing"

	"civicpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 4)

	seen := map[string]bool{}
	for _, b := range catalog {
		assert.False(t, seen[b.ID], "duplicate badge id %s", b.ID)
		seen[b.ID] = true
		assert.NotEmpty(t, b.Title)
		assert.Greater(t, b.Criteria.Threshold, 0)
	}
}

func TestEvaluatorEligible(t *testing.T) {
	ev := NewEvaluator(Catalog())

	t.Run("first validation earns the first-report badge", func(t *testing.T) {
		user := &models.User{ID: "u1", Streak: 1}
		got := ev.Eligible(user, 1, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "badge-1", got[0].ID)
	})

	t.Run("owned badges are skipped", func(t *testing.T) {
		user := &models.User{ID: "u1", Streak: 1}
		got := ev.Eligible(user, 1, map[string]bool{"badge-1": true})
		assert.Empty(t, got)
	})

	t.Run("count and streak thresholds can qualify together", func(t *testing.T) {
		user := &models.User{ID: "u1", Streak: 3}
		got := ev.Eligible(user, 5, map[string]bool{"badge-1": true})
		require.Len(t, got, 2)
		assert.Equal(t, "badge-2", got[0].ID) // 5 validated reports
		assert.Equal(t, "badge-4", got[1].ID) // 3-day streak
	})

	t.Run("below every threshold nothing qualifies", func(t *testing.T) {
		user := &models.User{ID: "u1", Streak: 0}
		assert.Empty(t, ev.Eligible(user, 0, nil))
	})
}
