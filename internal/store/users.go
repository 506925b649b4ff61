package store

import (
	"sort"
	"sync"
	"time"

	"civicpulse/internal/clock"
	"civicpulse/internal/models"

	"go.uber.org/zap"
)

// ValidationReward is the fixed credit payout per validated report.
const ValidationReward = 10

// UserStore is the in-memory credit ledger. It owns per-user credits, the
// consecutive-day validation streak, and the last-validation date key.
type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	logger *zap.Logger
}

// NewUserStore creates a ledger preloaded with the given users.
func NewUserStore(seed []models.User, logger *zap.Logger) *UserStore {
	s := &UserStore{
		byID:   make(map[string]*models.User, len(seed)),
		logger: logger,
	}
	for i := range seed {
		u := seed[i]
		s.byID[u.ID] = &u
	}
	return s
}

// Get returns a copy of the user, if present.
func (s *UserStore) Get(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	c := *u
	return &c, true
}

// Leaderboard returns all users ordered by credits, highest first.
func (s *UserStore) Leaderboard() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Credits != out[j].Credits {
			return out[i].Credits > out[j].Credits
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ApplyValidationReward pays the flat credit reward and updates the streak
// pair for one validation event at the given instant.
//
// Streak rule, on calendar-day keys: a validation the day after the last
// one extends the streak; a validation on the same day leaves it alone
// (so repeated same-day validations never double-count); anything else
// starts a new streak of 1. Streak and last-validation date only ever
// change together.
func (s *UserStore) ApplyValidationReward(userID string, now time.Time) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, false
	}

	u.Credits += ValidationReward

	today := clock.DateKey(now)
	yesterday := clock.Yesterday(now)
	switch {
	case u.LastValidationDate == yesterday:
		u.Streak++
	case u.LastValidationDate != today:
		u.Streak = 1
	}
	u.LastValidationDate = today

	s.logger.Info("Validation reward applied",
		zap.String("user_id", userID),
		zap.Int("credits", u.Credits),
		zap.Int("streak", u.Streak))

	c := *u
	return &c, true
}
