package store

import (
	"sync"
	"time"

	"civicpulse/internal/models"
)

// UserBadgeStore holds the badges users have earned. Awards are
// append-only and unique per (user, badge) pair.
type UserBadgeStore struct {
	mu     sync.RWMutex
	earned []models.UserBadge
	byPair map[string]map[string]bool // userID -> badgeID -> earned
}

// NewUserBadgeStore creates an empty award record.
func NewUserBadgeStore() *UserBadgeStore {
	return &UserBadgeStore{
		byPair: make(map[string]map[string]bool),
	}
}

// Award records the badge for the user. Returns false without writing when
// the user already holds it; badges are never re-awarded.
func (s *UserBadgeStore) Award(userID, badgeID string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byPair[userID][badgeID] {
		return false
	}
	if s.byPair[userID] == nil {
		s.byPair[userID] = make(map[string]bool)
	}
	s.byPair[userID][badgeID] = true
	s.earned = append(s.earned, models.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: at,
	})
	return true
}

// ListByUser returns the user's earned badges in award order.
func (s *UserBadgeStore) ListByUser(userID string) []models.UserBadge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.UserBadge
	for _, ub := range s.earned {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out
}

// OwnedSet returns the ids of badges the user holds, for the evaluator.
func (s *UserBadgeStore) OwnedSet(userID string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make(map[string]bool, len(s.byPair[userID]))
	for id := range s.byPair[userID] {
		owned[id] = true
	}
	return owned
}
