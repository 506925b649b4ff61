// Package store holds the in-memory state of the service: reports, the
// user credit ledger, and earned badges. State is transient; nothing is
// persisted across restarts.
package store

import (
	"sync"
	"time"

	"civicpulse/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportStore owns the report collection and its lifecycle transitions.
// All mutators are no-ops on unknown ids and enforce the state-machine
// guards, so callers never observe a failure. Methods hand out clones;
// the triage goroutine writes concurrently with HTTP reads.
type ReportStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.Report
	order  []string // newest first
	logger *zap.Logger
}

// NewReportStore creates an empty report store.
func NewReportStore(logger *zap.Logger) *ReportStore {
	return &ReportStore{
		byID:   make(map[string]*models.Report),
		logger: logger,
	}
}

// Create allocates a fresh report in the triaging state and inserts it at
// the front of the collection (newest-first default ordering).
func (s *ReportStore) Create(userID, description string, photo models.Photo, location *models.Geolocation, deepAnalysis bool) *models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &models.Report{
		ID:               uuid.New().String(),
		UserID:           userID,
		Description:      description,
		Photo:            photo,
		Location:         location,
		Timestamp:        time.Now(),
		Status:           models.StatusTriaging,
		KanbanStatus:     models.KanbanPending,
		AcceptanceStatus: models.AcceptancePending,
		DeepAnalysis:     deepAnalysis,
	}

	s.byID[r.ID] = r
	s.order = append([]string{r.ID}, s.order...)

	s.logger.Info("Report created",
		zap.String("report_id", r.ID),
		zap.String("user_id", userID),
		zap.Bool("deep_analysis", deepAnalysis))

	return r.Clone()
}

// Get returns a copy of the report, if present.
func (s *ReportStore) Get(id string) (*models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// List returns all reports, newest first.
func (s *ReportStore) List() []*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// ListByUser returns the given user's reports, newest first.
func (s *ReportStore) ListByUser(userID string) []*models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Report
	for _, id := range s.order {
		if r := s.byID[id]; r.UserID == userID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// CompleteTriage applies the successful triage outcome. Exactly one
// terminal outcome lands per report: the call is a no-op unless the report
// is still triaging.
func (s *ReportStore) CompleteTriage(id string, result models.TriageResult, grounding []models.GroundingSource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusTriaging {
		return false
	}
	r.Status = models.StatusComplete
	r.TriageResult = &result
	r.Grounding = grounding
	return true
}

// FailTriage records a triage failure. Same terminal-once guard as
// CompleteTriage.
func (s *ReportStore) FailTriage(id string, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusTriaging {
		return false
	}
	r.Status = models.StatusError
	r.ErrorMessage = message
	return true
}

// Accept marks the report accepted. Repeated calls, and accept after
// reject, are idempotent overwrites; the last admin decision wins.
func (s *ReportStore) Accept(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false
	}
	r.AcceptanceStatus = models.AcceptanceAccepted
	return true
}

// Reject marks the report rejected with an optional free-text reason and
// forces its board column to done.
func (s *ReportStore) Reject(id, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false
	}
	r.AcceptanceStatus = models.AcceptanceRejected
	r.RejectionReason = reason
	r.KanbanStatus = models.KanbanDone
	return true
}

// SetKanbanStatus moves the report between board columns.
func (s *ReportStore) SetKanbanStatus(id string, status models.KanbanStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false
	}
	r.KanbanStatus = status
	return true
}

// SetResolved marks a triaged report resolved and its board column done.
// Resolution is independent of validation, but a report still in flight
// (or one whose triage failed) has nothing to resolve.
func (s *ReportStore) SetResolved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false
	}
	if r.Status != models.StatusComplete && r.Status != models.StatusResolved {
		return false
	}
	r.Status = models.StatusResolved
	r.KanbanStatus = models.KanbanDone
	return true
}

// SetFeedback attaches citizen feedback to a resolved report, at most once.
func (s *ReportStore) SetFeedback(id string, fb models.Feedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusResolved || r.Feedback != nil {
		return false
	}
	r.Feedback = &fb
	return true
}

// Validate stamps validatedAt and forces the report into its final
// validated shape (accepted, resolved, done). validatedAt is write-once:
// a second call changes nothing and reports changed=false.
func (s *ReportStore) Validate(id string, at time.Time) (*models.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	if r.ValidatedAt != nil {
		return r.Clone(), false
	}
	r.ValidatedAt = &at
	r.AcceptanceStatus = models.AcceptanceAccepted
	r.Status = models.StatusResolved
	r.KanbanStatus = models.KanbanDone
	return r.Clone(), true
}

// CountValidatedBy counts the user's validated reports.
func (s *ReportStore) CountValidatedBy(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.byID {
		if r.UserID == userID && r.ValidatedAt != nil {
			n++
		}
	}
	return n
}
