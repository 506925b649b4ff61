// Package service wires the report lifecycle to the AI port and the
// gamification ledger.
package service

import (
	"context"
	"sort"

	"civicpulse/internal/badges"
	"civicpulse/internal/clock"
	"civicpulse/internal/models"
	"civicpulse/internal/store"

	"go.uber.org/zap"
)

// AIClient is the external AI capability: triage of a single report and
// area-level predictions. Both calls are opaque request/response; the
// implementation decides models, retries, and credentials.
type AIClient interface {
	Triage(ctx context.Context, description string, photo models.Photo, location *models.Geolocation, deepAnalysis bool) (*models.TriageResult, []models.GroundingSource, error)
	Predict(ctx context.Context, location *models.Geolocation) ([]models.Prediction, error)
	Close() error
}

// Engine owns the report lifecycle, the validation/credit/badge rules, and
// the board projection. All state lives in the injected stores; the engine
// itself is stateless.
type Engine struct {
	ai         AIClient
	reports    *store.ReportStore
	users      *store.UserStore
	userBadges *store.UserBadgeStore
	evaluator  *badges.Evaluator
	clk        clock.Clock
	logger     *zap.Logger
}

// NewEngine creates the engine.
func NewEngine(
	ai AIClient,
	reports *store.ReportStore,
	users *store.UserStore,
	userBadges *store.UserBadgeStore,
	evaluator *badges.Evaluator,
	clk clock.Clock,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		ai:         ai,
		reports:    reports,
		users:      users,
		userBadges: userBadges,
		evaluator:  evaluator,
		clk:        clk,
		logger:     logger,
	}
}

// SubmitReport records a new report in the triaging state and returns it.
// The triage phase is separate: the caller decides when and on which
// goroutine to run it (two-phase submit/resolve protocol).
func (e *Engine) SubmitReport(req models.SubmitReportRequest) *models.Report {
	return e.reports.Create(req.UserID, req.Description, req.Photo, req.Location, req.DeepAnalysis)
}

// RunTriage invokes the AI triage for the report and applies exactly one
// terminal outcome: complete with the structured result, or error with a
// human-readable message. Safe to call from a detached goroutine; the
// store guard makes a duplicate call a no-op.
func (e *Engine) RunTriage(ctx context.Context, reportID string) {
	r, ok := e.reports.Get(reportID)
	if !ok || r.Status != models.StatusTriaging {
		return
	}

	result, grounding, err := e.ai.Triage(ctx, r.Description, r.Photo, r.Location, r.DeepAnalysis)
	if err != nil {
		e.logger.Error("Triage failed",
			zap.String("report_id", reportID),
			zap.Error(err))
		e.reports.FailTriage(reportID, err.Error())
		return
	}

	e.reports.CompleteTriage(reportID, *result, grounding)
	e.logger.Info("Report triaged",
		zap.String("report_id", reportID),
		zap.String("category", result.Category),
		zap.Int("priority_score", result.PriorityScore))
}

// ValidateReport applies the validation rule: stamp the report, pay the
// flat credit reward, update the streak pair, and award any newly earned
// badges. Returns ok=false only when the report id is unknown. An already
// validated report yields Applied=false and no ledger change.
func (e *Engine) ValidateReport(reportID string) (*models.ValidationOutcome, bool) {
	now := e.clk.Now()

	report, changed := e.reports.Validate(reportID, now)
	if report == nil {
		return nil, false
	}
	if !changed {
		return &models.ValidationOutcome{Applied: false, Report: report}, true
	}

	outcome := &models.ValidationOutcome{
		Applied:        true,
		Report:         report,
		CreditsAwarded: store.ValidationReward,
	}

	user, ok := e.users.ApplyValidationReward(report.UserID, now)
	if !ok {
		// Report owner not in the ledger; the report stays validated but
		// no reward can land anywhere.
		e.logger.Warn("Validated report has unknown owner",
			zap.String("report_id", reportID),
			zap.String("user_id", report.UserID))
		outcome.CreditsAwarded = 0
		return outcome, true
	}
	outcome.User = user

	validatedCount := e.reports.CountValidatedBy(report.UserID)
	owned := e.userBadges.OwnedSet(report.UserID)
	for _, b := range e.evaluator.Eligible(user, validatedCount, owned) {
		if e.userBadges.Award(user.ID, b.ID, now) {
			outcome.AwardedBadges = append(outcome.AwardedBadges, b)
			e.logger.Info("Badge awarded",
				zap.String("user_id", user.ID),
				zap.String("badge_id", b.ID),
				zap.String("title", b.Title))
		}
	}

	return outcome, true
}

// AcceptReport marks the report accepted. Last admin decision wins.
func (e *Engine) AcceptReport(reportID string) bool {
	return e.reports.Accept(reportID)
}

// RejectReport marks the report rejected with an optional reason.
func (e *Engine) RejectReport(reportID, reason string) bool {
	return e.reports.Reject(reportID, reason)
}

// MarkResolved resolves a triaged report, independent of validation.
func (e *Engine) MarkResolved(reportID string) bool {
	return e.reports.SetResolved(reportID)
}

// SetKanbanStatus moves a report between board columns.
func (e *Engine) SetKanbanStatus(reportID string, status models.KanbanStatus) bool {
	return e.reports.SetKanbanStatus(reportID, status)
}

// SubmitFeedback attaches citizen feedback to a resolved report.
func (e *Engine) SubmitFeedback(reportID string, fb models.Feedback) bool {
	return e.reports.SetFeedback(reportID, fb)
}

// Report returns a single report.
func (e *Engine) Report(reportID string) (*models.Report, bool) {
	return e.reports.Get(reportID)
}

// Reports lists reports newest first, optionally filtered by owner.
func (e *Engine) Reports(userID string) []*models.Report {
	if userID != "" {
		return e.reports.ListByUser(userID)
	}
	return e.reports.List()
}

// Board projects accepted reports into the three kanban columns. Pending
// and in-progress order by descending triage priority (untriaged reports
// score 0 and sort last); done orders by descending submission time.
func (e *Engine) Board() *models.Board {
	board := &models.Board{
		Pending:    []*models.Report{},
		InProgress: []*models.Report{},
		Done:       []*models.Report{},
	}

	for _, r := range e.reports.List() {
		if r.AcceptanceStatus != models.AcceptanceAccepted {
			continue
		}
		switch r.KanbanStatus {
		case models.KanbanPending:
			board.Pending = append(board.Pending, r)
		case models.KanbanInProgress:
			board.InProgress = append(board.InProgress, r)
		case models.KanbanDone:
			board.Done = append(board.Done, r)
		}
	}

	byPriority := func(rs []*models.Report) {
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].Priority() > rs[j].Priority()
		})
	}
	byPriority(board.Pending)
	byPriority(board.InProgress)
	sort.SliceStable(board.Done, func(i, j int) bool {
		return board.Done[i].Timestamp.After(board.Done[j].Timestamp)
	})

	return board
}

// Leaderboard returns users by credits, highest first.
func (e *Engine) Leaderboard() []*models.User {
	return e.users.Leaderboard()
}

// User returns a single user.
func (e *Engine) User(userID string) (*models.User, bool) {
	return e.users.Get(userID)
}

// BadgeCatalog returns the static badge definitions.
func (e *Engine) BadgeCatalog() []models.Badge {
	return badges.Catalog()
}

// UserBadges returns the badges the user has earned.
func (e *Engine) UserBadges(userID string) []models.UserBadge {
	return e.userBadges.ListByUser(userID)
}

// Predictions asks the AI port for forecast issues around the location.
func (e *Engine) Predictions(ctx context.Context, location *models.Geolocation) ([]models.Prediction, error) {
	return e.ai.Predict(ctx, location)
}
