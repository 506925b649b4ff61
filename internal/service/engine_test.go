package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/internal/badges"
	"civicpulse/internal/clock"
	"civicpulse/internal/models"
	"civicpulse/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAI is a canned AIClient for tests.
type fakeAI struct {
	result      *models.TriageResult
	grounding   []models.GroundingSource
	err         error
	predictions []models.Prediction
	predictErr  error
	triageCalls int
}

func (f *fakeAI) Triage(_ context.Context, _ string, _ models.Photo, _ *models.Geolocation, _ bool) (*models.TriageResult, []models.GroundingSource, error) {
	f.triageCalls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.result, f.grounding, nil
}

func (f *fakeAI) Predict(_ context.Context, _ *models.Geolocation) ([]models.Prediction, error) {
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return f.predictions, nil
}

func (f *fakeAI) Close() error { return nil }

type engineFixture struct {
	engine  *Engine
	ai      *fakeAI
	reports *store.ReportStore
	users   *store.UserStore
	now     time.Time
}

func newFixture(t *testing.T, users ...models.User) *engineFixture {
	t.Helper()
	logger := zap.NewNop()
	now := time.Date(2025, time.July, 20, 10, 0, 0, 0, time.Local)

	ai := &fakeAI{
		result: &models.TriageResult{
			Category: "Pothole", Severity: 4, PriorityScore: 80,
			Summary: "deep pothole", SuggestedAction: "dispatch road crew",
			ProbableCause: "heavy traffic", Confidence: 0.92,
		},
	}
	reports := store.NewReportStore(logger)
	userStore := store.NewUserStore(users, logger)

	return &engineFixture{
		engine: NewEngine(
			ai, reports, userStore,
			store.NewUserBadgeStore(),
			badges.NewEvaluator(badges.Catalog()),
			clock.Fixed{T: now},
			logger,
		),
		ai:      ai,
		reports: reports,
		users:   userStore,
		now:     now,
	}
}

func submit(fx *engineFixture, userID string) *models.Report {
	return fx.engine.SubmitReport(models.SubmitReportRequest{
		UserID:      userID,
		Description: "pothole on main street",
		Photo:       models.Photo{Data: []byte{0x1}, MimeType: "image/jpeg"},
	})
}

func TestRunTriageSuccess(t *testing.T) {
	fx := newFixture(t)
	r := submit(fx, "user-5")

	fx.engine.RunTriage(context.Background(), r.ID)

	got, _ := fx.engine.Report(r.ID)
	assert.Equal(t, models.StatusComplete, got.Status)
	require.NotNil(t, got.TriageResult)
	assert.Equal(t, "Pothole", got.TriageResult.Category)
	assert.Empty(t, got.ErrorMessage)
}

func TestRunTriageFailure(t *testing.T) {
	fx := newFixture(t)
	fx.ai.err = errors.New("ai service unavailable: missing credential")
	r := submit(fx, "user-5")

	fx.engine.RunTriage(context.Background(), r.ID)

	got, _ := fx.engine.Report(r.ID)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Contains(t, got.ErrorMessage, "unavailable")
	assert.Nil(t, got.TriageResult)
}

func TestRunTriageOnlyOnce(t *testing.T) {
	fx := newFixture(t)
	r := submit(fx, "user-5")

	fx.engine.RunTriage(context.Background(), r.ID)
	fx.engine.RunTriage(context.Background(), r.ID) // already terminal, skips the AI call

	assert.Equal(t, 1, fx.ai.triageCalls)
}

func TestValidateFirstReportScenario(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5", Name: "John Smith"})
	r := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), r.ID)

	outcome, ok := fx.engine.ValidateReport(r.ID)
	require.True(t, ok)
	require.True(t, outcome.Applied)

	assert.Equal(t, 10, outcome.CreditsAwarded)
	require.NotNil(t, outcome.User)
	assert.Equal(t, 10, outcome.User.Credits)
	assert.Equal(t, 1, outcome.User.Streak)

	require.NotNil(t, outcome.Report.ValidatedAt)
	assert.Equal(t, models.StatusResolved, outcome.Report.Status)
	assert.Equal(t, models.AcceptanceAccepted, outcome.Report.AcceptanceStatus)
	assert.Equal(t, models.KanbanDone, outcome.Report.KanbanStatus)

	// threshold-1 validated-count badge lands exactly once
	require.Len(t, outcome.AwardedBadges, 1)
	assert.Equal(t, "badge-1", outcome.AwardedBadges[0].ID)
	assert.Len(t, fx.engine.UserBadges("user-5"), 1)
}

func TestValidateIsIdempotent(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})
	r := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), r.ID)

	first, _ := fx.engine.ValidateReport(r.ID)
	second, ok := fx.engine.ValidateReport(r.ID)
	require.True(t, ok)

	assert.True(t, first.Applied)
	assert.False(t, second.Applied)
	assert.Empty(t, second.AwardedBadges)

	// Credits increased by exactly 10 total, not 20
	u, _ := fx.engine.User("user-5")
	assert.Equal(t, 10, u.Credits)
	assert.Equal(t, 1, u.Streak)
	assert.Len(t, fx.engine.UserBadges("user-5"), 1)
}

func TestValidateUnknownReport(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})
	outcome, ok := fx.engine.ValidateReport("missing")
	assert.False(t, ok)
	assert.Nil(t, outcome)
}

func TestValidateContinuesStreakAndAwardsStreakBadge(t *testing.T) {
	fx := newFixture(t, models.User{
		ID:                 "user-3",
		Streak:             2,
		LastValidationDate: clock.Yesterday(time.Date(2025, time.July, 20, 10, 0, 0, 0, time.Local)),
	})
	r := submit(fx, "user-3")
	fx.engine.RunTriage(context.Background(), r.ID)

	outcome, _ := fx.engine.ValidateReport(r.ID)
	require.True(t, outcome.Applied)
	assert.Equal(t, 3, outcome.User.Streak)

	// One validation can award several badges; all are surfaced
	ids := make([]string, 0, len(outcome.AwardedBadges))
	for _, b := range outcome.AwardedBadges {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{"badge-1", "badge-4"}, ids)
}

func TestBadgeMonotonicity(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})

	for i := 0; i < 3; i++ {
		r := submit(fx, "user-5")
		fx.engine.RunTriage(context.Background(), r.ID)
		outcome, _ := fx.engine.ValidateReport(r.ID)
		require.True(t, outcome.Applied)
	}

	// badge-1 (threshold 1) was satisfied on every validation but exists once
	earned := fx.engine.UserBadges("user-5")
	count := 0
	for _, ub := range earned {
		if ub.BadgeID == "badge-1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidateUnknownOwner(t *testing.T) {
	fx := newFixture(t) // empty ledger
	r := submit(fx, "ghost")
	fx.engine.RunTriage(context.Background(), r.ID)

	outcome, ok := fx.engine.ValidateReport(r.ID)
	require.True(t, ok)
	assert.True(t, outcome.Applied)
	assert.Nil(t, outcome.User)
	assert.Zero(t, outcome.CreditsAwarded)
	assert.NotNil(t, outcome.Report.ValidatedAt)
}

func TestBoardProjection(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})

	scores := []int{10, 90, 50}
	ids := make([]string, len(scores))
	for i, score := range scores {
		fx.ai.result = &models.TriageResult{
			Category: "Pothole", Severity: 3, PriorityScore: score, Confidence: 0.8,
		}
		r := submit(fx, "user-5")
		fx.engine.RunTriage(context.Background(), r.ID)
		fx.engine.AcceptReport(r.ID)
		ids[i] = r.ID
	}

	board := fx.engine.Board()
	require.Len(t, board.Pending, 3)
	assert.Equal(t, 90, board.Pending[0].Priority())
	assert.Equal(t, 50, board.Pending[1].Priority())
	assert.Equal(t, 10, board.Pending[2].Priority())
	assert.Empty(t, board.InProgress)
	assert.Empty(t, board.Done)
}

func TestBoardExcludesUnacceptedAndPartitionsColumns(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})

	pending := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), pending.ID)
	fx.engine.AcceptReport(pending.ID)

	inProgress := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), inProgress.ID)
	fx.engine.AcceptReport(inProgress.ID)
	fx.engine.SetKanbanStatus(inProgress.ID, models.KanbanInProgress)

	rejected := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), rejected.ID)
	fx.engine.RejectReport(rejected.ID, "duplicate")

	notReviewed := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), notReviewed.ID)

	board := fx.engine.Board()
	require.Len(t, board.Pending, 1)
	assert.Equal(t, pending.ID, board.Pending[0].ID)
	require.Len(t, board.InProgress, 1)
	assert.Equal(t, inProgress.ID, board.InProgress[0].ID)
	assert.Empty(t, board.Done, "rejected and unreviewed reports stay off the board")
}

func TestBoardUntriagedSortsLast(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})

	untriaged := submit(fx, "user-5")
	fx.engine.AcceptReport(untriaged.ID)

	triaged := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), triaged.ID)
	fx.engine.AcceptReport(triaged.ID)

	board := fx.engine.Board()
	require.Len(t, board.Pending, 2)
	assert.Equal(t, triaged.ID, board.Pending[0].ID)
	assert.Equal(t, untriaged.ID, board.Pending[1].ID)
}

func TestMarkResolvedIndependentOfValidation(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})
	r := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), r.ID)

	require.True(t, fx.engine.MarkResolved(r.ID))

	got, _ := fx.engine.Report(r.ID)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Equal(t, models.KanbanDone, got.KanbanStatus)
	assert.Nil(t, got.ValidatedAt, "resolution does not validate")

	u, _ := fx.engine.User("user-5")
	assert.Zero(t, u.Credits, "resolution pays nothing")
}

func TestFeedbackAfterResolution(t *testing.T) {
	fx := newFixture(t, models.User{ID: "user-5"})
	r := submit(fx, "user-5")
	fx.engine.RunTriage(context.Background(), r.ID)

	assert.False(t, fx.engine.SubmitFeedback(r.ID, models.Feedback{Rating: 4}))

	fx.engine.MarkResolved(r.ID)
	assert.True(t, fx.engine.SubmitFeedback(r.ID, models.Feedback{Rating: 4, Comment: "thanks"}))
	assert.False(t, fx.engine.SubmitFeedback(r.ID, models.Feedback{Rating: 1}))
}

func TestPredictions(t *testing.T) {
	fx := newFixture(t)
	fx.ai.predictions = []models.Prediction{
		{ID: "p1", Type: "Localized Flooding", RiskLevel: models.RiskHigh, Confidence: 0.7},
		{ID: "p2", Type: "Pothole/Crack Formation", RiskLevel: models.RiskMedium, Confidence: 0.6},
	}

	got, err := fx.engine.Predictions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	fx.ai.predictErr = errors.New("quota exceeded")
	_, err = fx.engine.Predictions(context.Background(), nil)
	assert.Error(t, err)
}
