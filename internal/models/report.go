package models

import "time"

// ReportStatus tracks the triage lifecycle of a report.
type ReportStatus string

const (
	StatusTriaging ReportStatus = "triaging" // AI triage in flight
	StatusComplete ReportStatus = "complete" // triage succeeded
	StatusError    ReportStatus = "error"    // triage failed
	StatusResolved ReportStatus = "resolved" // issue fixed by the municipal team
)

// KanbanStatus is the work-board column of an accepted report.
type KanbanStatus string

const (
	KanbanPending    KanbanStatus = "pending"
	KanbanInProgress KanbanStatus = "in-progress"
	KanbanDone       KanbanStatus = "done"
)

// AcceptanceStatus is the admin's accept/reject decision.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "pending"
	AcceptanceAccepted AcceptanceStatus = "accepted"
	AcceptanceRejected AcceptanceStatus = "rejected"
)

// Geolocation is a WGS84 point.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo holds the submitted image. Data is base64 over the wire.
type Photo struct {
	Data     []byte `json:"base64" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	URL      string `json:"url,omitempty"`
}

// TriageResult is the structured output of the AI triage call.
type TriageResult struct {
	Category        string  `json:"category"`
	Severity        int     `json:"severity"`       // 1 (low) to 5 (critical)
	PriorityScore   int     `json:"priority_score"` // 1 to 100
	Summary         string  `json:"summary"`
	SuggestedAction string  `json:"suggested_action"`
	ProbableCause   string  `json:"probable_cause"`
	Confidence      float64 `json:"confidence_level"` // 0 to 1
}

// GroundingSource is a citation attached to a triage result.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Feedback is the citizen's rating of a resolved report.
type Feedback struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Report is a citizen-submitted civic issue.
type Report struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Description      string            `json:"description"`
	Photo            Photo             `json:"photo"`
	Location         *Geolocation      `json:"location,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	TriageResult     *TriageResult     `json:"triage_result,omitempty"`
	Grounding        []GroundingSource `json:"grounding,omitempty"`
	Status           ReportStatus      `json:"status"`
	KanbanStatus     KanbanStatus      `json:"kanban_status"`
	AcceptanceStatus AcceptanceStatus  `json:"acceptance_status"`
	RejectionReason  string            `json:"rejection_reason,omitempty"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	DeepAnalysis     bool              `json:"deep_analysis"`
	Feedback         *Feedback         `json:"feedback,omitempty"`
	ValidatedAt      *time.Time        `json:"validated_at,omitempty"`
}

// Priority returns the triage priority, or 0 when the report has no
// triage result yet. Untriaged reports sort last on the board.
func (r *Report) Priority() int {
	if r.TriageResult == nil {
		return 0
	}
	return r.TriageResult.PriorityScore
}

// Clone returns a deep copy safe to hand out across goroutines.
func (r *Report) Clone() *Report {
	c := *r
	if r.TriageResult != nil {
		tr := *r.TriageResult
		c.TriageResult = &tr
	}
	if r.Grounding != nil {
		c.Grounding = append([]GroundingSource(nil), r.Grounding...)
	}
	if r.Location != nil {
		loc := *r.Location
		c.Location = &loc
	}
	if r.Feedback != nil {
		fb := *r.Feedback
		c.Feedback = &fb
	}
	if r.ValidatedAt != nil {
		at := *r.ValidatedAt
		c.ValidatedAt = &at
	}
	if r.Photo.Data != nil {
		c.Photo.Data = append([]byte(nil), r.Photo.Data...)
	}
	return &c
}

// SubmitReportRequest is the body of POST /api/v1/reports.
type SubmitReportRequest struct {
	UserID       string       `json:"user_id" binding:"required"`
	Description  string       `json:"description" binding:"required"`
	Photo        Photo        `json:"photo" binding:"required"`
	Location     *Geolocation `json:"location,omitempty"`
	DeepAnalysis bool         `json:"deep_analysis"`
}

// RejectReportRequest carries the optional rejection reason.
type RejectReportRequest struct {
	Reason string `json:"reason"`
}

// KanbanUpdateRequest moves a report between board columns.
type KanbanUpdateRequest struct {
	Status KanbanStatus `json:"status" binding:"required"`
}

// Board is the kanban projection over accepted reports.
type Board struct {
	Pending    []*Report `json:"pending"`
	InProgress []*Report `json:"in_progress"`
	Done       []*Report `json:"done"`
}
