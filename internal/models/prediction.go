package models

// RiskLevel is the assessed risk of a predicted issue.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// Prediction is a forecast infrastructure issue produced by the AI model.
// The model typically returns 5 to 7 of these; the count is not fixed.
type Prediction struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"` // e.g. "Pothole/Crack Formation", "Localized Flooding", "Structural Stress"
	Location   Geolocation `json:"location"`
	RiskLevel  RiskLevel   `json:"riskLevel"`
	Timeframe  string      `json:"timeframe"` // e.g. "Next 2-4 weeks"
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence"` // 0 to 1
}
