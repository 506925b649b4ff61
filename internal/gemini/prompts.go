package gemini

import (
	"fmt"

	"civicpulse/internal/models"
)

// triageSystemInstruction steers the model toward the structured triage
// JSON the service expects: category, severity 1-5, priority_score 1-100,
// summary, suggested_action, probable_cause, confidence_level 0-1.
const triageSystemInstruction = `You are a Civic Triage AI expert. Your task is to analyze municipal issue reports submitted by citizens.
Evaluate the provided text description, image, and location data to accurately classify the issue, determine its severity and priority, suggest a course of action, and infer a probable cause.
Respond with a single valid JSON object with exactly these fields:
- "category": the category of the issue (e.g., Pothole, Graffiti, Water Leak, Streetlight Out, Trash Overflow, Road Hazard)
- "severity": an integer from 1 (low) to 5 (critical)
- "priority_score": an integer from 1 to 100 for prioritization, considering urgency, location, and severity
- "summary": a concise, one-sentence summary of the issue
- "suggested_action": the recommended immediate action for the municipal team (e.g., "Dispatch road crew within 24 hours")
- "probable_cause": a brief, likely cause of the issue (e.g., "Heavy vehicle traffic", "Water damage", "Vandalism")
- "confidence_level": a number between 0 and 1 indicating the confidence of the analysis`

// predictSystemInstruction asks for a {"predictions": [...]} object with
// 5 to 7 forecast items.
const predictSystemInstruction = `You are a predictive urban planning AI. Your task is to forecast potential municipal infrastructure issues for a city.
Synthesize hypothetical data from various sources (weather forecasts, traffic patterns, geological surveys, and historical maintenance records) to make informed predictions.
For example, correlate upcoming heavy rainfall with areas known for poor drainage to predict flooding. Or, link increased heavy vehicle traffic on aging roads to predict pothole formation.
Generate a diverse list of 5 to 7 plausible predictions within the simulated city environment.
Respond with a single valid JSON object of the form {"predictions": [...]} where every prediction has:
- "id": a unique identifier
- "type": the type of issue predicted ("Pothole/Crack Formation", "Localized Flooding", or "Structural Stress")
- "location": an object with "latitude" and "longitude"
- "riskLevel": "High", "Medium", or "Low"
- "timeframe": the estimated timeframe (e.g., "Next 2-4 weeks")
- "reasoning": a detailed explanation citing the synthesized data sources
- "confidence": a confidence score from 0 to 1`

func predictPrompt(location *models.Geolocation) string {
	base := "Generate a predictive report for potential infrastructure issues."
	if location == nil {
		return base + " Center the analysis on a major metropolitan area (e.g., lat 40.7128, lon -74.0060)."
	}
	return fmt.Sprintf("%s Center the analysis on latitude %f, longitude %f.",
		base, location.Latitude, location.Longitude)
}
