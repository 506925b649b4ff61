// Package gemini implements the AI triage and prediction port on the
// Gemini API with structured JSON output.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"civicpulse/internal/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Typed failure modes of the port. Transport/credential problems and
// well-formed-but-unusable model output are distinguishable with errors.Is.
var (
	ErrUnavailable = errors.New("ai service unavailable")
	ErrBadResponse = errors.New("unparsable ai response")
)

// Client wraps the Gemini API for triage and predictions.
type Client struct {
	client     *genai.Client
	triage     *genai.GenerativeModel
	deepTriage *genai.GenerativeModel
	predict    *genai.GenerativeModel
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config for the Gemini client.
type Config struct {
	APIKey     string
	Model      string // default: "gemini-2.5-flash"
	DeepModel  string // default: "gemini-2.5-pro", used for deep analysis and predictions
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", ErrUnavailable)
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.DeepModel == "" {
		cfg.DeepModel = "gemini-2.5-pro"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", ErrUnavailable, err)
	}

	c := &Client{
		client:     client,
		triage:     newJSONModel(client, cfg.Model, triageSystemInstruction),
		deepTriage: newJSONModel(client, cfg.DeepModel, triageSystemInstruction),
		predict:    newJSONModel(client, cfg.DeepModel, predictSystemInstruction),
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.Model),
		zap.String("deep_model", cfg.DeepModel),
		zap.Int("max_retries", cfg.MaxRetries))

	return c, nil
}

func newJSONModel(client *genai.Client, name, systemInstruction string) *genai.GenerativeModel {
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.3), // Lower for consistent classification
		TopP:        genai.Ptr[float32](0.9),
		TopK:        genai.Ptr[int32](40),
	}
	return model
}

// Close closes the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Triage classifies a single report. The deep-analysis flag routes the
// request to the larger model.
func (c *Client) Triage(ctx context.Context, description string, photo models.Photo, location *models.Geolocation, deepAnalysis bool) (*models.TriageResult, []models.GroundingSource, error) {
	model := c.triage
	if deepAnalysis {
		model = c.deepTriage
	}

	parts := []genai.Part{
		genai.Text(fmt.Sprintf("Issue Description: %q", description)),
		genai.Blob{MIMEType: photo.MimeType, Data: photo.Data},
	}
	if location != nil {
		parts = append(parts, genai.Text(fmt.Sprintf(
			"Issue Location: Latitude %f, Longitude %f", location.Latitude, location.Longitude)))
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying triage request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			time.Sleep(c.retryDelay)
		}

		resp, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		text, err := responseText(resp)
		if err != nil {
			lastErr = err
			c.logger.Error("Bad Gemini response", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		var result models.TriageResult
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			lastErr = fmt.Errorf("%w: parse triage json: %v", ErrBadResponse, err)
			c.logger.Error("Failed to parse triage response",
				zap.Error(err),
				zap.String("response", text),
				zap.Int("attempt", attempt+1))
			continue
		}

		if err := validateTriageResult(&result); err != nil {
			lastErr = err
			c.logger.Error("Triage result out of range",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			continue
		}

		c.logger.Debug("Report triaged",
			zap.String("category", result.Category),
			zap.Int("severity", result.Severity),
			zap.Int("priority_score", result.PriorityScore),
			zap.Int("attempt", attempt+1))

		return &result, groundingSources(resp), nil
	}

	return nil, nil, fmt.Errorf("triage failed after %d attempts: %w", c.maxRetries, lastErr)
}

// Predict forecasts infrastructure issues near the given location. The
// model typically returns 5 to 7 items.
func (c *Client) Predict(ctx context.Context, location *models.Geolocation) ([]models.Prediction, error) {
	prompt := genai.Text(predictPrompt(location))

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying prediction request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			time.Sleep(c.retryDelay)
		}

		resp, err := c.predict.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		text, err := responseText(resp)
		if err != nil {
			lastErr = err
			continue
		}

		var payload struct {
			Predictions []models.Prediction `json:"predictions"`
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			lastErr = fmt.Errorf("%w: parse predictions json: %v", ErrBadResponse, err)
			c.logger.Error("Failed to parse prediction response",
				zap.Error(err),
				zap.String("response", text),
				zap.Int("attempt", attempt+1))
			continue
		}
		if len(payload.Predictions) == 0 {
			lastErr = fmt.Errorf("%w: no predictions returned", ErrBadResponse)
			continue
		}

		return payload.Predictions, nil
	}

	return nil, fmt.Errorf("prediction failed after %d attempts: %w", c.maxRetries, lastErr)
}

// responseText extracts the text part of the first candidate, stripping
// markdown code fences the model sometimes wraps JSON in.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrBadResponse)
	}
	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: unexpected response part type", ErrBadResponse)
	}

	clean := strings.TrimSpace(string(part))
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean), nil
}

func validateTriageResult(r *models.TriageResult) error {
	if r.Severity < 1 || r.Severity > 5 {
		return fmt.Errorf("%w: severity %d out of range", ErrBadResponse, r.Severity)
	}
	if r.PriorityScore < 1 || r.PriorityScore > 100 {
		return fmt.Errorf("%w: priority score %d out of range", ErrBadResponse, r.PriorityScore)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %f out of range", ErrBadResponse, r.Confidence)
	}
	return nil
}

func groundingSources(resp *genai.GenerateContentResponse) []models.GroundingSource {
	if len(resp.Candidates) == 0 || resp.Candidates[0].CitationMetadata == nil {
		return nil
	}
	var out []models.GroundingSource
	for _, src := range resp.Candidates[0].CitationMetadata.CitationSources {
		if src == nil || src.URI == nil {
			continue
		}
		out = append(out, models.GroundingSource{URI: *src.URI})
	}
	return out
}
