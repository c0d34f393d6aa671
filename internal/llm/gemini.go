// Package llm adapts Google's Gemini models to the companion and
// recommendation capabilities used by the application layer.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	genai "google.golang.org/genai"

	"github.com/example/mindease/internal/application"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

const (
	roleUser  = "user"
	roleModel = "model"

	companionTemperature = 0.8
	recommendationCount  = 3
)

// ErrEmptyResponse is returned when the model produced no candidate text.
var ErrEmptyResponse = errors.New("llm: empty response")

// ErrMissingAPIKey is returned by NewGeminiClient without credentials.
var ErrMissingAPIKey = errors.New("llm: api key is required")

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiClient implements application.TextGenerator and application.Recommender.
type GeminiClient struct {
	generate generateFunc
	model    string
	logger   *slog.Logger
}

var (
	_ application.TextGenerator = (*GeminiClient)(nil)
	_ application.Recommender   = (*GeminiClient)(nil)
)

// NewGeminiClient connects to the Gemini API backend.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return newGeminiClient(cli.Models.GenerateContent, model, logger), nil
}

func newGeminiClient(generate generateFunc, model string, logger *slog.Logger) *GeminiClient {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{generate: generate, model: model, logger: logger.With("component", "gemini", "model", model)}
}

// Name identifies the backing model.
func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// GenerateReply continues the companion conversation. The persona context is
// sent as the system instruction and the transcript as alternating turns.
func (g *GeminiClient) GenerateReply(ctx context.Context, req application.CompanionRequest) (string, error) {
	contents := transcriptContents(req.Transcript)
	if len(contents) == 0 {
		return "", fmt.Errorf("llm: transcript is empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](companionTemperature),
	}
	if strings.TrimSpace(req.SystemContext) != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemContext}}}
	}

	resp, err := g.generate(ctx, g.model, contents, config)
	if err != nil {
		g.logger.WarnContext(ctx, "companion reply failed", "error", err)
		return "", err
	}
	return firstText(resp)
}

// Recommend asks for three activity suggestions as structured JSON. A reply
// that does not parse yields an empty list rather than an error.
func (g *GeminiClient) Recommend(ctx context.Context, mood application.Mood, factors []string) ([]application.Recommendation, error) {
	resp, err := g.generate(ctx, g.model,
		[]*genai.Content{{Role: roleUser, Parts: []*genai.Part{{Text: RecommendationPrompt(mood, factors)}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationSchema(),
		},
	)
	if err != nil {
		g.logger.WarnContext(ctx, "recommendation request failed", "error", err)
		return nil, err
	}
	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}

	items := parseRecommendations(text)
	if len(items) == 0 {
		g.logger.WarnContext(ctx, "recommendation reply not usable", "bytes", len(text))
	}
	return items, nil
}

// RecommendationPrompt renders the request sent for a mood and its factors.
func RecommendationPrompt(mood application.Mood, factors []string) string {
	return fmt.Sprintf(
		"The user is feeling %s due to %s. Suggest %d specific categories of activities or topics they should explore today to improve their well-being.",
		mood, strings.Join(factors, ", "), recommendationCount)
}

func recommendationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":  {Type: genai.TypeString},
				"reason": {Type: genai.TypeString},
				"type":   {Type: genai.TypeString, Description: "One of: relaxation, activity, learning"},
			},
			Required: []string{"title", "reason", "type"},
		},
	}
}

func transcriptContents(turns []application.TranscriptTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := roleUser
		if turn.Role == application.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: turn.Text}}})
	}
	return contents
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

type recommendationPayload struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

func parseRecommendations(text string) []application.Recommendation {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")

	var payload []recommendationPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return []application.Recommendation{}
	}

	items := make([]application.Recommendation, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		items = append(items, application.Recommendation{
			Title:  strings.TrimSpace(p.Title),
			Reason: strings.TrimSpace(p.Reason),
			Type:   strings.ToLower(strings.TrimSpace(p.Type)),
		})
	}
	return items
}
