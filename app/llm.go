// Gemini-backed assistant: one blocking request-response exchange per call,
// structured JSON output enforced through a response schema.

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Assistant is the external LLM collaborator. Every method is a single
// synchronous exchange; callers own timeouts via ctx.
type Assistant interface {
	MatchCV(ctx context.Context, req models.MatchRequest) (*models.MatchAnalysis, error)
	GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error)
	ExplainCoverLetter(ctx context.Context, req models.ExplainLetterRequest) (string, error)
}

// assistant is the process-wide collaborator, swapped for a stub in tests.
var assistant Assistant

// MustInitAssistant wires the Gemini client from the environment.
func MustInitAssistant() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for assistant: %v", err)
	}

	a, err := NewGeminiAssistant(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		log.Fatalf("failed to init gemini assistant: %v", err)
	}
	assistant = a
}

// GeminiAssistant wraps the Google GenAI client.
type GeminiAssistant struct {
	client    *genai.Client
	modelName string
}

func NewGeminiAssistant(ctx context.Context, apiKey, model string) (*GeminiAssistant, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiAssistant{client: client, modelName: model}, nil
}

// matchResponseSchema mirrors the structured analysis contract: the model must
// return this object or the call counts as an upstream failure.
var matchResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {
			Type:        genai.TypeInteger,
			Description: "Match score from 0-100",
		},
		"confidence_score": {
			Type:        genai.TypeNumber,
			Description: "Confidence in the score, 0.0-1.0",
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "Brief summary of why candidate is a good fit",
		},
		"matchingSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Skills that match between CV and job",
		},
		"missingSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Skills in job description but not in CV",
		},
		"extraSkills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Relevant skills candidate has not mentioned in job",
		},
	},
	Required: []string{"score", "summary", "matchingSkills", "missingSkills", "extraSkills"},
}

func (a *GeminiAssistant) MatchCV(ctx context.Context, req models.MatchRequest) (*models.MatchAnalysis, error) {
	raw, err := a.generate(ctx, buildMatchPrompt(req), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: matchSystemPrompt}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   matchResponseSchema,
	})
	if err != nil {
		return nil, err
	}

	analysis, err := decodeMatchAnalysis([]byte(extractJSON(raw)))
	if err != nil {
		zlog.Warn("assistant returned unusable match payload",
			zap.String("response_preview", truncateForLog(raw, 200)),
			zap.Error(err))
		return nil, err
	}
	return analysis, nil
}

func (a *GeminiAssistant) GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (string, error) {
	targetLanguage := req.LanguagePref
	if targetLanguage == "" || targetLanguage == "auto" {
		targetLanguage = detectLanguage(req.JobDescription, req.CVText)
	}
	return a.generate(ctx, buildCoverLetterPrompt(req, targetLanguage), nil)
}

func (a *GeminiAssistant) ExplainCoverLetter(ctx context.Context, req models.ExplainLetterRequest) (string, error) {
	return a.generate(ctx, buildExplainPrompt(req), nil)
}

func (a *GeminiAssistant) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if a == nil || a.client == nil {
		return "", errors.New("gemini assistant is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.modelName, genai.Text(prompt), cfg)
	if err != nil {
		// Upstream 429 (rate limit) and 402 (credits exhausted) are the
		// provider's problem, not the user's quota; both surface the same way.
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini api error %d: %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// decodeMatchAnalysis validates the model output against the schema we asked
// for. Anything off-contract is rejected rather than propagated untyped.
func decodeMatchAnalysis(data []byte) (*models.MatchAnalysis, error) {
	var analysis models.MatchAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parse match analysis: %w", err)
	}

	if analysis.Score < 0 || analysis.Score > 100 {
		return nil, fmt.Errorf("match analysis score out of range: %d", analysis.Score)
	}
	if analysis.ConfidenceScore < 0 || analysis.ConfidenceScore > 1 {
		return nil, fmt.Errorf("match analysis confidence out of range: %v", analysis.ConfidenceScore)
	}
	if strings.TrimSpace(analysis.Summary) == "" {
		return nil, errors.New("match analysis missing summary")
	}
	return &analysis, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
