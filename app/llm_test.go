package app

import (
	"strings"
	"testing"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
)

func TestDecodeMatchAnalysisValid(t *testing.T) {
	payload := `{
		"score": 74,
		"confidence_score": 0.8,
		"summary": "Solid overlap on backend skills",
		"matchingSkills": ["Go", "PostgreSQL"],
		"missingSkills": ["Kubernetes"],
		"extraSkills": []
	}`

	analysis, err := decodeMatchAnalysis([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Score != 74 {
		t.Fatalf("expected score 74, got %d", analysis.Score)
	}
	if len(analysis.MatchingSkills) != 2 {
		t.Fatalf("expected 2 matching skills, got %d", len(analysis.MatchingSkills))
	}
}

func TestDecodeMatchAnalysisRejectsOffContract(t *testing.T) {
	cases := map[string]string{
		"malformed":          `{"score": 74,`,
		"score too high":     `{"score": 140, "summary": "x"}`,
		"score negative":     `{"score": -1, "summary": "x"}`,
		"confidence too big": `{"score": 50, "confidence_score": 1.5, "summary": "x"}`,
		"missing summary":    `{"score": 50, "summary": "   "}`,
	}
	for name, payload := range cases {
		if _, err := decodeMatchAnalysis([]byte(payload)); err == nil {
			t.Fatalf("expected %s payload to be rejected", name)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	plain := `{"score": 1}`
	if got := extractJSON(plain); got != plain {
		t.Fatalf("expected plain JSON untouched, got %q", got)
	}

	fenced := "```json\n{\"score\": 1}\n```"
	if got := extractJSON(fenced); got != plain {
		t.Fatalf("expected fences stripped, got %q", got)
	}

	bare := "```\n{\"score\": 1}\n```"
	if got := extractJSON(bare); got != plain {
		t.Fatalf("expected bare fences stripped, got %q", got)
	}

	padded := "\n\n  " + plain + "  \n"
	if got := extractJSON(padded); got != plain {
		t.Fatalf("expected whitespace trimmed, got %q", got)
	}
}

func TestBuildMatchPromptIncludesInputs(t *testing.T) {
	prompt := buildMatchPrompt(models.MatchRequest{
		CVText:         "Go developer with cloud experience",
		JobDescription: "Backend engineer wanted",
	})
	for _, want := range []string{"Go developer", "Backend engineer wanted"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
}
