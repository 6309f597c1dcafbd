// Package models defines the request and response shapes for CV/job matching.
package models

// MatchRequest is the body of POST /api/analyze.
type MatchRequest struct {
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
	CandidateName  string `json:"candidate_name,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	Company        string `json:"company,omitempty"`
	Language       string `json:"language,omitempty"` // "en", "sv" or "ar"
}

// SkillWeights breaks the score down by requirement class.
type SkillWeights struct {
	Must      float64 `json:"must"`
	Should    float64 `json:"should"`
	NiceBonus float64 `json:"nice_bonus"`
}

// Evidence is a CV or job-description quote backing a claim in the summary.
type Evidence struct {
	Quote  string `json:"quote"`
	Source string `json:"source"`
}

// StarStory is a Situation/Task/Action/Result anecdote the candidate could use.
type StarStory struct {
	S string `json:"s"`
	T string `json:"t"`
	A string `json:"a"`
	R string `json:"r"`
}

// Tip is an improvement suggestion with a rough payoff estimate.
type Tip struct {
	Text          string `json:"text"`
	EstimatedGain string `json:"estimated_gain"` // "low", "medium" or "high"
}

// BiasFlag marks a potentially biased phrase in the job description.
type BiasFlag struct {
	Phrase string `json:"phrase"`
	Reason string `json:"reason"`
	Alt    string `json:"alt"`
}

type BiasAlert struct {
	Flagged []BiasFlag `json:"flagged"`
}

// MatchAnalysis is the structured payload returned by the LLM for one CV/job pair.
type MatchAnalysis struct {
	Score           int           `json:"score"` // 0-100
	ConfidenceScore float64       `json:"confidence_score,omitempty"`
	Summary         string        `json:"summary"`
	MatchingSkills  []string      `json:"matchingSkills"`
	MissingSkills   []string      `json:"missingSkills"`
	ExtraSkills     []string      `json:"extraSkills"`
	Weights         *SkillWeights `json:"weights,omitempty"`
	Evidence        []Evidence    `json:"evidence,omitempty"`
	Star            []StarStory   `json:"star,omitempty"`
	Tips            []Tip         `json:"tips,omitempty"`
	BiasAlert       *BiasAlert    `json:"bias_alert,omitempty"`
}

// MatchResult is the analysis enriched with the request metadata we echo back.
type MatchResult struct {
	MatchAnalysis
	CandidateName string `json:"candidate_name,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	Company       string `json:"company,omitempty"`
	CreatedAtISO  string `json:"created_at_iso"`
	Language      string `json:"language,omitempty"`
}
