package models

import "time"

// CoverLetterRequest is the body of POST /api/cover-letter.
type CoverLetterRequest struct {
	CandidateName  string   `json:"candidate_name"`
	CVText         string   `json:"cv_text"`
	JobDescription string   `json:"job_description"`
	MatchSummary   string   `json:"match_summary,omitempty"`
	MatchingSkills []string `json:"matching_skills,omitempty"`
	LanguagePref   string   `json:"language_pref"` // "en", "sv", "ar" or "auto"
	Tone           string   `json:"tone"`
	JobTitle       string   `json:"job_title"`
	Company        string   `json:"company"`
}

// CoverLetterResult carries the generated letter and the language it resolved to.
type CoverLetterResult struct {
	Language        string `json:"language"`
	Tone            string `json:"tone"`
	CoverLetterText string `json:"cover_letter_text"`
}

// ExplainLetterRequest is the body of POST /api/cover-letter/explain.
type ExplainLetterRequest struct {
	CurrentLetter  string `json:"current_letter"`
	CVText         string `json:"cv_text"`
	JobDescription string `json:"job_description"`
	Tone           string `json:"tone"`
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	TargetLanguage string `json:"target_language"`
}

type ExplainLetterResult struct {
	Explanation string `json:"explanation"`
	Language    string `json:"language"`
}

// SavedLetter is one row in saved_letters, owned by a single user.
type SavedLetter struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	JobTitle   string    `json:"job_title"`
	Company    string    `json:"company"`
	Language   string    `json:"language"`
	Tone       string    `json:"tone"`
	LetterText string    `json:"letter_text"`
	CreatedAt  time.Time `json:"created_at"`
}
