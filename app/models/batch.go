package models

import "time"

// BatchCandidate is one CV submitted through the employer dashboard.
type BatchCandidate struct {
	Name   string `json:"name"`
	CVText string `json:"cv_text"`
}

// BatchMessage is the SQS payload for one chunk of a batch scoring job.
type BatchMessage struct {
	JobID          string           `json:"job_id"`
	UserID         string           `json:"user_id"`
	JobDescription string           `json:"job_description"`
	Candidates     []BatchCandidate `json:"candidates"`
	ChunkIndex     int              `json:"chunk_index"` // 0-based
}

// BatchJobStatus summarizes a batch scoring job.
type BatchJobStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	TotalCVs     int    `json:"total_cvs"`
	CompletedCVs int    `json:"completed_cvs"`
}

// CandidateScore is one scored CV in a batch, as stored in batch_results.
type CandidateScore struct {
	ID             string    `json:"id"`
	JobID          string    `json:"-"`
	CandidateName  string    `json:"candidate_name"`
	Score          int       `json:"score"`
	Summary        string    `json:"summary"`
	MatchingSkills []string  `json:"matchingSkills"`
	MissingSkills  []string  `json:"missingSkills"`
	ExtraSkills    []string  `json:"extraSkills"`
	CreatedAt      time.Time `json:"created_at"`
}
