// Employer batch scoring: one job description against many CVs, fanned out
// through SQS and scored asynchronously by the batch worker.

package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
	"github.com/Mohamadaloreibi/matchai-talent-finder/auth"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBatchCandidates = 50

// SubmitBatch handles POST /api/batch. The whole submission consumes a single
// quota slot: the admission check runs once, and one usage event is recorded
// when the job has been accepted and enqueued.
func SubmitBatch(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	var req struct {
		JobDescription string                  `json:"job_description"`
		Candidates     []models.BatchCandidate `json:"candidates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_description is required"})
		return
	}
	if len(req.Candidates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one candidate is required"})
		return
	}
	if len(req.Candidates) > maxBatchCandidates {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many candidates in one batch"})
		return
	}
	for i := range req.Candidates {
		if strings.TrimSpace(req.Candidates[i].CVText) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every candidate needs cv_text"})
			return
		}
		if req.Candidates[i].Name == "" {
			req.Candidates[i].Name = "Candidate"
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}

	decision := CheckQuota(c.Request.Context(), ledger, roles, claims.Subject, cfg.Quota.DailyLimit, nowFn())
	if !decision.Allowed {
		respondRateLimited(c, decision)
		return
	}

	jobID, err := createBatchJob(c.Request.Context(), claims.Subject, req.JobDescription, len(req.Candidates))
	if err != nil {
		zlog.Error("failed to create batch job",
			zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create batch job"})
		return
	}

	chunks := chunkCandidates(req.Candidates, cfg.Batch.ChunkSize)
	if err := enqueueBatchChunks(c.Request.Context(), cfg, jobID, claims.Subject, req.JobDescription, chunks); err != nil {
		zlog.Error("failed to enqueue batch chunks",
			zap.String("job_id", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue batch job"})
		return
	}

	// The accepted submission is the usage event, not the per-CV scoring.
	if err := ledger.Append(c.Request.Context(), claims.Subject); err != nil {
		zlog.Warn("failed to record usage event for batch",
			zap.String("user_id", claims.Subject), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":    jobID,
		"total_cvs": len(req.Candidates),
		"chunks":    len(chunks),
		"status":    "running",
	})
}

// GetBatchStatus handles GET /api/batch/:jobid.
func GetBatchStatus(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	jobID := c.Param("jobid")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	status, err := findBatchJob(c.Request.Context(), claims.Subject, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": status})
}

// GetBatchResults handles GET /api/batch/:jobid/results, best score first.
func GetBatchResults(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		respondAuthRequired(c)
		return
	}

	jobID := c.Param("jobid")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	results, err := listCandidateScores(c.Request.Context(), claims.Subject, jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load results"})
		return
	}
	if results == nil {
		results = []models.CandidateScore{}
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":  jobID,
		"count":   len(results),
		"results": results,
	})
}

func chunkCandidates(candidates []models.BatchCandidate, size int) [][]models.BatchCandidate {
	if size <= 0 {
		size = 5
	}
	var chunks [][]models.BatchCandidate
	for start := 0; start < len(candidates); start += size {
		end := start + size
		if end > len(candidates) {
			end = len(candidates)
		}
		chunks = append(chunks, candidates[start:end])
	}
	return chunks
}

func enqueueBatchChunks(ctx context.Context, cfg *config.Config, jobID, userID, jobDescription string, chunks [][]models.BatchCandidate) error {
	if cfg.QueueURL == "" {
		return errors.New("QUEUE_URL is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	sqsClient := sqs.NewFromConfig(awsCfg)

	for i, chunk := range chunks {
		msg := models.BatchMessage{
			JobID:          jobID,
			UserID:         userID,
			JobDescription: jobDescription,
			Candidates:     chunk,
			ChunkIndex:     i,
		}

		body, err := json.Marshal(msg)
		if err != nil {
			return err
		}

		if _, err := sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    &cfg.QueueURL,
			MessageBody: aws.String(string(body)),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Batch persistence seams, swapped for fakes in tests.
var (
	clearChunkScoresFn  = deleteChunkScores
	insertScoreFn       = insertCandidateScore
	bumpBatchProgressFn = bumpBatchProgress
)

// ProcessBatchMessage scores one chunk of a batch job. A candidate whose
// scoring fails is logged and skipped; the chunk still completes so a single
// bad CV cannot wedge the job in 'running' forever.
func ProcessBatchMessage(ctx context.Context, cfg *config.Config, msg models.BatchMessage) error {
	start := time.Now()

	zlog.Info("processing batch chunk",
		zap.String("job_id", msg.JobID),
		zap.String("user_id", msg.UserID),
		zap.Int("chunk_index", msg.ChunkIndex),
		zap.Int("candidates", len(msg.Candidates)))

	// A redelivered chunk starts from a clean slate: without this, a retry
	// after a mid-chunk failure would re-insert already-scored candidates.
	if err := clearChunkScoresFn(ctx, msg.JobID, msg.ChunkIndex); err != nil {
		return err
	}

	for _, cand := range msg.Candidates {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
		analysis, err := assistant.MatchCV(callCtx, models.MatchRequest{
			CVText:         cand.CVText,
			JobDescription: msg.JobDescription,
			CandidateName:  cand.Name,
		})
		cancel()

		if err != nil {
			zlog.Warn("batch candidate scoring failed",
				zap.String("job_id", msg.JobID),
				zap.String("candidate", cand.Name),
				zap.Error(err))
			continue
		}

		if err := insertScoreFn(ctx, msg.JobID, msg.ChunkIndex, cand.Name, analysis); err != nil {
			return err
		}
	}

	// Progress moves once per chunk, after everything else succeeded, so
	// completed_cvs can never exceed total_cvs across redeliveries. Skipped
	// candidates still count as processed.
	if err := bumpBatchProgressFn(ctx, msg.JobID, len(msg.Candidates)); err != nil {
		return err
	}

	zlog.Info("batch chunk complete",
		zap.String("job_id", msg.JobID),
		zap.Int("chunk_index", msg.ChunkIndex),
		zap.Duration("took", time.Since(start)))

	return nil
}
