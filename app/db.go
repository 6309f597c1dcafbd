package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"

	"github.com/lib/pq"
)

var db *sql.DB

var errDBNotInitialized = errors.New("db not initialized")

// MustInitDB initializes the global db and panics/logs fatally on error.
func MustInitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	db = d
}

// --- quota ledger (analysis_logs) ---

// postgresLedger reads and appends analysis_logs rows. The table is
// append-only from the application: no update or delete paths exist.
type postgresLedger struct{}

func (postgresLedger) CountRecent(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.QueryContext(ctx, `
		SELECT created_at
		FROM analysis_logs
		WHERE user_id = $1
		  AND created_at >= $2
		ORDER BY created_at DESC;
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (postgresLedger) Append(ctx context.Context, userID string) error {
	if db == nil {
		return errDBNotInitialized
	}

	// created_at is assigned by the database, never by the client.
	_, err := db.ExecContext(ctx, `
		INSERT INTO analysis_logs (user_id)
		VALUES ($1);
	`, userID)
	return err
}

// --- roles (user_roles) ---

type postgresRoles struct{}

func (postgresRoles) HasRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	if db == nil {
		return false, errDBNotInitialized
	}

	var has bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role = $2
		);
	`, userID, role).Scan(&has)
	if err != nil {
		return false, err
	}
	return has, nil
}

func listUserRoles(ctx context.Context) ([]models.UserRole, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.QueryContext(ctx, `
		SELECT user_id, role, created_at
		FROM user_roles
		ORDER BY created_at DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserRole
	for rows.Next() {
		var r models.UserRole
		if err := rows.Scan(&r.UserID, &r.Role, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- saved letters ---

func insertSavedLetter(ctx context.Context, l models.SavedLetter) (string, error) {
	if db == nil {
		return "", errDBNotInitialized
	}

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO saved_letters (user_id, job_title, company, language, tone, letter_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`, l.UserID, l.JobTitle, l.Company, l.Language, l.Tone, l.LetterText).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func listSavedLetters(ctx context.Context, userID string) ([]models.SavedLetter, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, job_title, company, language, tone, letter_text, created_at
		FROM saved_letters
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SavedLetter
	for rows.Next() {
		l := models.SavedLetter{UserID: userID}
		if err := rows.Scan(&l.ID, &l.JobTitle, &l.Company, &l.Language, &l.Tone, &l.LetterText, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// deleteSavedLetter removes a letter only if it belongs to userID.
func deleteSavedLetter(ctx context.Context, userID, letterID string) error {
	if db == nil {
		return errDBNotInitialized
	}

	res, err := db.ExecContext(ctx, `
		DELETE FROM saved_letters
		WHERE id = $1 AND user_id = $2;
	`, letterID, userID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- feedback ---

func insertFeedback(ctx context.Context, userID, category, message string) (string, error) {
	if db == nil {
		return "", errDBNotInitialized
	}

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO feedback (user_id, category, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`, userID, category, message, models.FeedbackStatusNew).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func listFeedback(ctx context.Context) ([]models.Feedback, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, category, message, status, created_at
		FROM feedback
		ORDER BY created_at DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Category, &f.Message, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func updateFeedbackStatus(ctx context.Context, id, status string) error {
	if db == nil {
		return errDBNotInitialized
	}

	res, err := db.ExecContext(ctx, `
		UPDATE feedback
		SET status = $1
		WHERE id = $2;
	`, status, id)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- batch scoring jobs ---

func createBatchJob(ctx context.Context, userID, jobDescription string, totalCVs int) (string, error) {
	if db == nil {
		return "", errDBNotInitialized
	}

	var jobID string
	err := db.QueryRowContext(ctx, `
		INSERT INTO batch_jobs (user_id, job_description, total_cvs)
		VALUES ($1, $2, $3)
		RETURNING id;
	`, userID, jobDescription, totalCVs).Scan(&jobID)
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// bumpBatchProgress increments completed_cvs and flips status to
// 'completed' once every CV in the job has been scored.
func bumpBatchProgress(ctx context.Context, jobID string, n int) error {
	if db == nil {
		return errDBNotInitialized
	}

	res, err := db.ExecContext(ctx, `
		UPDATE batch_jobs
		SET
			completed_cvs = completed_cvs + $1,
			status = CASE
				WHEN completed_cvs + $1 >= total_cvs THEN 'completed'
				ELSE 'running'
			END,
			updated_at = now()
		WHERE id = $2;
	`, n, jobID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		log.Printf("bumpBatchProgress: no batch job row found for id=%s", jobID)
	}
	return nil
}

func findBatchJob(ctx context.Context, userID, jobID string) (models.BatchJobStatus, error) {
	if db == nil {
		return models.BatchJobStatus{}, errDBNotInitialized
	}

	var js models.BatchJobStatus
	err := db.QueryRowContext(ctx, `
		SELECT id, status, total_cvs, completed_cvs
		FROM batch_jobs
		WHERE id = $1 AND user_id = $2;
	`, jobID, userID).Scan(&js.ID, &js.Status, &js.TotalCVs, &js.CompletedCVs)
	if err != nil {
		return models.BatchJobStatus{}, err
	}
	return js, nil
}

func insertCandidateScore(ctx context.Context, jobID string, chunkIndex int, name string, a *models.MatchAnalysis) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO batch_results (job_id, chunk_index, candidate_name, score, summary, matching_skills, missing_skills, extra_skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`, jobID, chunkIndex, name, a.Score, a.Summary,
		pq.Array(a.MatchingSkills), pq.Array(a.MissingSkills), pq.Array(a.ExtraSkills))
	return err
}

// deleteChunkScores clears rows a previous delivery of the same chunk wrote,
// so redelivered chunks never double-insert.
func deleteChunkScores(ctx context.Context, jobID string, chunkIndex int) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		DELETE FROM batch_results
		WHERE job_id = $1 AND chunk_index = $2;
	`, jobID, chunkIndex)
	return err
}

func listCandidateScores(ctx context.Context, userID, jobID string) ([]models.CandidateScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.candidate_name, r.score, r.summary, r.matching_skills, r.missing_skills, r.extra_skills, r.created_at
		FROM batch_results r
		JOIN batch_jobs j ON j.id = r.job_id
		WHERE r.job_id = $1 AND j.user_id = $2
		ORDER BY r.score DESC, r.created_at ASC;
	`, jobID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CandidateScore
	for rows.Next() {
		cs := models.CandidateScore{JobID: jobID}
		if err := rows.Scan(
			&cs.ID,
			&cs.CandidateName,
			&cs.Score,
			&cs.Summary,
			pq.Array(&cs.MatchingSkills),
			pq.Array(&cs.MissingSkills),
			pq.Array(&cs.ExtraSkills),
			&cs.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
