package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/examcraft/backend/internal/domain/flashcard"
)

// migrate adds columns introduced after the first schema version.
func migrate(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "flashcards", "source", "TEXT NOT NULL DEFAULT 'manual'"); err != nil {
		return err
	}
	return addColumnIfNotExists(db, "generation_jobs", "model", "TEXT NOT NULL DEFAULT ''")
}

func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// ============================================================================
// Reviews
// ============================================================================

func (s *SQLiteStore) SaveReview(ctx context.Context, r flashcard.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, card_id, outcome, from_status, to_status, consecutive_correct, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.UserID, r.CardID, string(r.Outcome),
		string(r.From), string(r.To), r.ConsecutiveCorrect, r.ReviewedAt,
	)
	return err
}

// ListReviews returns a card's review history, oldest first.
func (s *SQLiteStore) ListReviews(ctx context.Context, userID, cardID string) ([]flashcard.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, card_id, outcome, from_status, to_status, consecutive_correct, reviewed_at
		FROM reviews
		WHERE user_id = ? AND card_id = ?
		ORDER BY reviewed_at, id
	`, userID, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []flashcard.Review
	for rows.Next() {
		var r flashcard.Review
		var outcome, from, to string
		if err := rows.Scan(&r.ID, &r.UserID, &r.CardID, &outcome, &from, &to, &r.ConsecutiveCorrect, &r.ReviewedAt); err != nil {
			return nil, err
		}
		r.Outcome = flashcard.ReviewOutcome(outcome)
		r.From = flashcard.MasteryStatus(from)
		r.To = flashcard.MasteryStatus(to)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ============================================================================
// Generation jobs
// ============================================================================

func (s *SQLiteStore) SaveGenerationJob(ctx context.Context, job *GenerationJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_jobs (id, user_id, topic_id, status, requested, created_count, model, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID, job.UserID, job.TopicID, string(job.Status), job.Requested,
		job.CreatedCount, job.Model, job.Error, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) UpdateGenerationJob(ctx context.Context, job *GenerationJob) error {
	job.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE generation_jobs
		SET status = ?, created_count = ?, error = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, string(job.Status), job.CreatedCount, job.Error, job.UpdatedAt, job.ID, job.UserID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *SQLiteStore) GetGenerationJob(ctx context.Context, userID, jobID string) (*GenerationJob, error) {
	var job GenerationJob
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, topic_id, status, requested, created_count, model, error, created_at, updated_at
		FROM generation_jobs
		WHERE id = ? AND user_id = ?
	`, jobID, userID).Scan(
		&job.ID, &job.UserID, &job.TopicID, &status, &job.Requested,
		&job.CreatedCount, &job.Model, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = JobStatus(status)
	return &job, nil
}
