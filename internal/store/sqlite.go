// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
)

const schema = `
CREATE TABLE IF NOT EXISTS topics (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topics_user ON topics(user_id);

CREATE TABLE IF NOT EXISTS flashcards (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    topic_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    mastery_status TEXT NOT NULL DEFAULT 'learning'
        CHECK (mastery_status IN ('learning', 'under_review', 'mastered')),
    consecutive_correct INTEGER NOT NULL DEFAULT 0 CHECK (consecutive_correct >= 0),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_flashcards_topic_status
    ON flashcards(user_id, topic_id, mastery_status);

CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    card_id TEXT NOT NULL,
    outcome TEXT NOT NULL,
    from_status TEXT NOT NULL,
    to_status TEXT NOT NULL,
    consecutive_correct INTEGER NOT NULL,
    reviewed_at DATETIME NOT NULL,
    FOREIGN KEY (card_id) REFERENCES flashcards(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS generation_jobs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    topic_id TEXT NOT NULL,
    status TEXT NOT NULL,
    requested INTEGER NOT NULL,
    created_count INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
`

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens (or creates) the database at dbPath and applies the schema.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Topics
// ============================================================================

func (s *SQLiteStore) SaveTopic(ctx context.Context, t *topic.Topic) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO topics (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
		t.ID, t.UserID, t.Name, t.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetTopic(ctx context.Context, userID, topicID string) (*topic.Topic, error) {
	var t topic.Topic
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at FROM topics WHERE id = ? AND user_id = ?",
		topicID, userID,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListTopics(ctx context.Context, userID string) ([]*topic.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, created_at FROM topics WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*topic.Topic
	for rows.Next() {
		var t topic.Topic
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, &t)
	}
	return topics, rows.Err()
}

func (s *SQLiteStore) UpdateTopic(ctx context.Context, t *topic.Topic) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE topics SET name = ? WHERE id = ? AND user_id = ?",
		t.Name, t.ID, t.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (s *SQLiteStore) DeleteTopic(ctx context.Context, userID, topicID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Reviews first, then cards, then the topic itself
	_, err = tx.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE card_id IN (SELECT id FROM flashcards WHERE topic_id = ? AND user_id = ?)
	`, topicID, userID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM flashcards WHERE topic_id = ? AND user_id = ?", topicID, userID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM topics WHERE id = ? AND user_id = ?", topicID, userID)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetTopicStats(ctx context.Context, userID, topicID string) (topic.Stats, error) {
	stats := topic.Stats{TopicID: topicID}

	rows, err := s.db.QueryContext(ctx, `
		SELECT mastery_status, COUNT(*)
		FROM flashcards
		WHERE user_id = ? AND topic_id = ?
		GROUP BY mastery_status
	`, userID, topicID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, err
		}
		switch flashcard.MasteryStatus(status) {
		case flashcard.StatusLearning:
			stats.Learning = n
		case flashcard.StatusUnderReview:
			stats.UnderReview = n
		case flashcard.StatusMastered:
			stats.Mastered = n
		}
		stats.Total += n
	}
	return stats, rows.Err()
}

// ============================================================================
// Flashcards
// ============================================================================

const flashcardColumns = "id, user_id, topic_id, front, back, mastery_status, consecutive_correct, source, created_at, updated_at"

const insertFlashcard = "INSERT INTO flashcards (" + flashcardColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCard(ctx context.Context, e execer, c *flashcard.Flashcard) error {
	_, err := e.ExecContext(ctx, insertFlashcard,
		c.ID, c.UserID, c.TopicID, c.Front, c.Back,
		string(c.MasteryStatus), c.ConsecutiveCorrect, string(c.Source),
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) SaveFlashcard(ctx context.Context, card *flashcard.Flashcard) error {
	return insertCard(ctx, s.db, card)
}

// SaveFlashcards inserts all cards in one transaction.
func (s *SQLiteStore) SaveFlashcards(ctx context.Context, cards []*flashcard.Flashcard) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range cards {
		if err := insertCard(ctx, tx, c); err != nil {
			return fmt.Errorf("insert card %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// SaveImport writes every batch in one transaction. Either all topics and
// cards land or none do.
func (s *SQLiteStore) SaveImport(ctx context.Context, batches []ImportBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, b := range batches {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO topics (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
			b.Topic.ID, b.Topic.UserID, b.Topic.Name, b.Topic.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert topic %q: %w", b.Topic.Name, err)
		}
		for _, c := range b.Cards {
			if err := insertCard(ctx, tx, c); err != nil {
				return fmt.Errorf("insert card %s of topic %q: %w", c.ID, b.Topic.Name, err)
			}
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(r rowScanner) (flashcard.Flashcard, error) {
	var c flashcard.Flashcard
	var status, source string
	err := r.Scan(&c.ID, &c.UserID, &c.TopicID, &c.Front, &c.Back,
		&status, &c.ConsecutiveCorrect, &source, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.MasteryStatus = flashcard.MasteryStatus(status)
	c.Source = flashcard.Source(source)
	return c, c.Validate()
}

func (s *SQLiteStore) GetFlashcard(ctx context.Context, userID, cardID string) (*flashcard.Flashcard, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE id = ? AND user_id = ?",
		cardID, userID,
	)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) queryCards(ctx context.Context, query string, args ...any) ([]flashcard.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []flashcard.Flashcard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ListFlashcards returns every card of a topic, oldest first.
func (s *SQLiteStore) ListFlashcards(ctx context.Context, userID, topicID string) ([]flashcard.Flashcard, error) {
	return s.queryCards(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? AND topic_id = ? ORDER BY created_at, id",
		userID, topicID,
	)
}

// ListFlashcardsByStatus returns a topic's cards with exactly the given status.
func (s *SQLiteStore) ListFlashcardsByStatus(ctx context.Context, userID, topicID string, status flashcard.MasteryStatus) ([]flashcard.Flashcard, error) {
	return s.queryCards(ctx,
		"SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? AND topic_id = ? AND mastery_status = ? ORDER BY created_at, id",
		userID, topicID, string(status),
	)
}

// SaveCardMasteryUpdate writes t.To and t.ConsecutiveCorrect only if the card
// is still in the state t was computed from. It returns ErrConflict when
// another review got there first and ErrNotFound when the card is gone.
func (s *SQLiteStore) SaveCardMasteryUpdate(ctx context.Context, userID, cardID string, t flashcard.Transition) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE flashcards
		SET mastery_status = ?, consecutive_correct = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND mastery_status = ? AND consecutive_correct = ?
	`,
		string(t.To), t.ConsecutiveCorrect, time.Now().UTC(),
		cardID, userID, string(t.From), t.FromConsecutiveCorrect,
	)
	if err != nil {
		return err
	}

	err = requireAffected(result)
	if err != ErrNotFound {
		return err
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM flashcards WHERE id = ? AND user_id = ?", cardID, userID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func (s *SQLiteStore) DeleteFlashcard(ctx context.Context, userID, cardID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE card_id = ? AND user_id = ?", cardID, userID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM flashcards WHERE id = ? AND user_id = ?", cardID, userID)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
