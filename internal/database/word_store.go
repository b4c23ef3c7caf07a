package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const (
	busyAttempts = 5
	busyDelay    = 100 * time.Millisecond
)

// WordStore handles persistence of words, users and per-user answer
// counters. All mutating operations are transactional.
type WordStore struct {
	db        *sqlx.DB
	threshold int
}

// NewWordStore creates a store over an open connection. A word counts as
// learned for a user once its answer counter reaches learningThreshold.
func NewWordStore(db *sqlx.DB, learningThreshold int) *WordStore {
	return &WordStore{db: db, threshold: learningThreshold}
}

// BulkImport inserts unseen words and silently skips duplicates by
// original text. The whole batch is one transaction: a commit-level
// failure leaves no partial rows.
func (s *WordStore) BulkImport(ctx context.Context, pairs []models.WordPair) (inserted, duplicate int, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := tx.Rebind(`
		INSERT INTO words (text, translate) VALUES (?, ?)
		ON CONFLICT (text) DO NOTHING`)

	for _, p := range pairs {
		res, execErr := tx.ExecContext(ctx, query, p.Original, p.Translation)
		if execErr != nil {
			err = fmt.Errorf("failed to insert word %q: %w", p.Original, execErr)
			return 0, 0, err
		}
		n, _ := res.RowsAffected()
		if n > 0 {
			inserted++
		} else {
			duplicate++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, duplicate, nil
}

// EnsureUser creates a user row for the chat id if one does not exist.
// Safe to call concurrently for the same chat id.
func (s *WordStore) EnsureUser(ctx context.Context, chatID int64) error {
	query := s.db.Rebind(`
		INSERT INTO users (chat_id) VALUES (?)
		ON CONFLICT (chat_id) DO NOTHING`)

	return s.withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, chatID)
		return err
	})
}

// LearnedWords returns the user's words with a counter at or above the
// learning threshold.
func (s *WordStore) LearnedWords(ctx context.Context, chatID int64) ([]models.Word, error) {
	query := s.db.Rebind(`
		SELECT w.id, w.text, w.translate, ua.correct_answer_count
		FROM words w
		JOIN user_answers ua ON w.id = ua.word_id
		JOIN users u ON ua.user_id = u.id
		WHERE u.chat_id = ? AND ua.correct_answer_count >= ?
		ORDER BY w.id`)

	var words []models.Word
	if err := s.db.SelectContext(ctx, &words, query, chatID, s.threshold); err != nil {
		return nil, fmt.Errorf("failed to get learned words: %w", err)
	}
	return words, nil
}

// UnlearnedWords returns the user's words below the learning threshold.
// A word without a progress row counts as zero correct answers.
func (s *WordStore) UnlearnedWords(ctx context.Context, chatID int64) ([]models.Word, error) {
	query := s.db.Rebind(`
		SELECT w.id, w.text, w.translate,
		       COALESCE(ua.correct_answer_count, 0) AS correct_answer_count
		FROM words w
		LEFT JOIN user_answers ua ON w.id = ua.word_id
		     AND ua.user_id = (SELECT id FROM users WHERE chat_id = ?)
		WHERE ua.correct_answer_count IS NULL OR ua.correct_answer_count < ?
		ORDER BY w.id`)

	var words []models.Word
	if err := s.db.SelectContext(ctx, &words, query, chatID, s.threshold); err != nil {
		return nil, fmt.Errorf("failed to get unlearned words: %w", err)
	}
	return words, nil
}

// LearnedCount returns how many words the user has learned.
func (s *WordStore) LearnedCount(ctx context.Context, chatID int64) (int, error) {
	query := s.db.Rebind(`
		SELECT COUNT(*)
		FROM user_answers ua
		JOIN users u ON ua.user_id = u.id
		WHERE u.chat_id = ? AND ua.correct_answer_count >= ?`)

	var count int
	if err := s.db.GetContext(ctx, &count, query, chatID, s.threshold); err != nil {
		return 0, fmt.Errorf("failed to count learned words: %w", err)
	}
	return count, nil
}

// RecordAnswer upserts the user's counter for a word. It fails with
// ErrNoSuchUser or ErrNoSuchWord when the referenced entities are absent.
func (s *WordStore) RecordAnswer(ctx context.Context, chatID int64, original string, newCount int) error {
	var userID int64
	err := s.db.GetContext(ctx, &userID, s.db.Rebind("SELECT id FROM users WHERE chat_id = ?"), chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("chat %d: %w", chatID, ErrNoSuchUser)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	var wordID int64
	err = s.db.GetContext(ctx, &wordID, s.db.Rebind("SELECT id FROM words WHERE text = ?"), original)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("word %q: %w", original, ErrNoSuchWord)
	}
	if err != nil {
		return fmt.Errorf("failed to look up word: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO user_answers (user_id, word_id, correct_answer_count, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			correct_answer_count = excluded.correct_answer_count,
			updated_at = CURRENT_TIMESTAMP`)

	return s.withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, userID, wordID, newCount)
		if err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		return nil
	})
}

// ResetProgress deletes all answer counters for the user only.
func (s *WordStore) ResetProgress(ctx context.Context, chatID int64) error {
	query := s.db.Rebind(`
		DELETE FROM user_answers
		WHERE user_id = (SELECT id FROM users WHERE chat_id = ?)`)

	return s.withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, chatID)
		if err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		return nil
	})
}

// Size returns the total catalog cardinality.
func (s *WordStore) Size(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// withBusyRetry runs fn, retrying a bounded number of times with a short
// delay while the store reports transient contention.
func (s *WordStore) withBusyRetry(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt < busyAttempts; attempt++ {
		err := fn()
		if err == nil || !isBusy(err) {
			return err
		}
		select {
		case <-time.After(busyDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ErrBusy
}

func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
