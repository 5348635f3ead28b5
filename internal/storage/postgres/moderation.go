package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// BannedWordStore persists the normalized moderation word set.
type BannedWordStore struct {
	db *sql.DB
}

func NewBannedWordStore(db *sql.DB) *BannedWordStore { return &BannedWordStore{db: db} }

func (s *BannedWordStore) Add(ctx context.Context, word string) (*domain.BannedWord, error) {
	var entry domain.BannedWord
	err := q(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO banned_words (word) VALUES ($1) RETURNING id, word, added_at`, word,
	).Scan(&entry.ID, &entry.Word, &entry.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, dErrors.New(dErrors.CodeConflict, "word already in banned list")
		}
		return nil, fmt.Errorf("add banned word: %w", err)
	}
	return &entry, nil
}

func (s *BannedWordStore) Delete(ctx context.Context, id int64) error {
	result, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM banned_words WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banned word: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete banned word rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("banned word")
	}
	return nil
}

func (s *BannedWordStore) List(ctx context.Context) ([]domain.BannedWord, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx,
		`SELECT id, word, added_at FROM banned_words ORDER BY word ASC`)
	if err != nil {
		return nil, fmt.Errorf("list banned words: %w", err)
	}
	defer rows.Close()

	var words []domain.BannedWord
	for rows.Next() {
		var w domain.BannedWord
		if err := rows.Scan(&w.ID, &w.Word, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan banned word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// FlaggedContentStore is the append-only moderation log.
type FlaggedContentStore struct {
	db *sql.DB
}

func NewFlaggedContentStore(db *sql.DB) *FlaggedContentStore {
	return &FlaggedContentStore{db: db}
}

func (s *FlaggedContentStore) Append(ctx context.Context, userID int64, content string) (*domain.FlaggedContent, error) {
	var entry domain.FlaggedContent
	err := q(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO flagged_content (user_id, content) VALUES ($1, $2)
		 RETURNING id, user_id, content, flagged_at`, userID, content,
	).Scan(&entry.ID, &entry.UserID, &entry.Content, &entry.FlaggedAt)
	if err != nil {
		return nil, fmt.Errorf("append flagged content: %w", err)
	}
	return &entry, nil
}

func (s *FlaggedContentStore) List(ctx context.Context) ([]domain.FlaggedContent, error) {
	return s.list(ctx,
		`SELECT id, user_id, content, flagged_at FROM flagged_content ORDER BY flagged_at DESC`)
}

func (s *FlaggedContentStore) ListByUser(ctx context.Context, userID int64) ([]domain.FlaggedContent, error) {
	return s.list(ctx,
		`SELECT id, user_id, content, flagged_at FROM flagged_content
		 WHERE user_id = $1 ORDER BY flagged_at DESC`, userID)
}

func (s *FlaggedContentStore) list(ctx context.Context, query string, args ...any) ([]domain.FlaggedContent, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flagged content: %w", err)
	}
	defer rows.Close()

	var entries []domain.FlaggedContent
	for rows.Next() {
		var e domain.FlaggedContent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.FlaggedAt); err != nil {
			return nil, fmt.Errorf("scan flagged content: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *FlaggedContentStore) Delete(ctx context.Context, id int64) error {
	result, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM flagged_content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flagged content: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete flagged content rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("flagged content")
	}
	return nil
}
