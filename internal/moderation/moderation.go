// Package moderation scans user-supplied text against an admin-managed banned
// word list. Matches are recorded for review but never block the write that
// triggered the scan.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

// maxRecordedContent bounds how much of the offending text is kept in the
// moderation log.
const maxRecordedContent = 500

type Service struct {
	words    storage.BannedWordStore
	flagged  storage.FlaggedContentStore
	cache    WordCache
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithCache(cache WordCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(words storage.BannedWordStore, flagged storage.FlaggedContentStore, opts ...Option) *Service {
	s := &Service{
		words:   words,
		flagged: flagged,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the banned words found in content, in list order. Matching is
// case-insensitive substring containment. Blank content never matches.
func (s *Service) Scan(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	words, err := s.bannedWords(ctx)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(content)
	var matches []string
	for _, word := range words {
		if strings.Contains(lowered, word) {
			matches = append(matches, word)
		}
	}
	return matches, nil
}

// ScanFields scans several named fields at once and returns only the fields
// with at least one hit, each keeping its own hit list.
func (s *Service) ScanFields(ctx context.Context, fields map[string]string) (map[string][]string, error) {
	hits := make(map[string][]string)
	for name, content := range fields {
		matches, err := s.Scan(ctx, content)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			hits[name] = matches
		}
	}
	return hits, nil
}

// FlagViolations scans fields and records one violation per offending field.
// Scan and recording failures are logged, never propagated: moderation must
// not break the operation it rides on.
func (s *Service) FlagViolations(ctx context.Context, userID int64, fields map[string]string) {
	hits, err := s.ScanFields(ctx, fields)
	if err != nil {
		s.logger.ErrorContext(ctx, "moderation scan failed",
			"user_id", userID,
			"error", err,
		)
		return
	}

	// Deterministic field order keeps logs and tests stable.
	names := make([]string, 0, len(hits))
	for name := range hits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s.RecordViolation(ctx, userID, name, fields[name], hits[name])
	}
}

// RecordViolation appends a flagged content entry. Best-effort: failures are
// logged and swallowed.
func (s *Service) RecordViolation(ctx context.Context, userID int64, field, content string, matches []string) {
	if len(content) > maxRecordedContent {
		content = content[:maxRecordedContent] + "..."
	}
	entry := fmt.Sprintf("[Field: %s] Banned words detected: %s | Content: %s",
		field, strings.Join(matches, ", "), content)

	if _, err := s.flagged.Append(ctx, userID, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record flagged content",
			"user_id", userID,
			"field", field,
			"error", err,
		)
		return
	}

	if s.metrics != nil {
		s.metrics.ContentFlags.Inc()
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionContentFlagged,
			UserID:    userID,
			Reason:    "field " + field,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
}

// AddWord normalizes and stores a new banned word.
func (s *Service) AddWord(ctx context.Context, word string) (*domain.BannedWord, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "word must not be blank")
	}
	entry, err := s.words.Add(ctx, normalized)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionBannedWordAdded,
			Reason:    normalized,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return entry, nil
}

// DeleteWord removes a banned word by ID.
func (s *Service) DeleteWord(ctx context.Context, id int64) error {
	if err := s.words.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionBannedWordRemoved,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return nil
}

// ListWords returns the full banned word list.
func (s *Service) ListWords(ctx context.Context) ([]domain.BannedWord, error) {
	return s.words.List(ctx)
}

// ListFlagged returns the moderation log, newest first.
func (s *Service) ListFlagged(ctx context.Context) ([]domain.FlaggedContent, error) {
	return s.flagged.List(ctx)
}

// ListFlaggedByUser returns one user's moderation log, newest first.
func (s *Service) ListFlaggedByUser(ctx context.Context, userID int64) ([]domain.FlaggedContent, error) {
	return s.flagged.ListByUser(ctx, userID)
}

// DeleteFlagged removes a reviewed moderation log entry.
func (s *Service) DeleteFlagged(ctx context.Context, id int64) error {
	return s.flagged.Delete(ctx, id)
}

// bannedWords returns the normalized word list, preferring the cache when one
// is configured. A cache failure falls through to the store.
func (s *Service) bannedWords(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if words, ok, err := s.cache.Get(ctx); err != nil {
			s.logger.WarnContext(ctx, "banned word cache read failed", "error", err)
		} else if ok {
			return words, nil
		}
	}

	entries, err := s.words.List(ctx)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(entries))
	for _, entry := range entries {
		words = append(words, entry.Word)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, words); err != nil {
			s.logger.WarnContext(ctx, "banned word cache write failed", "error", err)
		}
	}
	return words, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "banned word cache invalidation failed", "error", err)
	}
}
