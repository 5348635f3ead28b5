package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// BannedWordStore holds the normalized word set.
type BannedWordStore struct {
	mu     sync.Mutex
	nextID int64
	byWord map[string]domain.BannedWord
}

func NewBannedWordStore() *BannedWordStore {
	return &BannedWordStore{nextID: 1, byWord: make(map[string]domain.BannedWord)}
}

func (s *BannedWordStore) Add(_ context.Context, word string) (*domain.BannedWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byWord[word]; exists {
		return nil, dErrors.New(dErrors.CodeConflict, "word already in banned list")
	}
	entry := domain.BannedWord{ID: s.nextID, Word: word, AddedAt: time.Now()}
	s.nextID++
	s.byWord[word] = entry
	return &entry, nil
}

func (s *BannedWordStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for word, entry := range s.byWord {
		if entry.ID == id {
			delete(s.byWord, word)
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "banned word not found")
}

func (s *BannedWordStore) List(_ context.Context) ([]domain.BannedWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BannedWord, 0, len(s.byWord))
	for _, entry := range s.byWord {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}

// FlaggedContentStore is the append-only moderation log.
type FlaggedContentStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.FlaggedContent
}

func NewFlaggedContentStore() *FlaggedContentStore {
	return &FlaggedContentStore{nextID: 1}
}

func (s *FlaggedContentStore) Append(_ context.Context, userID int64, content string) (*domain.FlaggedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := domain.FlaggedContent{ID: s.nextID, UserID: userID, Content: content, FlaggedAt: time.Now()}
	s.nextID++
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *FlaggedContentStore) List(_ context.Context) ([]domain.FlaggedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.FlaggedContent, len(s.entries))
	copy(out, s.entries)
	// Newest first, matching the admin review ordering of the SQL store.
	sort.Slice(out, func(i, j int) bool { return out[i].FlaggedAt.After(out[j].FlaggedAt) })
	return out, nil
}

func (s *FlaggedContentStore) ListByUser(_ context.Context, userID int64) ([]domain.FlaggedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.FlaggedContent
	for _, entry := range s.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FlaggedAt.After(out[j].FlaggedAt) })
	return out, nil
}

func (s *FlaggedContentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "flagged content not found")
}
