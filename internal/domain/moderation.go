package domain

import "time"

// BannedWord is one entry of the moderation word list. Words are stored
// normalized (trimmed, lower-cased) and behave as a set.
type BannedWord struct {
	ID      int64     `json:"id"`
	Word    string    `json:"word"`
	AddedAt time.Time `json:"added_at"`
}

// FlaggedContent is an append-only moderation audit record. It is created as
// a side effect of a violation on a tracked write path and is never mutated;
// deletion is an explicit admin action.
type FlaggedContent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	FlaggedAt time.Time `json:"flagged_at"`
}
