package moderation

import (
	"context"
	"strings"
	"testing"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eima40x4c/CampusCard/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.FlaggedContentStore) {
	t.Helper()
	words := memory.NewBannedWordStore()
	flagged := memory.NewFlaggedContentStore()
	return New(words, flagged), flagged
}

func addWords(t *testing.T, svc *Service, words ...string) {
	t.Helper()
	for _, w := range words {
		_, err := svc.AddWord(context.Background(), w)
		require.NoError(t, err)
	}
}

func Test_Scan_CaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "banned")

	matches, err := svc.Scan(context.Background(), "This has a BaNnEd word")
	require.NoError(t, err)
	assert.Equal(t, []string{"banned"}, matches)
}

func Test_Scan_CleanText(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "banned")

	matches, err := svc.Scan(context.Background(), "clean text")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func Test_Scan_BlankInput(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "banned")

	for _, input := range []string{"", "   ", "\t\n"} {
		matches, err := svc.Scan(context.Background(), input)
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func Test_Scan_PartialWordMatches(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "ass")

	matches, err := svc.Scan(context.Background(), "attending class today")
	require.NoError(t, err)
	assert.Equal(t, []string{"ass"}, matches)
}

func Test_Scan_MultipleHits(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "spam", "scam")

	matches, err := svc.Scan(context.Background(), "this SPAM is a scam")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"spam", "scam"}, matches)
}

func Test_ScanFields_OnlyOffendingFields(t *testing.T) {
	svc, _ := newTestService(t)
	addWords(t, svc, "spam")

	hits, err := svc.ScanFields(context.Background(), map[string]string{
		"bio":       "I love spam",
		"interests": "hiking, chess",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"spam"}, hits["bio"])
}

func Test_FlagViolations_RecordsPerField(t *testing.T) {
	svc, flagged := newTestService(t)
	addWords(t, svc, "spam")

	svc.FlagViolations(context.Background(), 7, map[string]string{
		"bio":       "spam here",
		"interests": "spam there",
	})

	entries, err := flagged.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Contains(t, entry.Content, "Banned words detected: spam")
	}
}

func Test_RecordViolation_MessageFormat(t *testing.T) {
	svc, flagged := newTestService(t)

	svc.RecordViolation(context.Background(), 3, "bio", "some spam content", []string{"spam", "scam"})

	entries, err := flagged.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t,
		"[Field: bio] Banned words detected: spam, scam | Content: some spam content",
		entries[0].Content)
}

func Test_RecordViolation_TruncatesLongContent(t *testing.T) {
	svc, flagged := newTestService(t)

	long := strings.Repeat("x", 800)
	svc.RecordViolation(context.Background(), 3, "bio", long, []string{"spam"})

	entries, err := flagged.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Content, strings.Repeat("x", 500)+"...")
	assert.NotContains(t, entries[0].Content, strings.Repeat("x", 501))
}

func Test_AddWord_Normalizes(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.AddWord(context.Background(), "  SpAm  ")
	require.NoError(t, err)
	assert.Equal(t, "spam", entry.Word)
}

func Test_AddWord_DuplicateAfterNormalization(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddWord(context.Background(), "Spam")
	require.NoError(t, err)

	_, err = svc.AddWord(context.Background(), "spam")
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func Test_AddWord_Blank(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddWord(context.Background(), "   ")
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_DeleteWord_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteWord(context.Background(), 99)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func Test_DeleteWord_RemovesFromScans(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.AddWord(context.Background(), "spam")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWord(context.Background(), entry.ID))

	matches, err := svc.Scan(context.Background(), "spam everywhere")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
