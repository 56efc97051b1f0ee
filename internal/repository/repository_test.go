package repository

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PityulevichArtyom/atm-service/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRepository(filepath.Join(t.TempDir(), "cards.txt"), log)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	cards, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	active := models.NewCard("1234-5678-9012-3456", "0000", decimal.RequireFromString("100.50"))
	blocked := models.NewCard("1111-2222-3333-4444", "4321", decimal.NewFromInt(7))
	blocked.ForceBlock(time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC))

	require.NoError(t, repo.Save([]*models.Card{active, blocked}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	got := loaded[0]
	assert.Equal(t, active.Number, got.Number)
	assert.Equal(t, active.PIN, got.PIN)
	assert.True(t, got.Balance.Equal(active.Balance))
	assert.False(t, got.Blocked)
	assert.Nil(t, got.BlockedAt)

	got = loaded[1]
	assert.Equal(t, blocked.Number, got.Number)
	assert.True(t, got.Blocked)
	require.NotNil(t, got.BlockedAt)
	assert.True(t, got.BlockedAt.Equal(*blocked.BlockedAt), "blockedAt survives to the second")
}

func TestSaveFormat(t *testing.T) {
	repo := newTestRepo(t)

	active := models.NewCard("1234-5678-9012-3456", "0000", decimal.NewFromInt(100))
	blocked := models.NewCard("1111-2222-3333-4444", "4321", decimal.RequireFromString("0.5"))
	blocked.ForceBlock(time.Date(2024, 3, 1, 10, 30, 15, 0, time.UTC))

	require.NoError(t, repo.Save([]*models.Card{active, blocked}))

	raw, err := os.ReadFile(repo.path)
	require.NoError(t, err)
	assert.Equal(t,
		"1234-5678-9012-3456 0000 100.00 false null\n"+
			"1111-2222-3333-4444 4321 0.50 true 2024-03-01 10:30:15\n",
		string(raw))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	repo := newTestRepo(t)
	content := "1234-5678-9012-3456 0000 100.00 false null\n" +
		"too few fields\n" +
		"1111-2222-3333-4444 4321 notanumber false null\n" +
		"2222-3333-4444-5555 1111 50.00 maybe null\n" +
		"3333-4444-5555-6666 2222 50.00 true null\n" +
		"4444-5555-6666-7777 3333 50.00 true 2024-13-99 99:99:99\n" +
		"5555-6666-7777-8888 9999 25.00 false null\n"
	require.NoError(t, os.WriteFile(repo.path, []byte(content), 0o644))

	cards, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "1234-5678-9012-3456", cards[0].Number)
	assert.Equal(t, "5555-6666-7777-8888", cards[1].Number)
}

func TestLoadAcceptsLegacyBalanceRendering(t *testing.T) {
	repo := newTestRepo(t)
	// Older store files rendered balances without a fixed scale.
	require.NoError(t, os.WriteFile(repo.path, []byte("1234-5678-9012-3456 0000 100.0 false null\n"), 0o644))

	cards, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.True(t, cards[0].Balance.Equal(decimal.NewFromInt(100)))
}
