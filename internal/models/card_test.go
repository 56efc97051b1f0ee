package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCard(balance int64) *Card {
	return NewCard("1234-5678-9012-3456", "0000", decimal.NewFromInt(balance))
}

func TestCheckPINBlocksAfterThreeFailures(t *testing.T) {
	card := newTestCard(100)
	now := time.Now()

	for i := 1; i <= 2; i++ {
		assert.False(t, card.CheckPIN("9999", now))
		assert.False(t, card.Blocked)
		assert.Equal(t, i, card.FailedAttempts)
	}

	assert.False(t, card.CheckPIN("9999", now))
	assert.True(t, card.Blocked)
	assert.Equal(t, 0, card.FailedAttempts)
	require.NotNil(t, card.BlockedAt)
	assert.Equal(t, now, *card.BlockedAt)
}

func TestCheckPINSuccessResetsCounter(t *testing.T) {
	card := newTestCard(100)
	now := time.Now()

	assert.False(t, card.CheckPIN("9999", now))
	assert.False(t, card.CheckPIN("9999", now))
	assert.True(t, card.CheckPIN("0000", now))
	assert.Equal(t, 0, card.FailedAttempts)

	// The earlier failures no longer count toward a block.
	assert.False(t, card.CheckPIN("9999", now))
	assert.False(t, card.CheckPIN("9999", now))
	assert.False(t, card.Blocked)
}

func TestBlockedCardIsInert(t *testing.T) {
	card := newTestCard(100)
	now := time.Now()
	card.ForceBlock(now)

	assert.False(t, card.CheckPIN("0000", now))
	assert.Equal(t, 0, card.FailedAttempts)

	err := card.Withdraw(decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrCardBlocked)
	err = card.Deposit(decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrCardBlocked)
	assert.True(t, card.Balance.Equal(decimal.NewFromInt(100)))
}

func TestWithdraw(t *testing.T) {
	card := newTestCard(100)

	err := card.Withdraw(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	err = card.Withdraw(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = card.Withdraw(decimal.NewFromInt(101))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, card.Balance.Equal(decimal.NewFromInt(100)))

	require.NoError(t, card.Withdraw(decimal.NewFromInt(30)))
	assert.True(t, card.Balance.Equal(decimal.NewFromInt(70)))
}

func TestDepositCeiling(t *testing.T) {
	card := newTestCard(0)

	err := card.Deposit(decimal.NewFromInt(1_000_001))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, card.Balance.IsZero())

	require.NoError(t, card.Deposit(decimal.NewFromInt(1_000_000)))
	assert.True(t, card.Balance.Equal(decimal.NewFromInt(1_000_000)))
}

func TestIsUnlockable(t *testing.T) {
	card := newTestCard(100)
	now := time.Now()

	assert.False(t, card.IsUnlockable(now), "active card is never unlockable")

	card.ForceBlock(now)
	assert.False(t, card.IsUnlockable(now.Add(UnlockAfter-time.Second)))
	assert.True(t, card.IsUnlockable(now.Add(UnlockAfter)))
	assert.True(t, card.IsUnlockable(now.Add(48*time.Hour)))
}

func TestUnlockIsIdempotent(t *testing.T) {
	card := newTestCard(100)
	card.ForceBlock(time.Now())

	card.Unlock()
	assert.False(t, card.Blocked)
	assert.Nil(t, card.BlockedAt)
	assert.Equal(t, 0, card.FailedAttempts)

	card.Unlock()
	assert.False(t, card.Blocked)
	assert.Nil(t, card.BlockedAt)
}

func TestString(t *testing.T) {
	card := newTestCard(100)
	assert.Equal(t, "Card: 1234-5678-9012-3456, PIN Code: 0000, Balance: 100.00, Not blocked", card.String())

	blockedAt := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	card.ForceBlock(blockedAt)
	assert.Equal(t, "Card: 1234-5678-9012-3456, PIN Code: 0000, Balance: 100.00, Blocked since 2024-03-01 10:30:00", card.String())
}
