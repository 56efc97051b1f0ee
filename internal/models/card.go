package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxPINAttempts is the number of consecutive wrong PIN entries that
	// blocks a card.
	MaxPINAttempts = 3

	// UnlockAfter is how long a blocked card stays blocked before the
	// auto-unlock sweep may release it.
	UnlockAfter = 24 * time.Hour

	// TimeLayout is the rendering of block timestamps in the flat store
	// and in card listings.
	TimeLayout = "2006-01-02 15:04:05"
)

// DepositCeiling caps a single deposit operation.
var DepositCeiling = decimal.NewFromInt(1_000_000)

// Card represents a single card account. It owns its own PIN-attempt and
// lock state: three consecutive wrong PIN entries block the card, a
// successful entry resets the counter.
type Card struct {
	Number         string
	PIN            string
	Balance        decimal.Decimal
	Blocked        bool
	FailedAttempts int
	BlockedAt      *time.Time
}

// NewCard creates an unblocked card with the given balance.
func NewCard(number, pin string, balance decimal.Decimal) *Card {
	return &Card{Number: number, PIN: pin, Balance: balance}
}

// CheckPIN verifies a PIN candidate. A blocked card always fails without
// any state change. A match resets the attempt counter; the third
// consecutive mismatch blocks the card at now.
func (c *Card) CheckPIN(candidate string, now time.Time) bool {
	if c.Blocked {
		return false
	}
	if candidate == c.PIN {
		c.FailedAttempts = 0
		return true
	}
	c.FailedAttempts++
	if c.FailedAttempts >= MaxPINAttempts {
		c.block(now)
	}
	return false
}

// Withdraw removes amount from the balance. Fails without touching the
// card when the amount is not positive, the card is blocked, or funds are
// insufficient.
func (c *Card) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if c.Blocked {
		return ErrCardBlocked
	}
	if amount.GreaterThan(c.Balance) {
		return ErrInsufficientFunds
	}
	c.Balance = c.Balance.Sub(amount)
	return nil
}

// Deposit adds amount to the balance. A single deposit may not exceed
// DepositCeiling.
func (c *Card) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 || amount.GreaterThan(DepositCeiling) {
		return ErrInvalidAmount
	}
	if c.Blocked {
		return ErrCardBlocked
	}
	c.Balance = c.Balance.Add(amount)
	return nil
}

// IsUnlockable reports whether the card is blocked and its lockout window
// has elapsed at now.
func (c *Card) IsUnlockable(now time.Time) bool {
	return c.Blocked && c.BlockedAt != nil && now.Sub(*c.BlockedAt) >= UnlockAfter
}

// Unlock returns the card to the active state with a fresh attempt
// counter. Idempotent.
func (c *Card) Unlock() {
	c.Blocked = false
	c.FailedAttempts = 0
	c.BlockedAt = nil
}

// ForceBlock blocks the card at now regardless of its attempt counter.
func (c *Card) ForceBlock(now time.Time) {
	c.block(now)
}

func (c *Card) block(now time.Time) {
	c.Blocked = true
	c.FailedAttempts = 0
	t := now
	c.BlockedAt = &t
}

// String renders the listing form of the card.
func (c *Card) String() string {
	if c.Blocked && c.BlockedAt != nil {
		return fmt.Sprintf("Card: %s, PIN Code: %s, Balance: %s, Blocked since %s",
			c.Number, c.PIN, c.Balance.StringFixed(2), c.BlockedAt.Format(TimeLayout))
	}
	return fmt.Sprintf("Card: %s, PIN Code: %s, Balance: %s, Not blocked",
		c.Number, c.PIN, c.Balance.StringFixed(2))
}
