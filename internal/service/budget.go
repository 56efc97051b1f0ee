package service

// AuthBudget is the session-scoped count of PIN attempts left. It is
// created once per operator session and threaded through every
// authenticated call; it is not reset between operations, so attempts
// spent on one card count against the whole session. Exhausting it
// force-blocks the card being authenticated.
type AuthBudget struct {
	Remaining int
}

// NewAuthBudget creates a budget of the given number of attempts.
func NewAuthBudget(attempts int) *AuthBudget {
	return &AuthBudget{Remaining: attempts}
}

// Exhausted reports whether no attempts remain.
func (b *AuthBudget) Exhausted() bool {
	return b.Remaining <= 0
}

// PinSource supplies replacement PIN candidates during a retry sequence.
// It receives the number of session attempts left, so the caller can show
// it to the operator before the blocking read.
type PinSource func(attemptsLeft int) (string, error)
