package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/PityulevichArtyom/atm-service/internal/config"
	"github.com/PityulevichArtyom/atm-service/internal/models"
	"github.com/PityulevichArtyom/atm-service/internal/repository"
	"github.com/PityulevichArtyom/atm-service/internal/utils"
)

// Service is the card store: it owns the in-memory card set, orchestrates
// lookup and PIN authentication, runs the auto-unlock sweep, and keeps the
// flat-file representation in sync after every mutation.
//
// Cards are held in a slice plus an index map so listing order is always
// insertion/load order.
type Service struct {
	mu      sync.Mutex
	cards   []*models.Card
	index   map[string]*models.Card
	repo    *repository.Repository
	log     *logrus.Logger
	config  *config.Config
	session uuid.UUID
	now     func() time.Time
}

// NewService loads the persisted card set and initializes the store.
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) (*Service, error) {
	cards, err := repo.Load()
	if err != nil {
		return nil, err
	}
	s := &Service{
		cards:   cards,
		index:   make(map[string]*models.Card, len(cards)),
		repo:    repo,
		log:     log,
		config:  cfg,
		session: uuid.New(),
		now:     time.Now,
	}
	for _, c := range cards {
		s.index[c.Number] = c
	}
	s.log.WithFields(logrus.Fields{"session": s.session, "cards": len(cards)}).Info("card store loaded")
	return s, nil
}

// AddCard validates and appends a new card, then persists the store.
func (s *Service) AddCard(number, pin string, balance decimal.Decimal) error {
	if !utils.ValidCardNumber(number) {
		return models.ErrInvalidCardNumber
	}
	if !utils.ValidPIN(pin) {
		return models.ErrInvalidPIN
	}
	if balance.Sign() < 0 {
		return models.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[number]; ok {
		return models.ErrDuplicateCard
	}
	card := models.NewCard(number, pin, balance)
	s.cards = append(s.cards, card)
	s.index[number] = card
	s.logOp("add_card", number).Info("card added")
	s.persist()
	return nil
}

// Balance authenticates and returns the card's current balance.
func (s *Service) Balance(number, pin string, budget *AuthBudget, next PinSource) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.lookupActive(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.authenticate(card, pin, budget, next); err != nil {
		return decimal.Zero, err
	}
	return card.Balance, nil
}

// Withdraw authenticates, removes amount from the card and persists.
// Returns the new balance.
func (s *Service) Withdraw(number, pin string, amount decimal.Decimal, budget *AuthBudget, next PinSource) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.lookupActive(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.authenticate(card, pin, budget, next); err != nil {
		return decimal.Zero, err
	}
	if err := card.Withdraw(amount); err != nil {
		return decimal.Zero, err
	}
	s.logOp("withdraw", number).WithField("amount", amount.StringFixed(2)).Info("withdrawal successful")
	s.persist()
	return card.Balance, nil
}

// Deposit authenticates, adds amount to the card and persists. Returns the
// new balance.
func (s *Service) Deposit(number, pin string, amount decimal.Decimal, budget *AuthBudget, next PinSource) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.lookupActive(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.authenticate(card, pin, budget, next); err != nil {
		return decimal.Zero, err
	}
	if err := card.Deposit(amount); err != nil {
		return decimal.Zero, err
	}
	s.logOp("deposit", number).WithField("amount", amount.StringFixed(2)).Info("deposit successful")
	s.persist()
	return card.Balance, nil
}

// ListCards returns the listing form of every card in insertion/load order.
func (s *Service) ListCards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c.String())
	}
	return out
}

// UnlockExpired unblocks every card whose lockout window has elapsed at
// now and persists the store when at least one card changed. It returns
// the unlocked card numbers for rendering. The CLI calls it after every
// operator action.
func (s *Service) UnlockExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unlocked []string
	for _, c := range s.cards {
		if c.IsUnlockable(now) {
			c.Unlock()
			unlocked = append(unlocked, c.Number)
			s.logOp("unlock", c.Number).Info("card automatically unlocked")
		}
	}
	if len(unlocked) > 0 {
		s.persist()
	}
	return unlocked
}

// lookupActive finds a card and rejects blocked ones before any PIN
// prompting happens.
func (s *Service) lookupActive(number string) (*models.Card, error) {
	card, ok := s.index[number]
	if !ok {
		return nil, models.ErrCardNotFound
	}
	if card.Blocked {
		return nil, models.ErrCardBlocked
	}
	return card, nil
}

// authenticate runs the PIN retry sequence against card. Every wrong
// candidate advances the card's own attempt counter and spends one session
// attempt; the sequence ends as soon as a candidate matches or the card
// blocks, whichever counter trips first.
func (s *Service) authenticate(card *models.Card, pin string, budget *AuthBudget, next PinSource) error {
	for {
		if card.CheckPIN(pin, s.now()) {
			return nil
		}
		budget.Remaining--
		if card.Blocked {
			s.logOp("auth", card.Number).Warn("card blocked after too many incorrect pin attempts")
			s.persist()
			return models.ErrCardBlocked
		}
		s.logOp("auth", card.Number).WithField("attempts_left", budget.Remaining).Warn("incorrect pin")
		if budget.Exhausted() {
			card.ForceBlock(s.now())
			s.logOp("auth", card.Number).Warn("card blocked, session attempt budget exhausted")
			s.persist()
			return models.ErrCardBlocked
		}
		if next == nil {
			return fmt.Errorf("pin retry requires a pin source")
		}
		var err error
		pin, err = next(budget.Remaining)
		if err != nil {
			return err
		}
	}
}

// persist flushes the store. A write failure leaves the in-memory state
// valid, so it is logged and the operation proceeds.
func (s *Service) persist() {
	if err := s.repo.Save(s.cards); err != nil {
		s.log.WithField("session", s.session).Errorf("failed to persist card store: %v", err)
	}
}

func (s *Service) logOp(op, number string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"session": s.session,
		"op":      op,
		"card":    utils.MaskCardNumber(number),
	})
}
