package repository

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/PityulevichArtyom/atm-service/internal/models"
)

// Repository persists the card set as a flat text file, one card per line:
//
//	<number> <pin> <balance> <blocked:true|false> <blockedAt|null>
//
// A set blockedAt spans two space-separated tokens ("2006-01-02 15:04:05");
// unblocked rows end with "false null".
type Repository struct {
	path string
	log  *logrus.Logger
}

// NewRepository initializes a repository over the given store file
func NewRepository(path string, log *logrus.Logger) *Repository {
	return &Repository{path: path, log: log}
}

// Load reads every card from the store file, preserving line order. A
// missing file yields an empty set; malformed lines are skipped.
func (r *Repository) Load() ([]*models.Card, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.WithField("file", r.path).Info("store file not found, starting with an empty card set")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	defer f.Close()

	var cards []*models.Card
	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		card, err := parseLine(line)
		if err != nil {
			r.log.WithFields(logrus.Fields{"file": r.path, "line": lineNo}).
				Warnf("skipping malformed record: %v", err)
			continue
		}
		cards = append(cards, card)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	return cards, nil
}

// Save rewrites the whole store file from the given cards.
func (r *Repository) Save(cards []*models.Card) error {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create store file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, c := range cards {
		if _, err := fmt.Fprintln(w, formatLine(c)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write store file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func parseLine(line string) (*models.Card, error) {
	parts := strings.Split(line, " ")
	if len(parts) < 5 {
		return nil, fmt.Errorf("expected at least 5 fields, got %d", len(parts))
	}
	balance, err := decimal.NewFromString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("bad balance %q: %w", parts[2], err)
	}
	blocked, err := strconv.ParseBool(parts[3])
	if err != nil {
		return nil, fmt.Errorf("bad blocked flag %q: %w", parts[3], err)
	}

	card := models.NewCard(parts[0], parts[1], balance)
	if blocked {
		if len(parts) < 6 || parts[4] == "null" {
			return nil, fmt.Errorf("blocked record missing block timestamp")
		}
		t, err := time.Parse(models.TimeLayout, parts[4]+" "+parts[5])
		if err != nil {
			return nil, fmt.Errorf("bad block timestamp: %w", err)
		}
		card.Blocked = true
		card.BlockedAt = &t
	}
	return card, nil
}

func formatLine(c *models.Card) string {
	if c.Blocked && c.BlockedAt != nil {
		return fmt.Sprintf("%s %s %s true %s",
			c.Number, c.PIN, c.Balance.StringFixed(2), c.BlockedAt.Format(models.TimeLayout))
	}
	return fmt.Sprintf("%s %s %s false null", c.Number, c.PIN, c.Balance.StringFixed(2))
}
