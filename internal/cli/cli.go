// Package cli is the interactive menu over the card service. It only
// collects input and renders results; every business decision lives in the
// service and model layers.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PityulevichArtyom/atm-service/internal/config"
	"github.com/PityulevichArtyom/atm-service/internal/models"
	"github.com/PityulevichArtyom/atm-service/internal/service"
	"github.com/PityulevichArtyom/atm-service/internal/utils"
)

type CLI struct {
	svc    *service.Service
	in     *bufio.Scanner
	out    io.Writer
	budget *service.AuthBudget
}

// New creates a CLI bound to an input and output stream. The PIN attempt
// budget spans the whole session.
func New(svc *service.Service, cfg *config.Config, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		budget: service.NewAuthBudget(cfg.PINAttempts),
	}
}

// Run drives the menu loop until the operator types "exit" or input ends.
// After every action it runs the auto-unlock sweep and reports any cards
// it released.
func (c *CLI) Run() {
	fmt.Fprintln(c.out, "Welcome to the ATM App!")
	for {
		c.printMenu()
		input, ok := c.readLine()
		if !ok {
			return
		}
		switch input {
		case "exit":
			fmt.Fprintln(c.out, "Exiting the program.")
			return
		case "1":
			c.addCard()
		case "2":
			c.checkBalance()
		case "3":
			c.withdraw()
		case "4":
			c.deposit()
		case "5":
			c.listCards()
		default:
			fmt.Fprintln(c.out, "Invalid choice. Please enter a number (1-5) or 'exit' to quit.")
		}
		for _, number := range c.svc.UnlockExpired(time.Now()) {
			fmt.Fprintf(c.out, "Card %s has been automatically unlocked.\n", number)
		}
	}
}

func (c *CLI) printMenu() {
	fmt.Fprintln(c.out, "Select an action:")
	fmt.Fprintln(c.out, "1 - Add a card")
	fmt.Fprintln(c.out, "2 - Check balance")
	fmt.Fprintln(c.out, "3 - Withdraw funds")
	fmt.Fprintln(c.out, "4 - Deposit funds")
	fmt.Fprintln(c.out, "5 - Show all cards")
	fmt.Fprintln(c.out, "Type 'exit' to quit")
}

func (c *CLI) addCard() {
	number, ok := c.promptCardNumber()
	if !ok {
		return
	}
	pin, ok := c.prompt("Enter PIN Code (4 digits):")
	if !ok {
		return
	}
	balance, ok := c.promptAmount("Enter balance:")
	if !ok {
		return
	}
	if err := c.svc.AddCard(number, pin, balance); err != nil {
		c.renderError(number, err)
		return
	}
	fmt.Fprintln(c.out, "Card added.")
}

func (c *CLI) checkBalance() {
	number, pin, ok := c.promptCredentials()
	if !ok {
		return
	}
	balance, err := c.svc.Balance(number, pin, c.budget, c.pinSource())
	if err != nil {
		c.renderError(number, err)
		return
	}
	fmt.Fprintf(c.out, "Card balance: %s\n", balance.StringFixed(2))
}

func (c *CLI) withdraw() {
	number, pin, ok := c.promptCredentials()
	if !ok {
		return
	}
	amount, ok := c.promptAmount("Enter amount to withdraw:")
	if !ok {
		return
	}
	balance, err := c.svc.Withdraw(number, pin, amount, c.budget, c.pinSource())
	if err != nil {
		c.renderError(number, err)
		return
	}
	fmt.Fprintf(c.out, "Withdrawal successful. New balance: %s\n", balance.StringFixed(2))
}

func (c *CLI) deposit() {
	number, pin, ok := c.promptCredentials()
	if !ok {
		return
	}
	amount, ok := c.promptAmount("Enter amount to deposit (up to 1,000,000):")
	if !ok {
		return
	}
	balance, err := c.svc.Deposit(number, pin, amount, c.budget, c.pinSource())
	if err != nil {
		c.renderError(number, err)
		return
	}
	fmt.Fprintf(c.out, "Deposit successful. New balance: %s\n", balance.StringFixed(2))
}

func (c *CLI) listCards() {
	for _, line := range c.svc.ListCards() {
		fmt.Fprintln(c.out, line)
	}
}

func (c *CLI) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *CLI) prompt(msg string) (string, bool) {
	fmt.Fprintln(c.out, msg)
	return c.readLine()
}

// promptCardNumber validates the number format before any PIN is asked for.
func (c *CLI) promptCardNumber() (string, bool) {
	number, ok := c.prompt("Enter card number (format XXXX-XXXX-XXXX-XXXX):")
	if !ok {
		return "", false
	}
	if !utils.ValidCardNumber(number) {
		fmt.Fprintln(c.out, "Invalid card number format. It should be in the format XXXX-XXXX-XXXX-XXXX.")
		return "", false
	}
	return number, true
}

func (c *CLI) promptCredentials() (number, pin string, ok bool) {
	number, ok = c.promptCardNumber()
	if !ok {
		return "", "", false
	}
	pin, ok = c.prompt("Enter PIN Code:")
	if !ok {
		return "", "", false
	}
	return number, pin, true
}

// promptAmount aborts the action on malformed numeric input, leaving all
// state untouched.
func (c *CLI) promptAmount(msg string) (decimal.Decimal, bool) {
	raw, ok := c.prompt(msg)
	if !ok {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Fprintln(c.out, "Invalid input. Please enter a valid number.")
		return decimal.Zero, false
	}
	return amount, true
}

// pinSource feeds the service's retry loop from the operator, announcing
// the remaining session attempts before each blocking read.
func (c *CLI) pinSource() service.PinSource {
	return func(attemptsLeft int) (string, error) {
		fmt.Fprintf(c.out, "Invalid PIN Code. Attempts left: %d\n", attemptsLeft)
		pin, ok := c.readLine()
		if !ok {
			return "", io.EOF
		}
		return pin, nil
	}
}

func (c *CLI) renderError(number string, err error) {
	switch {
	case errors.Is(err, models.ErrCardNotFound):
		fmt.Fprintln(c.out, "Card not found.")
	case errors.Is(err, models.ErrCardBlocked):
		fmt.Fprintf(c.out, "Card %s is blocked. Contact customer support.\n", number)
	case errors.Is(err, models.ErrInsufficientFunds):
		fmt.Fprintln(c.out, "Insufficient funds.")
	case errors.Is(err, models.ErrInvalidAmount):
		fmt.Fprintln(c.out, "Invalid amount. Please enter a positive number.")
	case errors.Is(err, models.ErrInvalidCardNumber):
		fmt.Fprintln(c.out, "Invalid card number format. It should be in the format XXXX-XXXX-XXXX-XXXX.")
	case errors.Is(err, models.ErrInvalidPIN):
		fmt.Fprintln(c.out, "PIN Code must be exactly 4 digits.")
	case errors.Is(err, models.ErrDuplicateCard):
		fmt.Fprintln(c.out, "Card with this number already exists.")
	default:
		fmt.Fprintf(c.out, "Operation failed: %v\n", err)
	}
}
