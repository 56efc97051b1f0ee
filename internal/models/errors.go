package models

import "errors"

// Domain errors. Business-rule failures are reported through these
// sentinels and never escape the service layer as anything else; the CLI
// maps them to operator-facing messages.
var (
	ErrInvalidCardNumber = errors.New("invalid card number format")
	ErrInvalidPIN        = errors.New("pin code must be exactly 4 digits")
	ErrDuplicateCard     = errors.New("card with this number already exists")
	ErrCardNotFound      = errors.New("card not found")
	ErrCardBlocked       = errors.New("card is blocked")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
