package ledger

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrWrongPassword = errors.New("wrong master password")

	ErrInvalidEntryType     = errors.New("invalid entry type")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrCategoryTypeMismatch = errors.New("transaction type does not match category type")

	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSameAccount          = errors.New("source and destination accounts are the same")
	ErrCrossProfileTransfer = errors.New("accounts belong to different profiles")
)
