package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount      = errors.New("transaction amount must be > 0")
	ErrMissingCategory        = errors.New("transaction category is required")
	ErrMissingBudget          = errors.New("transaction budget is required")
	ErrInvalidTransactionType = errors.New("transaction type must be withdrawal or deposit")
)

// TransactionType carries the sign of a transaction; amounts are always positive.
type TransactionType string

const (
	Withdrawal TransactionType = "withdrawal"
	Deposit    TransactionType = "deposit"
)

// ParseTransactionType accepts the wire names and their labels, case-insensitive.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "withdrawal", "expense":
		return Withdrawal, nil
	case "deposit", "income":
		return Deposit, nil
	}
	return "", ErrInvalidTransactionType
}

func (t TransactionType) Valid() bool {
	return t == Withdrawal || t == Deposit
}

// Label is the user facing name of the type.
func (t TransactionType) Label() string {
	switch t {
	case Withdrawal:
		return "Expense"
	case Deposit:
		return "Income"
	}
	return string(t)
}

// Transaction represents a recorded income or expense.
type Transaction struct {
	ID         int64           `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`
	CategoryID int64           `json:"category_id"`
	BudgetID   int64           `json:"budget_id"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Withdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionInput is the body of POST /transaction.
type TransactionInput struct {
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`
	CategoryID int64           `json:"category_id"`
	BudgetID   int64           `json:"budget_id"`
	Note       string          `json:"note,omitempty"`
}

func (in TransactionInput) Validate() error {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if !in.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if in.CategoryID == 0 {
		return ErrMissingCategory
	}
	if in.BudgetID == 0 {
		return ErrMissingBudget
	}
	return nil
}

// TransactionPatch is the partial body of PATCH /transaction/{id}; nil fields
// are left untouched by the backend.
type TransactionPatch struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Type       *TransactionType `json:"type,omitempty"`
	CategoryID *int64           `json:"category_id,omitempty"`
	BudgetID   *int64           `json:"budget_id,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

func (p TransactionPatch) Validate() error {
	if p.Amount != nil && !p.Amount.GreaterThan(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if p.CategoryID != nil && *p.CategoryID == 0 {
		return ErrMissingCategory
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Type == nil && p.CategoryID == nil && p.BudgetID == nil && p.Note == nil
}
