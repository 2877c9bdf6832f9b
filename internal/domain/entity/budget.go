package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency = errors.New("currency must be one of USD, EUR, UAH")
	ErrNegativeAmount  = errors.New("budget amount must not be negative")
)

// Currency is the ISO code of a budget currency accepted by the backend.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyUAH Currency = "UAH"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyUAH}

// ParseCurrency normalizes a user supplied currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, nil
		}
	}
	return "", ErrInvalidCurrency
}

// Budget represents the single active budget of a user.
type Budget struct {
	ID       int64           `json:"id"`
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetInput is the body of POST /budget.
type BudgetInput struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func (in BudgetInput) Validate() error {
	if _, err := ParseCurrency(string(in.Currency)); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// BudgetHistoryEntry is one point of the balance history, ordered by CreatedAt.
type BudgetHistoryEntry struct {
	CreatedAt time.Time       `json:"created_at"`
	Balance   decimal.Decimal `json:"balance"`
}

// LatestBalance returns the balance of the last history entry, or zero.
func LatestBalance(history []BudgetHistoryEntry) decimal.Decimal {
	if len(history) == 0 {
		return decimal.Zero
	}
	return history[len(history)-1].Balance
}
