package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	AccountBank    AccountType = "bank"
	AccountCredit  AccountType = "credit"
	AccountCash    AccountType = "cash"
	AccountSavings AccountType = "savings"
	AccountOther   AccountType = "other"
)

type (
	TransactionType string

	AccountType string

	// Category classifies transactions. Default categories are system-owned
	// and may not be edited or deleted.
	Category struct {
		ID        string
		Name      string
		Type      TransactionType
		Icon      string
		Color     string
		IsDefault bool
	}

	// Transaction is a single recorded money movement. Amount is always a
	// positive magnitude; whether it adds or subtracts is decided by Type.
	Transaction struct {
		ID              string
		Title           string
		Amount          Money
		Type            TransactionType
		TransactionDate time.Time
		Category        *Category // nil means uncategorized
	}

	// Account is a named money-holding entity. Balance is signed: a negative
	// balance is an amount owed (credit-card style debt).
	Account struct {
		ID            string
		Name          string
		Type          AccountType
		Balance       Money
		AccountNumber string
	}

	User struct {
		ID    string
		Email string
		Name  string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidType   = errors.New("invalid type")
	ErrInvalidIcon   = errors.New("icon not in palette")
	ErrInvalidColor  = errors.New("color not in palette")
)

// UncategorizedLabel is the display fallback for transactions without a category.
const UncategorizedLabel = "Uncategorized"

func (t TransactionType) IsValid() bool {
	switch t {
	case Expense, Income:
		return true
	default:
		return false
	}
}

func (t AccountType) IsValid() bool {
	switch t {
	case AccountBank, AccountCredit, AccountCash, AccountSavings, AccountOther:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.TransactionDate.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	return nil
}

// CategoryName returns the category name or the uncategorized fallback.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return UncategorizedLabel
	}
	return t.Category.Name
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !a.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.IsValid() {
		return ErrInvalidType
	}
	if !ValidIcon(c.Icon) {
		return ErrInvalidIcon
	}
	if !ValidColor(c.Color) {
		return ErrInvalidColor
	}
	return nil
}
