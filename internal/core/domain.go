package core

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"

	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const (
	MaxDescriptionLen = 100
	MinCategoryName   = 3
	MaxCategoryName   = 50
	MinUsernameLen    = 3
	MinPasswordLen    = 6
)

type (
	// CategoryType is the ledger a category belongs to.
	CategoryType string

	// Kind tells which ledger a transaction lives in.
	Kind string

	User struct {
		ID                 string
		Username           string
		Email              string
		PasswordHash       string
		Verified           bool
		VerifyOTP          string
		VerifyOTPExpiresAt time.Time
		ResetOTP           string
		ResetOTPExpiresAt  time.Time
		CreatedAt          time.Time
	}

	// Category carries display metadata for a category name. A nil UserID
	// marks a global default visible to every user.
	Category struct {
		ID          string       `json:"id"`
		UserID      *string      `json:"userId"`
		Name        string       `json:"name"`
		Type        CategoryType `json:"type"`
		Description string       `json:"description"`
		Icon        string       `json:"icon"`
		Color       string       `json:"color"`
		IsDefault   bool         `json:"isDefault"`
		CreatedAt   time.Time    `json:"createdAt"`
	}

	// Transaction is a dated amount in either the income or expense ledger.
	// Both ledgers share the same shape.
	Transaction struct {
		ID          string    `json:"id"`
		UserID      string    `json:"userId"`
		Kind        Kind      `json:"-"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Budget caps spending for one category over an inclusive date range.
	// Amount is the running total of matching expenses.
	Budget struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Category  string    `json:"category"`
		StartDate Date      `json:"startDate"`
		EndDate   Date      `json:"endDate"`
		Limit     Money     `json:"limit"`
		Amount    Money     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// TransactionPatch lists the fields an update may change. Nil means keep.
	TransactionPatch struct {
		Amount      *Money  `json:"amount"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		Date        *Date   `json:"date"`
	}

	BudgetPatch struct {
		Category  *string `json:"category"`
		StartDate *Date   `json:"startDate"`
		EndDate   *Date   `json:"endDate"`
		Limit     *Money  `json:"limit"`
	}
)

var hexColor = regexp.MustCompile(`(?i)^#([0-9a-f]{3}){1,2}$`)

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// CategoryType is the category type a ledger's rows must use.
func (k Kind) CategoryType() CategoryType {
	return CategoryType(k)
}

// ParseKind maps a ledger name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", Invalidf("unknown ledger %q", s)
	}
	return k, nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" || c.Type == "" || strings.TrimSpace(c.Icon) == "" || strings.TrimSpace(c.Color) == "" {
		return Invalidf("all fields are required")
	}
	if n := utf8.RuneCountInString(name); n < MinCategoryName || n > MaxCategoryName {
		return Invalidf("category name must be between %d and %d characters", MinCategoryName, MaxCategoryName)
	}
	if !c.Type.Valid() {
		return Invalidf("category type must be income or expense")
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLen {
		return Invalidf("description must be at most %d characters", MaxDescriptionLen)
	}
	if !hexColor.MatchString(c.Color) {
		return Invalidf("color must be a hex value like #6b7280")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount.IsZero() || strings.TrimSpace(t.Category) == "" || t.Date.IsZero() {
		return Invalidf("all fields are required")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return Invalidf("description must be at most %d characters", MaxDescriptionLen)
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Apply returns t with the patch merged in.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" || b.StartDate.IsZero() || b.EndDate.IsZero() || b.Limit.IsZero() {
		return Invalidf("all fields are required")
	}
	if err := b.Limit.Validate(); err != nil {
		return Invalidf("limit must be greater than zero")
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return Invalidf("end date must not be before start date")
	}
	return nil
}

// Contains reports whether the budget's inclusive range covers d.
func (b Budget) Contains(d time.Time) bool {
	return !d.Before(b.StartDate.Time) && !d.After(b.EndDate.Time)
}

func (p BudgetPatch) Empty() bool {
	return p.Category == nil && p.StartDate == nil && p.EndDate == nil && p.Limit == nil
}

// Apply merges the patch into b. Amount is left untouched.
func (p BudgetPatch) Apply(b Budget) Budget {
	if p.Category != nil {
		b.Category = strings.TrimSpace(*p.Category)
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.Limit != nil {
		b.Limit = *p.Limit
	}
	return b
}

// ValidatePassword enforces the minimum password rules shared by sign-up,
// reset and change flows.
func ValidatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return Invalidf("password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
