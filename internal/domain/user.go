package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type UserType string

const (
	UserTypeIndividual UserType = "individual"
	UserTypeBusiness   UserType = "business"
)

// ParseUserType accepts both the long names and the PF/PJ shorthand.
func ParseUserType(s string) (UserType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual", "pf":
		return UserTypeIndividual, true
	case "business", "pj":
		return UserTypeBusiness, true
	}
	return "", false
}

var documentPattern = regexp.MustCompile(`^(\d{11}|\d{14})$`)

// User is an account holder. Balance is only changed by settlement.
type User struct {
	ID        int64
	Name      string
	Email     string
	Document  string
	Type      UserType
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) CanSend() bool {
	return u.Type == UserTypeIndividual
}

func (u *User) HasSufficientFunds(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Validate checks the fields supplied on registration.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidUser
	}
	if !documentPattern.MatchString(u.Document) {
		return ErrInvalidUser
	}
	if u.Type != UserTypeIndividual && u.Type != UserTypeBusiness {
		return ErrInvalidUser
	}
	if u.Balance.IsNegative() || !u.Balance.Equal(u.Balance.Truncate(MoneyScale)) {
		return ErrInvalidUser
	}
	return nil
}
