package customer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Column widths of the customers table, counted in characters.
const (
	MaxNameLength  = 255
	MaxPhoneLength = 32
	MaxEmailLength = 320
)

// Customer is one customer record. Empty Phone, Email or Address means the
// value is absent.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	TaskID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer trims every field, rejects a blank name and rejects values
// wider than their column.
func NewCustomer(name, phone, email, address string) (Customer, error) {
	c := Customer{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Email:   strings.TrimSpace(email),
		Address: strings.TrimSpace(address),
	}
	if c.Name == "" {
		return Customer{}, ErrNameRequired
	}
	if err := checkLength("name", c.Name, MaxNameLength); err != nil {
		return Customer{}, err
	}
	if err := checkLength("phone", c.Phone, MaxPhoneLength); err != nil {
		return Customer{}, err
	}
	if err := checkLength("email", c.Email, MaxEmailLength); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func checkLength(field, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return fmt.Errorf("%w: %s has %d characters, limit %d", ErrFieldTooLong, field, n, max)
	}
	return nil
}

type SearchFilter struct {
	Name        string
	Phone       string
	Email       string
	Address     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	TaskID      string
	Page        int
	Size        int
}

type CustomerPage struct {
	Items []Customer
	Total int64
	Page  int
	Size  int
}
