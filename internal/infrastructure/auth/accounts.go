package auth

import (
	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	Username     string
	PasswordHash string
	Role         string
}

// Accounts checks passwords against the configured bcrypt hashes.
type Accounts struct {
	byName map[string]Account
}

func NewAccounts(accounts []Account) *Accounts {
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if a.Role == "" {
			a.Role = RoleViewer
		}
		byName[a.Username] = a
	}
	return &Accounts{byName: byName}
}

// Authenticate returns the account role when the password matches.
func (a *Accounts) Authenticate(username, password string) (string, error) {
	account, ok := a.byName[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return account.Role, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
