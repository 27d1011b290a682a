package auth

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the floor enforced by the default policy.
var MinPasswordLength = 8

// commonPasswords is a small deny list of passwords seen in every breach
// corpus. Hosts wanting a real list can plug their own PasswordValidator.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"letmein123": {},
	"admin123":   {},
	"welcome1":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"dragon123":  {},
	"monkey123":  {},
}

// DefaultPasswordPolicy rejects short, all-numeric, and commonly breached
// passwords.
func DefaultPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	if isAllNumeric(password) {
		return ErrWeakPassword
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		return ErrWeakPassword
	}

	return nil
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
