// Package validate holds the input rules shared by the client and the server
// for phone numbers, passwords and one-time codes.
package validate

import (
	"errors"
	"strings"
)

const (
	// PhoneDigits is the length of a national phone number.
	PhoneDigits = 10
	// OTPDigits is the length of a one-time code.
	OTPDigits = 6
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxPasswordLength is the longest password bcrypt can hash, in bytes.
	MaxPasswordLength = 72
)

var (
	ErrPhone            = errors.New("please enter a valid 10-digit phone number")
	ErrOTP              = errors.New("please enter the 6-digit OTP")
	ErrPassword         = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyFields      = errors.New("please fill in all fields")
)

// Phone checks that phone is exactly ten ASCII digits.
// The country code is prefixed separately.
func Phone(phone string) error {
	if !digits(phone, PhoneDigits) {
		return ErrPhone
	}
	return nil
}

// OTP checks that code is exactly six ASCII digits.
func OTP(code string) error {
	if !digits(code, OTPDigits) {
		return ErrOTP
	}
	return nil
}

// Password checks the password length bounds. Length is counted in bytes.
func Password(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// NewPassword checks a password and its confirmation.
func NewPassword(password, confirm string) error {
	if err := Password(password); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Credentials validates a sign-in attempt.
func Credentials(phone, password string) error {
	if strings.TrimSpace(phone) == "" || password == "" {
		return ErrEmptyFields
	}
	if err := Phone(phone); err != nil {
		return err
	}
	return Password(password)
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
