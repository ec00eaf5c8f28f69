package models

import "time"

// User is an account identified by its phone number.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Phone is the E.164 phone number, including the country code.
	Phone string
	// PasswordHash is the bcrypt hash of the password; empty until set.
	PasswordHash []byte
}

// Session is an opaque bearer token bound to a user.
type Session struct {
	Token     string
	UserID    string
	Phone     string
	ExpiresAt time.Time
}

// OTP is a pending one-time password for a phone number.
type OTP struct {
	Phone     string
	CodeHash  []byte
	ExpiresAt time.Time
}
