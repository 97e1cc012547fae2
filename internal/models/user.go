package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// UserRole represents user roles in the system
type UserRole string

const (
	UserRoleProducer UserRole = "producer"
	UserRoleRecycler UserRole = "recycler"
	UserRoleBuyer    UserRole = "buyer"
	UserRoleAdmin    UserRole = "admin"
)

// User represents a user mirrored from the backend
type User struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
}

// UserSignup represents the fields required to register a user
type UserSignup struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// UserLogin represents user login data
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DisplayName returns the user's capitalized full name
func (u *User) DisplayName() string {
	name := strings.TrimSpace(Capitalize(u.FirstName) + " " + Capitalize(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// IsProducer checks if the user has the producer role
func (u *User) IsProducer() bool {
	return u.Role == UserRoleProducer
}

// Capitalize upper-cases the first letter of a word and lower-cases the rest
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
