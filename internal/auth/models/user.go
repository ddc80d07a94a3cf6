package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "familyhub/pkg/domain"
	dErrors "familyhub/pkg/domain-errors"
	"familyhub/pkg/email"
)

const (
	maxNameLength     = 100
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrUserNotFound       = dErrors.New(dErrors.CodeNotFound, "user not found")
	ErrEmailTaken         = dErrors.New(dErrors.CodeConflict, "an account already exists for this email")
	ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
)

// User is the credential-store record. Email is unique and stored normalized.
type User struct {
	ID           id.UserID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
}

// NewUser builds a user from already-normalized inputs.
func NewUser(userID id.UserID, emailAddr, firstName, lastName, passwordHash string, verified bool, now time.Time) (*User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID is required")
	}
	if emailAddr == "" || passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email and password hash are required")
	}
	return &User{
		ID:           userID,
		Email:        emailAddr,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Verified:     verified,
		CreatedAt:    now,
	}, nil
}

// Public is the projection returned to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Verified:  u.Verified,
	}
}

type PublicUser struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Verified  bool      `json:"verified"`
}

// Credential is an issued login credential.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

// NewAccount is a validated account-creation request.
type NewAccount struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Verified  bool
}

// Validate normalizes the account in place.
func (a *NewAccount) Validate() error {
	normalized, err := email.NormalizeAndValidate(a.Email)
	if err != nil {
		return err
	}
	a.Email = normalized

	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	if a.FirstName == "" {
		first, last := email.DeriveNameFromEmail(a.Email)
		a.FirstName = first
		if a.LastName == "" {
			a.LastName = last
		}
	}
	if utf8.RuneCountInString(a.FirstName) > maxNameLength || utf8.RuneCountInString(a.LastName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "names must be 100 characters or less")
	}
	return ValidatePassword(a.Password)
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return dErrors.New(dErrors.CodeValidation, "password must be at most 72 bytes")
	}
	return nil
}
