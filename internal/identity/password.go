package identity

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length, enforced at
// registration and on every password change.
const MinPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// PasswordViolations returns every way the candidate password fails the
// strength policy, in a stable order. Empty result means the password is
// acceptable.
func PasswordViolations(password string) []string {
	var violations []string
	if len(password) < MinPasswordLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	var hasDigit, hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasDigit {
		violations = append(violations, "must contain at least one digit")
	}
	if !hasUpper {
		violations = append(violations, "must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain at least one lowercase letter")
	}
	return violations
}

// CheckPasswordStrength fails with ErrWeakPassword when the password does
// not satisfy the policy.
func CheckPasswordStrength(password string) error {
	if v := PasswordViolations(password); len(v) > 0 {
		return fmt.Errorf("%w: %s", ErrWeakPassword, v[0])
	}
	return nil
}
