package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for the admin password hash.
const bcryptCost = 12

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminCredentials is the single configured desk login.
// The password is held only as a bcrypt hash.
type AdminCredentials struct {
	Username     string
	PasswordHash []byte
}

// NewAdminCredentials hashes password for later comparison.
// PRE: username and password are non-empty
// POST: Returns credentials whose hash verifies password
func NewAdminCredentials(username, password string) (AdminCredentials, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return AdminCredentials{}, errors.New("admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return AdminCredentials{}, err
	}
	return AdminCredentials{Username: username, PasswordHash: hash}, nil
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Username string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Credentials AdminCredentials
}

// ExecuteLogin checks the submitted credentials against the configured admin.
// PRE: none
// POST: Returns the username on success, ErrInvalidCredentials otherwise
// INVARIANT: The password hash is always compared, so timing does not reveal a wrong username
func ExecuteLogin(_ context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(input.Username)), []byte(deps.Credentials.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(deps.Credentials.PasswordHash, []byte(input.Password))
	if input.Password == "" || !userOK || passErr != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username)
		return LoginResult{}, ErrInvalidCredentials
	}
	slog.Info("auth_event", "event", "login_success", "username", deps.Credentials.Username)
	return LoginResult{Username: deps.Credentials.Username}, nil
}
