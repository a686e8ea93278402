// Package auth holds the shared admin password check.
//
// The gate is a local convenience lock, not a security boundary: the
// password lives in configuration and nothing is sent anywhere.
package auth

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// DefaultPassword is accepted when no password or hash is configured.
const DefaultPassword = "admin123"

var (
	// ErrIncorrectPassword is returned for a wrong admin password.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Gate verifies the admin password. A bcrypt hash takes precedence over a
// plain password.
type Gate struct {
	password string
	hash     string
}

// NewGate builds a gate from a plain password and an optional bcrypt hash.
// An empty password with no hash falls back to DefaultPassword.
func NewGate(password, hash string) *Gate {
	hash = strings.TrimSpace(hash)
	if password == "" && hash == "" {
		password = DefaultPassword
	}
	return &Gate{password: password, hash: hash}
}

// UsesHash reports whether the gate checks against a bcrypt hash.
func (g *Gate) UsesHash() bool {
	return g.hash != ""
}

// Check returns nil when candidate matches the configured password.
func (g *Gate) Check(candidate string) error {
	if g.hash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(candidate))
		if err == nil {
			return nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrIncorrectPassword
		}
		return fmt.Errorf("verify password: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(g.password), []byte(candidate)) == 1 {
		return nil
	}
	return ErrIncorrectPassword
}

// HashPassword returns a bcrypt hash suitable for the admin_password_hash
// setting.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// readPasswordFunc reads a line without echo.
var readPasswordFunc = term.ReadPassword

// ReadPassword prints prompt to out and reads a password from in. Echo is
// disabled when in is a terminal; otherwise one line is read.
func ReadPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(out, prompt)
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pwd, err := readPasswordFunc(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pwd), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
