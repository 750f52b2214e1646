// Package bootstrap crea la primera cuenta admin desde la CLI.
package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
	"github.com/dropDatabas3/bizdesk/internal/validation"
)

var (
	ErrAdminExists    = errors.New("bootstrap: an account with this email already exists")
	ErrPasswordPolicy = errors.New("bootstrap: password does not meet policy")
)

// AdminConfig agrupa lo necesario para crear un admin.
type AdminConfig struct {
	Users   repository.UserRepository
	Policy  password.Policy
	Hashing password.Params

	Email    string
	Name     string
	Password string
}

// CreateAdmin valida y persiste una cuenta admin activa y verificada.
func CreateAdmin(ctx context.Context, cfg AdminConfig) (*repository.User, error) {
	addr := strings.ToLower(strings.TrimSpace(cfg.Email))
	if !validation.IsEmail(addr) {
		return nil, fmt.Errorf("bootstrap: invalid email %q", cfg.Email)
	}
	if ok, reasons := cfg.Policy.Validate(cfg.Password); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPasswordPolicy, password.Describe(reasons))
	}

	if _, err := cfg.Users.GetByEmail(ctx, addr); err == nil {
		return nil, ErrAdminExists
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("bootstrap: lookup: %w", err)
	}

	params := cfg.Hashing
	if params == (password.Params{}) {
		params = password.Default
	}
	hash, err := password.Hash(params, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash: %w", err)
	}

	u := &repository.User{
		Email:         addr,
		Name:          strings.TrimSpace(cfg.Name),
		PasswordHash:  &hash,
		EmailVerified: true,
		Role:          repository.RoleAdmin,
		Status:        repository.StatusActive,
	}
	if err := cfg.Users.Create(ctx, u); err != nil {
		if repository.IsConflict(err) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("bootstrap: create: %w", err)
	}
	return u, nil
}

// PromptPassword lee la password sin eco si in es una terminal; si no, lee una línea.
func PromptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Admin password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("bootstrap: passwords do not match")
	}
	return string(first), nil
}
