package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/security"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// WriteHook is told about every new user, e.g. to drop cached aggregates.
type WriteHook func(ctx context.Context)

type Result struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Role     string
	user.Profile
}

type Service struct {
	users   UserStore
	tokens  *Manager
	onWrite WriteHook
}

func NewService(users UserStore, tokens *Manager, onWrite WriteHook) *Service {
	return &Service{users: users, tokens: tokens, onWrite: onWrite}
}

func (s *Service) Register(ctx context.Context, reg Registration) (Result, error) {
	role := reg.Role
	if role == "" {
		role = user.RoleUser
	}
	if !user.ValidRole(role) {
		return Result{}, fmt.Errorf("unknown role %q", role)
	}

	hash, err := security.HashPassword(reg.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Name:         reg.Name,
		Email:        user.NormalizeEmail(reg.Email),
		PasswordHash: hash,
		Role:         role,
		Profile:      reg.Profile,
	})
	if err != nil {
		return Result{}, err
	}

	if s.onWrite != nil {
		s.onWrite(ctx)
	}

	return s.issue(u)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (Result, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(password)
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return Result{}, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *Service) issue(u user.User) (Result, error) {
	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return Result{}, fmt.Errorf("sign token: %w", err)
	}
	return Result{User: u.Public(), Token: token}, nil
}
