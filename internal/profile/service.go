package profile

import (
	"context"
	"errors"

	"github.com/geocoder89/profilehub/internal/domain/user"
)

// ErrForbidden means the caller tried to edit a profile that is not theirs.
// Roles do not matter here: an admin cannot edit someone else either.
var ErrForbidden = errors.New("you can modify only your own profile")

type Store interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, patch user.Patch) (user.User, error)
}

type Service struct {
	users   Store
	onWrite func(ctx context.Context)
}

func NewService(users Store, onWrite func(ctx context.Context)) *Service {
	return &Service{users: users, onWrite: onWrite}
}

func (s *Service) GetOwn(ctx context.Context, callerID string) (user.User, error) {
	u, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return user.User{}, err
	}
	return u.Public(), nil
}

func (s *Service) UpdateOwn(ctx context.Context, callerID, targetID string, patch user.Patch) (user.User, error) {
	if callerID == "" || callerID != targetID {
		return user.User{}, ErrForbidden
	}

	var (
		u   user.User
		err error
	)
	if patch.IsEmpty() {
		u, err = s.users.GetByID(ctx, targetID)
	} else {
		u, err = s.users.Update(ctx, targetID, patch)
	}
	if err != nil {
		return user.User{}, err
	}

	if s.onWrite != nil && !patch.IsEmpty() {
		s.onWrite(ctx)
	}

	return u.Public(), nil
}
