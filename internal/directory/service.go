package directory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/profilehub/internal/cache"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/observability"
)

var (
	ErrNoSkills     = errors.New("please provide at least one skill")
	ErrEmptyQuery   = errors.New("please provide a search query")
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

// IsInvalidArgument groups the errors a handler should answer with 400.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrNoSkills) || errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidLimit)
}

type Store interface {
	ListByRole(ctx context.Context, role string, page user.PageRequest) ([]user.User, int, error)
	ListBySkills(ctx context.Context, skills []string, page user.PageRequest) ([]user.User, int, error)
	Search(ctx context.Context, query string, page user.PageRequest) ([]user.User, int, error)
	TopSkills(ctx context.Context, limit int) ([]user.SkillCount, error)
}

type Service struct {
	users Store
	cache cache.SkillsCache
	prom  *observability.Prom
	log   *slog.Logger
}

// NewService wires the admin directory. skills may be nil to disable caching.
func NewService(users Store, skills cache.SkillsCache, prom *observability.Prom, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, cache: skills, prom: prom, log: log}
}

// ListUsers is the directory proper: role "user" only, admins never show up.
func (s *Service) ListUsers(ctx context.Context, page user.PageRequest) (user.Page, error) {
	if err := validatePage(page); err != nil {
		return user.Page{}, err
	}

	items, total, err := s.users.ListByRole(ctx, user.RoleUser, page)
	if err != nil {
		return user.Page{}, err
	}
	return user.NewPage(page, items, total), nil
}

func (s *Service) ListBySkills(ctx context.Context, rawSkills string, page user.PageRequest) (user.Page, error) {
	skills := user.ParseSkillList(rawSkills)
	if len(skills) == 0 {
		return user.Page{}, ErrNoSkills
	}
	if err := validatePage(page); err != nil {
		return user.Page{}, err
	}

	items, total, err := s.users.ListBySkills(ctx, skills, page)
	if err != nil {
		return user.Page{}, err
	}
	return user.NewPage(page, items, total), nil
}

func (s *Service) Search(ctx context.Context, query string, page user.PageRequest) (user.Page, error) {
	if query == "" {
		return user.Page{}, ErrEmptyQuery
	}
	if err := validatePage(page); err != nil {
		return user.Page{}, err
	}

	items, total, err := s.users.Search(ctx, query, page)
	if err != nil {
		return user.Page{}, err
	}
	return user.NewPage(page, items, total), nil
}

// TopSkills returns up to ten skills by occurrence count. The cache is best
// effort: a failing cache falls through to the store. The fill is tied to
// the cache version read before the store query, so a write that
// invalidates in the meantime keeps the older histogram out.
func (s *Service) TopSkills(ctx context.Context) ([]user.SkillCount, error) {
	fill := false
	var version int64

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.prom.ObserveCache("top_skills", "error")
			s.log.WarnContext(ctx, "top skills cache read failed", "err", err)
		case ok:
			s.prom.ObserveCache("top_skills", "hit")
			return cached, nil
		default:
			s.prom.ObserveCache("top_skills", "miss")
		}

		if err == nil {
			version, err = s.cache.Version(ctx)
			if err != nil {
				s.log.WarnContext(ctx, "top skills cache version read failed", "err", err)
			}
			fill = err == nil
		}
	}

	skills, err := s.users.TopSkills(ctx, user.TopSkillsMax)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.Set(ctx, version, skills); err != nil {
			s.log.WarnContext(ctx, "top skills cache write failed", "err", err)
		}
	}
	return skills, nil
}

// Invalidate is hooked to every user write.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "top skills cache invalidation failed", "err", err)
	}
}

func validatePage(p user.PageRequest) error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.Limit < 1 || p.Limit > user.MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}
