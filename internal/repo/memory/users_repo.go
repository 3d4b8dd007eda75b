package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps users in insertion order. It backs dev runs without a
// database and the service tests.
type UsersRepo struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]user.User // {"id": user}
	byEmail map[string]string    // {"email": id}
	now     func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	now := r.now().UTC()
	email := user.NormalizeEmail(nu.Email)

	u := user.User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		Skills:       nu.Skills,
		Projects:     nu.Projects,
		Work:         nu.Work,
		Links:        nu.Links,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if nu.Education != nil {
		u.Education = *nu.Education
	}
	u = u.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	r.byEmail[email] = u.ID
	r.order = append(r.order, u.ID)

	return u.Public(), nil
}

// GetByEmail is the one read that keeps the password hash.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id].Clone().Normalize(), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u.Clone().Public(), nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	updated := patch.Apply(current.Clone())

	if updated.Email != current.Email {
		if owner, taken := r.byEmail[updated.Email]; taken && owner != id {
			return user.User{}, user.ErrEmailTaken
		}
		delete(r.byEmail, current.Email)
		r.byEmail[updated.Email] = id
	}

	updated.UpdatedAt = r.now().UTC()
	r.items[id] = updated

	return updated.Clone().Public(), nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role string, page user.PageRequest) ([]user.User, int, error) {
	return r.filter(page, func(u user.User) bool { return u.Role == role })
}

func (r *UsersRepo) ListBySkills(ctx context.Context, skills []string, page user.PageRequest) ([]user.User, int, error) {
	return r.filter(page, func(u user.User) bool { return u.MatchesAnySkill(skills) })
}

func (r *UsersRepo) Search(ctx context.Context, query string, page user.PageRequest) ([]user.User, int, error) {
	return r.filter(page, func(u user.User) bool { return u.MatchesText(query) })
}

// TopSkills counts every occurrence. Equal counts keep first-seen order.
func (r *UsersRepo) TopSkills(ctx context.Context, limit int) ([]user.SkillCount, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	seen := make([]string, 0)
	for _, id := range r.order {
		for _, s := range r.items[id].Skills {
			if _, ok := counts[s]; !ok {
				seen = append(seen, s)
			}
			counts[s]++
		}
	}
	r.mu.RUnlock()

	out := make([]user.SkillCount, 0, len(seen))
	for _, s := range seen {
		out = append(out, user.SkillCount{Skill: s, Count: counts[s]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return nil
}

func (r *UsersRepo) filter(page user.PageRequest, keep func(user.User) bool) ([]user.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := page.Offset()
	out := make([]user.User, 0, page.Limit)
	total := 0

	for _, id := range r.order {
		u := r.items[id]
		if !keep(u) {
			continue
		}
		if total >= skip && len(out) < page.Limit {
			out = append(out, u.Clone().Public())
		}
		total++
	}

	return out, total, nil
}
