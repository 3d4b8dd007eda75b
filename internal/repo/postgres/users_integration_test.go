package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/geocoder89/profilehub/internal/db"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*postgres.UsersRepo, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.EnsureSchema(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)

	return postgres.NewUsersRepo(pool, nil), pool
}

func create(t *testing.T, r *postgres.UsersRepo, name, role string, p user.Profile) user.User {
	t.Helper()
	u, err := r.Create(context.Background(), user.NewUser{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		Profile:      p,
	})
	require.NoError(t, err)
	return u
}

func TestUsersRepo_CreateAndLookup(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	u := create(t, r, "ada", user.RoleUser, user.Profile{
		Skills:   []string{"go"},
		Projects: []user.Project{{Title: "engine", Desc: "analytical"}},
	})
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, []user.Project{{Title: "engine", Desc: "analytical"}}, u.Projects)

	_, err := r.Create(ctx, user.NewUser{Name: "x", Email: "ADA@example.com", PasswordHash: "h", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	withHash, err := r.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", withHash.PasswordHash)

	_, err = r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_PartialUpdate(t *testing.T) {
	r, _ := setupRepo(t)

	u := create(t, r, "ada", user.RoleUser, user.Profile{Skills: []string{"go"}, Work: []string{"acme"}})

	edu := "Math Department"
	got, err := r.Update(context.Background(), u.ID, user.Patch{Education: &edu})
	require.NoError(t, err)

	assert.Equal(t, edu, got.Education)
	assert.Equal(t, []string{"go"}, got.Skills)
	assert.Equal(t, []string{"acme"}, got.Work)
	assert.Equal(t, user.RoleUser, got.Role)

	empty := []string{}
	got, err = r.Update(context.Background(), u.ID, user.Patch{Skills: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Skills)
}

func TestUsersRepo_DirectoryQueries(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	create(t, r, "root", user.RoleAdmin, user.Profile{Skills: []string{"go"}})
	for i := 0; i < 25; i++ {
		create(t, r, fmt.Sprintf("u%02d", i), user.RoleUser, user.Profile{})
	}
	edu := "Math Department"
	create(t, r, "mathy", user.RoleUser, user.Profile{Education: &edu, Skills: []string{"rust"}})
	create(t, r, "athlete", user.RoleUser, user.Profile{Projects: []user.Project{{Title: "Mathletics"}}, Skills: []string{"python"}})

	items, total, err := r.ListByRole(ctx, user.RoleUser, user.PageRequest{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 27, total)
	assert.Empty(t, items)

	items, total, err = r.ListBySkills(ctx, []string{"go", "rust"}, user.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = r.Search(ctx, "MATH", user.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	_, total, err = r.Search(ctx, "%", user.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total, "wildcards are matched literally")

	top, err := r.TopSkills(ctx, user.TopSkillsMax)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}
