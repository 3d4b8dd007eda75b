package profile_test

import (
	"context"
	"testing"

	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/profile"
	"github.com/geocoder89/profilehub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*profile.Service, *memory.UsersRepo, *int) {
	t.Helper()
	store := memory.NewUsersRepo()
	writes := 0
	return profile.NewService(store, func(context.Context) { writes++ }), store, &writes
}

func mustCreate(t *testing.T, store *memory.UsersRepo, name, role string) user.User {
	t.Helper()
	edu := "BSc"
	u, err := store.Create(context.Background(), user.NewUser{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		Profile: user.Profile{
			Education: &edu,
			Skills:    []string{"go"},
			Projects:  []user.Project{{Title: "p1"}},
			Work:      []string{"acme"},
			Links:     []string{"https://x"},
		},
	})
	require.NoError(t, err)
	return u
}

func TestGetOwn(t *testing.T) {
	svc, store, _ := setup(t)
	u := mustCreate(t, store, "ada", user.RoleUser)

	got, err := svc.GetOwn(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.GetOwn(context.Background(), "gone")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUpdateOwn_OtherUsersProfileIsForbidden(t *testing.T) {
	svc, store, writes := setup(t)
	a := mustCreate(t, store, "ada", user.RoleUser)
	b := mustCreate(t, store, "bob", user.RoleUser)
	admin := mustCreate(t, store, "root", user.RoleAdmin)

	name := b.Name
	email := b.Email
	full := user.Patch{Name: &name, Email: &email, Skills: &b.Skills}

	_, err := svc.UpdateOwn(context.Background(), a.ID, b.ID, full)
	assert.ErrorIs(t, err, profile.ErrForbidden)

	_, err = svc.UpdateOwn(context.Background(), admin.ID, b.ID, full)
	assert.ErrorIs(t, err, profile.ErrForbidden, "admins get no bypass")

	assert.Zero(t, *writes)
}

func TestUpdateOwn_PartialUpdateKeepsOtherFields(t *testing.T) {
	svc, store, writes := setup(t)
	a := mustCreate(t, store, "ada", user.RoleUser)

	edu := "Math Department"
	got, err := svc.UpdateOwn(context.Background(), a.ID, a.ID, user.Patch{Education: &edu})
	require.NoError(t, err)

	assert.Equal(t, edu, got.Education)
	assert.Equal(t, a.Skills, got.Skills)
	assert.Equal(t, a.Projects, got.Projects)
	assert.Equal(t, a.Work, got.Work)
	assert.Equal(t, a.Links, got.Links)
	assert.Equal(t, user.RoleUser, got.Role)
	assert.Equal(t, 1, *writes)
}

func TestUpdateOwn_EmptyPatchReturnsCurrent(t *testing.T) {
	svc, store, writes := setup(t)
	a := mustCreate(t, store, "ada", user.RoleUser)

	got, err := svc.UpdateOwn(context.Background(), a.ID, a.ID, user.Patch{})
	require.NoError(t, err)
	assert.Equal(t, a.Education, got.Education)
	assert.Zero(t, *writes)
}

func TestUpdateOwn_MissingTarget(t *testing.T) {
	svc, _, _ := setup(t)
	edu := "x"

	_, err := svc.UpdateOwn(context.Background(), "ghost", "ghost", user.Patch{Education: &edu})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUpdateOwn_EmailCollision(t *testing.T) {
	svc, store, _ := setup(t)
	a := mustCreate(t, store, "ada", user.RoleUser)
	mustCreate(t, store, "bob", user.RoleUser)

	taken := "BOB@example.com"
	_, err := svc.UpdateOwn(context.Background(), a.ID, a.ID, user.Patch{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}
