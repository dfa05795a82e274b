package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearch_ExcludesCaller(t *testing.T) {
	alice := newTestUser("alice")
	alina := newTestUser("alina")
	bob := newTestUser("bob")
	svc := NewUserService(newFakeUserRepo(alice, alina, bob))
	ctx := context.Background()

	// "ali" matches alice and alina; the caller never sees themselves.
	results, err := svc.Search(ctx, "alice", "ali")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "alina", results[0].Username)

	results, err = svc.Search(ctx, "bob", "ali")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Empty query returns nothing rather than everyone.
	results, err = svc.Search(ctx, "alice", "")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestUpdateProfile(t *testing.T) {
	alice := newTestUser("alice")
	svc := NewUserService(newFakeUserRepo(alice))
	ctx := context.Background()

	avatar := "https://cdn.example.com/a.png"
	updated, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{
		DisplayName: "Alice L",
		Bio:         "hey there",
		AvatarURL:   &avatar,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice L", updated.DisplayName)
	require.Equal(t, "hey there", updated.Bio)
	require.Equal(t, avatar, *updated.AvatarURL)

	// A nil avatar leaves the stored one untouched.
	updated, err = svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{
		DisplayName: "Alice L",
		Bio:         "still here",
	})
	require.NoError(t, err)
	require.Equal(t, avatar, *updated.AvatarURL)
}

func TestGetProfile_HidesCredentials(t *testing.T) {
	alice := newTestUser("alice")
	alice.PasswordHash = "salt:hash"
	svc := NewUserService(newFakeUserRepo(alice))
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, profile.ID)
	require.Equal(t, "alice", profile.Username)

	_, err = svc.GetProfile(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
