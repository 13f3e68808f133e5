package services

import (
	"context"
	"testing"

	"cashflow/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	svc := NewUserService(repo)

	p, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "alice", Email: "alice@example.com"}, p)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUserService_UpdateUsername(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	alice := newTestUser(t, repo, "alice")
	newTestUser(t, repo, "bobby")
	svc := NewUserService(repo)

	for input, msg := range map[string]string{
		"   ":   "username is required",
		" ab ":  "username must be at least 3 characters long",
		"bobby": "username already exists",
	} {
		_, err := svc.UpdateUsername(ctx, alice.ID, input)
		require.ErrorIs(t, err, core.ErrValidation, input)
		assert.Equal(t, msg, core.Message(err, ""), input)
	}

	name, err := svc.UpdateUsername(ctx, alice.ID, "  alicia ")
	require.NoError(t, err)
	assert.Equal(t, "alicia", name)

	_, err = svc.UpdateUsername(ctx, alice.ID, "alicia")
	assert.NoError(t, err, "keeping your own name is allowed")
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	alice := newTestUser(t, repo, "alice")
	svc := NewUserService(repo)

	cases := []struct {
		current, next, confirm string
		msg                    string
	}{
		{"", "newsecret", "newsecret", "all fields are required"},
		{"secret1", "newsecret", "other", "passwords do not match"},
		{"secret1", "abc", "abc", "password must be at least 6 characters long"},
		{"wrong1", "newsecret", "newsecret", "incorrect current password"},
		{"secret1", "secret1", "secret1", "new password cannot be the same as the old password"},
	}
	for _, tc := range cases {
		err := svc.UpdatePassword(ctx, alice.ID, tc.current, tc.next, tc.confirm)
		require.ErrorIs(t, err, core.ErrValidation)
		assert.Equal(t, tc.msg, core.Message(err, ""))
	}

	require.NoError(t, svc.UpdatePassword(ctx, alice.ID, "secret1", "newsecret", "newsecret"))
	err := svc.UpdatePassword(ctx, alice.ID, "secret1", "another1", "another1")
	assert.Equal(t, "incorrect current password", core.Message(err, ""))
}
