package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// fakeGetter serves users keyed by "field:value" and fails everything else
// with errOut (ErrUserNotFound when nil).
func fakeGetter(users map[string]User, errOut error) userGetter {
	if errOut == nil {
		errOut = ErrUserNotFound
	}
	return func(_ context.Context, field, value string) (User, error) {
		if u, ok := users[field+":"+value]; ok {
			return u, nil
		}
		return User{}, errOut
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	u := User{ID: "u1", Username: "ivan", Email: "ivan@example.com", passwordHash: hashFor(t, "s3cret")}
	get := fakeGetter(map[string]User{
		"username:ivan":          u,
		"email:ivan@example.com": u,
	}, nil)
	ctx := context.Background()

	got, err := login(ctx, get, "ivan", "", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got, err = login(ctx, get, "", "Ivan@Example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	// unknown username falls back to the email
	got, err = login(ctx, get, "nobody", "ivan@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	u := User{ID: "u1", Username: "ivan", passwordHash: hashFor(t, "s3cret")}
	get := fakeGetter(map[string]User{"username:ivan": u}, nil)
	ctx := context.Background()

	_, err := login(ctx, get, "ghost", "", "s3cret")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = login(ctx, get, "ivan", "", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = login(ctx, get, "", "", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginPropagatesInfrastructureErrors(t *testing.T) {
	dbDown := errors.New("connection refused")
	get := fakeGetter(nil, fmt.Errorf("query users: %w", dbDown))

	_, err := login(context.Background(), get, "ivan", "ivan@example.com", "s3cret")
	require.Error(t, err)

	// a DB outage must not look like a wrong password
	assert.NotErrorIs(t, err, ErrBadCredentials)
	assert.ErrorIs(t, err, dbDown)
}
