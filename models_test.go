package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-cookie-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public(t *testing.T) {
	user := &auth.User{
		ID:           uuid.New(),
		Username:     "asmith",
		FirstName:    "Ann",
		LastName:     "Smith",
		Email:        "ann@x.com",
		PasswordHash: "$2a$14$secret",
	}

	public := user.Public()
	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, "asmith", public.Username)
	assert.Equal(t, "ann@x.com", public.Email)

	raw, err := json.Marshal(public)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestUser_JSONHidesPasswordHash(t *testing.T) {
	user := &auth.User{
		Username:     "asmith",
		PasswordHash: "$2a$14$secret",
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestUser_FullName(t *testing.T) {
	user := &auth.User{FirstName: "Ann", LastName: "Smith"}
	assert.Equal(t, "Ann Smith", user.FullName())

	user = &auth.User{FirstName: "Ann"}
	assert.Equal(t, "Ann", user.FullName())

	user = &auth.User{}
	assert.Equal(t, "", user.FullName())
}

func TestRevocationEntry_Expired(t *testing.T) {
	now := time.Now()

	entry := &auth.RevocationEntry{TokenID: "jti", ExpiresAt: now.Add(-time.Second)}
	assert.True(t, entry.Expired(now))

	entry = &auth.RevocationEntry{TokenID: "jti", ExpiresAt: now.Add(time.Hour)}
	assert.False(t, entry.Expired(now))
}
