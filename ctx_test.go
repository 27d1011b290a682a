package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-cookie-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.FromContext(ctx)
	assert.False(t, ok)

	user := &auth.User{Username: "asmith"}
	ctx = auth.WithContext(ctx, user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.GetClaims(ctx)
	assert.False(t, ok)

	claims := &auth.TokenClaims{TokenType: auth.TokenTypeAccess}
	ctx = auth.WithClaimsContext(ctx, claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, claims, got)
}
