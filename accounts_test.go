package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-cookie-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountService(t *testing.T) (*auth.AccountService, auth.RepositoryManager) {
	t.Helper()

	repo := auth.NewRepositoryManager(setupTestDB(t))
	service := auth.NewAccountService(repo).WithHasher(fastHasher())

	return service, repo
}

// countingHasher tracks how many password comparisons ran, regardless of
// which stored hash they ran against.
type countingHasher struct {
	auth.BcryptHasher
	compares *int
}

func (h countingHasher) ComparePasswordAndHash(password, hash string) error {
	*h.compares++
	return h.BcryptHasher.ComparePasswordAndHash(password, hash)
}

func validSignup() auth.SignupMessage {
	return auth.SignupMessage{
		Username:        "asmith",
		FirstName:       "Ann",
		LastName:        "Smith",
		Email:           "ann@x.com",
		Password:        "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
	}
}

func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()

	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, textCode, richErr.TextCode)
}

func TestAccountService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with hashed password", func(t *testing.T) {
		service, repo := newAccountService(t)

		user, err := service.Signup(ctx, validSignup())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "asmith", user.Username)
		assert.Equal(t, "ann@x.com", user.Email)
		assert.True(t, user.Active)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotContains(t, user.PasswordHash, "Str0ng!Pass")

		stored, err := repo.Users().GetByUsername(ctx, "asmith")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		service, _ := newAccountService(t)

		msg := validSignup()
		msg.Email = "Ann@X.Com"

		user, err := service.Signup(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, "ann@x.com", user.Email)
	})

	t.Run("rejects mismatched password confirmation", func(t *testing.T) {
		service, repo := newAccountService(t)

		msg := validSignup()
		msg.ConfirmPassword = "Different!Pass"

		_, err := service.Signup(ctx, msg)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

		// nothing persisted
		taken, err := repo.Users().UsernameTaken(ctx, "asmith")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		service, _ := newAccountService(t)

		msg := validSignup()
		msg.Email = ""

		_, err := service.Signup(ctx, msg)
		require.Error(t, err)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		service, _ := newAccountService(t)

		weak := []string{"short1!", "123456789", "password"}
		for _, pwd := range weak {
			msg := validSignup()
			msg.Password = pwd
			msg.ConfirmPassword = pwd

			_, err := service.Signup(ctx, msg)
			assertTextCode(t, err, auth.TextCodeWeakPassword)
		}
	})

	t.Run("rejects duplicate email case-insensitively", func(t *testing.T) {
		service, _ := newAccountService(t)

		_, err := service.Signup(ctx, validSignup())
		require.NoError(t, err)

		msg := validSignup()
		msg.Username = "bsmith"
		msg.Email = "ANN@X.COM"

		_, err = service.Signup(ctx, msg)
		assertTextCode(t, err, auth.TextCodeEmailTaken)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		service, _ := newAccountService(t)

		_, err := service.Signup(ctx, validSignup())
		require.NoError(t, err)

		msg := validSignup()
		msg.Email = "other@x.com"

		_, err = service.Signup(ctx, msg)
		assertTextCode(t, err, auth.TextCodeUsernameTaken)
	})

	t.Run("derives a deterministic id with hashid", func(t *testing.T) {
		service, _ := newAccountService(t)

		msg := validSignup()
		msg.UseHashid = true

		user, err := service.Signup(ctx, msg)
		require.NoError(t, err)

		want, err := hashid.NewUUID(strings.ToLower(msg.Email))
		require.NoError(t, err)
		assert.Equal(t, want, user.ID)
	})
}

func TestAccountService_VerifyCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user on matching credentials", func(t *testing.T) {
		service, _ := newAccountService(t)

		created, err := service.Signup(ctx, validSignup())
		require.NoError(t, err)

		user, err := service.VerifyCredentials(ctx, "asmith", "Str0ng!Pass")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		service, _ := newAccountService(t)

		_, err := service.Signup(ctx, validSignup())
		require.NoError(t, err)

		_, err = service.VerifyCredentials(ctx, "asmith", "WrongPass!1")
		assertTextCode(t, err, auth.TextCodeBadCredentials)
	})

	t.Run("rejects an unknown username with the same error", func(t *testing.T) {
		service, _ := newAccountService(t)

		_, err := service.VerifyCredentials(ctx, "nobody", "Str0ng!Pass")
		assertTextCode(t, err, auth.TextCodeBadCredentials)
	})

	t.Run("unknown usernames still compare through the configured hasher", func(t *testing.T) {
		repo := auth.NewRepositoryManager(setupTestDB(t))

		compares := 0
		hasher := countingHasher{BcryptHasher: fastHasher(), compares: &compares}
		service := auth.NewAccountService(repo).WithHasher(hasher)

		_, err := service.VerifyCredentials(ctx, "nobody", "Str0ng!Pass")
		assertTextCode(t, err, auth.TextCodeBadCredentials)
		assert.Equal(t, 1, compares)
	})

	t.Run("rejects an inactive user with the same error", func(t *testing.T) {
		service, repo := newAccountService(t)

		hash, err := fastHasher().HashPassword("Str0ng!Pass")
		require.NoError(t, err)

		_, err = repo.Users().Register(ctx, &auth.User{
			Username:     "inactive",
			FirstName:    "In",
			LastName:     "Active",
			Email:        "inactive@x.com",
			PasswordHash: hash,
			Active:       false,
		})
		require.NoError(t, err)

		_, err = service.VerifyCredentials(ctx, "inactive", "Str0ng!Pass")
		assertTextCode(t, err, auth.TextCodeBadCredentials)
	})
}
