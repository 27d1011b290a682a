package auth_test

import (
	"testing"

	"github.com/goliatone/go-cookie-auth"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPasswordPolicy(t *testing.T) {
	t.Run("accepts a reasonable password", func(t *testing.T) {
		assert.NoError(t, auth.DefaultPasswordPolicy("Str0ng!Pass"))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		assertTextCode(t, auth.DefaultPasswordPolicy("abc12"), auth.TextCodeWeakPassword)
	})

	t.Run("rejects all numeric passwords of any length", func(t *testing.T) {
		assertTextCode(t, auth.DefaultPasswordPolicy("1234567890123456"), auth.TextCodeWeakPassword)
	})

	t.Run("rejects common passwords case-insensitively", func(t *testing.T) {
		assertTextCode(t, auth.DefaultPasswordPolicy("PASSWORD"), auth.TextCodeWeakPassword)
		assertTextCode(t, auth.DefaultPasswordPolicy("iloveyou"), auth.TextCodeWeakPassword)
	})
}
