package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidToken      = "auth_invalid_token"
	TextCodeBadCredentials    = "auth_bad_credentials"
	TextCodeUnauthenticated   = "auth_required"
	TextCodeEmailTaken        = "auth_email_taken"
	TextCodeUsernameTaken     = "auth_username_taken"
	TextCodeWeakPassword      = "auth_weak_password"
	TextCodeMissingSigningKey = "auth_missing_signing_key"
)

// ErrInvalidToken is returned for any token that fails verification. Bad
// signature, malformed payload, expiry, and revocation all collapse into
// this one error so the client cannot tell which defense fired.
var ErrInvalidToken = errors.New("invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrBadCredentials is returned on signin failure without distinguishing
// an unknown username from a wrong password.
var ErrBadCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when a protected endpoint is hit without
// credentials.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrEmailTaken is returned when a signup email is already registered.
// Uniqueness conflicts are validation failures on the signup payload, so
// they surface as 400 like every other rejected field.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryValidation).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeBadRequest)

// ErrUsernameTaken is returned when a signup username is already registered.
var ErrUsernameTaken = errors.New("username already taken", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(errors.CodeBadRequest)

// ErrWeakPassword is returned when a password fails the strength policy.
var ErrWeakPassword = errors.New("password does not meet the strength policy", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the internal mismatch marker used by the
// password hasher.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)
