package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// SignupMessage is the payload for creating an account.
type SignupMessage struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"password2"`
	// UseHashid derives the user ID deterministically from the email
	// instead of generating a random UUID.
	UseHashid bool `json:"-"`
}

// Validate will run validation rules
func (e SignupMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 255)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 255)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 255), is.Email),
		validation.Field(&e.Password, validation.Required),
		validation.Field(
			&e.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(e.Password)),
		),
	)
}

// AccountService owns user creation and credential verification. Uniqueness
// checks run inside the registration transaction as the fast path; the
// store's unique constraints stay authoritative under races.
type AccountService struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	policy PasswordValidator
	logger Logger
}

// NewAccountService creates an AccountService with the default bcrypt
// hasher and password policy.
func NewAccountService(repo RepositoryManager) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: BcryptHasher{},
		policy: DefaultPasswordPolicy,
		logger: defLogger{},
	}
}

func (s *AccountService) WithLogger(logger Logger) *AccountService {
	s.logger = logger
	return s
}

// WithHasher overrides the password hasher.
func (s *AccountService) WithHasher(hasher PasswordAuthenticator) *AccountService {
	s.hasher = hasher
	return s
}

// WithPasswordPolicy overrides the password strength policy.
func (s *AccountService) WithPasswordPolicy(policy PasswordValidator) *AccountService {
	s.policy = policy
	return s
}

// Signup validates the payload, enforces the password policy and the
// uniqueness invariants, and persists the new user with a hashed password
// and normalized email.
func (s *AccountService) Signup(ctx context.Context, msg SignupMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload").
			WithCode(goerrors.CodeBadRequest)
	}

	if s.policy != nil {
		if err := s.policy(msg.Password); err != nil {
			return nil, err
		}
	}

	user := &User{
		Username:  strings.TrimSpace(msg.Username),
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Email:     strings.ToLower(strings.TrimSpace(msg.Email)),
		Active:    true,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := s.repo.Users().EmailTakenTx(ctx, tx, user.Email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}
		if taken {
			return ErrEmailTaken
		}

		taken, err = s.repo.Users().UsernameTakenTx(ctx, tx, user.Username)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
		}
		if taken {
			return ErrUsernameTaken
		}

		hash, err := s.hasher.HashPassword(msg.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}
		user.PasswordHash = hash

		if msg.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	return user, nil
}

// dummyHash keeps VerifyCredentials doing a bcrypt compare even when the
// username does not exist, so response timing has the same shape either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1J1xK5S6b1GHxHPsnO3bIXUkIpUnvCy"

// VerifyCredentials returns the user when username and password match an
// active account. Every failure mode comes back as the same
// ErrBadCredentials; callers cannot tell an unknown username from a wrong
// password or an inactive account.
func (s *AccountService) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.Users().GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			_ = s.hasher.ComparePasswordAndHash(password, dummyHash)
			return nil, ErrBadCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !user.Active {
		s.logger.Warn("signin blocked for inactive user", "user_id", user.ID.String())
		_ = s.hasher.ComparePasswordAndHash(password, dummyHash)
		return nil, ErrBadCredentials
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}
