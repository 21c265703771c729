package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/authline/authline/internal/domain"
	"github.com/authline/authline/internal/errors"
	"github.com/authline/authline/internal/logger"
)

// invalidCredentials is returned for both unknown email and wrong password so
// the two cases are indistinguishable to the caller.
func invalidCredentials() error {
	return errors.Unauthorized("Invalid credentials")
}

// invalidResetToken covers unknown and expired tokens alike; both mean the
// token is unusable.
func invalidResetToken() error {
	return errors.Validation("Invalid token or token is expired")
}

type AuthService interface {
	SignUp(name, email, password, confirmPassword string) (domain.User, error)
	SignIn(email, password string) (string, domain.User, error)
	User(id domain.UserId) (domain.User, error)
	ForgotPassword(email string) (string, error)
	ResetPassword(rawToken, password, confirmPassword string) error
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email domain.Email) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
	// UserByResetTokenHash matches only records whose reset token expiry is
	// still in the future.
	UserByResetTokenHash(hash string, now time.Time) (domain.User, error)
	SetResetToken(id domain.UserId, hash string, expires time.Time) error
	// UpdatePassword replaces the password hash and clears any outstanding
	// reset token atomically.
	UpdatePassword(id domain.UserId, newPassHash string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenSigner interface {
	Issue(identity domain.SessionClaims) (string, error)
}

type ResetTokens interface {
	Issue() (raw string, hash string, expires time.Time)
	LookupHash(raw string) string
}

type Auth struct {
	storage AuthStorage
	hasher  PasswordHasher
	signer  TokenSigner
	reset   ResetTokens
}

func NewAuth(storage AuthStorage, hasher PasswordHasher, signer TokenSigner, reset ResetTokens) *Auth {
	return &Auth{
		storage: storage,
		hasher:  hasher,
		signer:  signer,
		reset:   reset,
	}
}

func isCorrectEmail(email domain.Email) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.Validation("Please provide a valid email address")
	}
	return nil
}

// SignUp creates a new account. Email is lowercased before storage; the
// storage layer enforces uniqueness and surfaces a duplicate as a conflict.
func (a *Auth) SignUp(name, email, password, confirmPassword string) (domain.User, error) {
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return domain.User{}, errors.Validation("Every field is required")
	}
	if password != confirmPassword {
		return domain.User{}, errors.Validation("Password and confirm password do not match")
	}

	email = strings.ToLower(email)
	if err := isCorrectEmail(email); err != nil {
		return domain.User{}, err
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{Name: name, Email: email, PassHash: passHash}
	id, err := a.storage.SaveUser(user)
	if err != nil {
		return domain.User{}, err
	}
	user.Id = id

	return user.Scrub(), nil
}

// SignIn verifies credentials and mints a session token. Unknown email and
// wrong password produce the exact same failure.
func (a *Auth) SignIn(email, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", domain.User{}, errors.Validation("Please provide email and password")
	}
	email = strings.ToLower(email)

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		// to not leak existing users
		if errors.IsNotFound(err) {
			return "", domain.User{}, invalidCredentials()
		}
		return "", domain.User{}, err
	}

	if !a.hasher.Verify(password, user.PassHash) {
		logger.Log.Debug("password verification failed", "user_id", user.Id)
		return "", domain.User{}, invalidCredentials()
	}

	token, err := a.signer.Issue(domain.SessionClaims{Id: user.Id, Email: user.Email})
	if err != nil {
		logger.Log.Error("failed to create session token", "user_id", user.Id, "error", err)
		return "", domain.User{}, err
	}

	return token, user.Scrub(), nil
}

// User fetches the account for an already-authenticated identity.
func (a *Auth) User(id domain.UserId) (domain.User, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		return domain.User{}, err
	}
	return user.Scrub(), nil
}

// ForgotPassword issues a fresh reset token and persists its hash and expiry,
// overwriting any prior outstanding token. The raw token is returned to the
// caller for out-of-band delivery and is never stored.
func (a *Auth) ForgotPassword(email string) (string, error) {
	if email == "" {
		return "", errors.Validation("Email is required")
	}
	email = strings.ToLower(email)

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		return "", err
	}

	raw, hash, expires := a.reset.Issue()
	if err := a.storage.SetResetToken(user.Id, hash, expires); err != nil {
		return "", err
	}

	return raw, nil
}

// ResetPassword consumes a reset token: the store is queried by the token's
// lookup hash combined with expiry > now, so a stale or fabricated token
// fails with one indistinct error kind.
func (a *Auth) ResetPassword(rawToken, password, confirmPassword string) error {
	if password == "" || confirmPassword == "" {
		return errors.Validation("Password and confirm password are required")
	}
	if password != confirmPassword {
		return errors.Validation("Password and confirm password do not match")
	}

	user, err := a.storage.UserByResetTokenHash(a.reset.LookupHash(rawToken), time.Now().UTC())
	if err != nil {
		if errors.IsNotFound(err) {
			return invalidResetToken()
		}
		return err
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		return err
	}

	return a.storage.UpdatePassword(user.Id, passHash)
}
