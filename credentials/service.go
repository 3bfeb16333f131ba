package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/dright-spec/RightNFT123-sub006/internal/errors"
	"github.com/dright-spec/RightNFT123-sub006/internal/utils"
	"github.com/dright-spec/RightNFT123-sub006/mailer"
	"github.com/dright-spec/RightNFT123-sub006/users"
)

const (
	// verificationTokenBytes gives 64 hex characters per token.
	verificationTokenBytes = 32
	// verificationTokenTTL is the absolute lifetime of an issued token.
	verificationTokenTTL = 24 * time.Hour
)

// Service handles all password- and token-based identity operations. It
// never touches session state; session minting belongs to sessions.Store.
type Service struct {
	users   users.Store
	mailer  mailer.Mailer
	nowTime func() time.Time // nowTime function (injectable for testing)
	log     zerolog.Logger
	baseURL string

	// dummyHash is compared against when the identifier resolves to no
	// usable account, so a miss costs a full bcrypt round like a mismatch.
	dummyHash string
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(cs *Service) {
		cs.nowTime = nowFunc
	}
}

// WithLogger sets the component logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(cs *Service) {
		cs.log = log
	}
}

// WithVerificationBaseURL sets the public base URL embedded in verification
// mails.
func WithVerificationBaseURL(baseURL string) ServiceOption {
	return func(cs *Service) {
		cs.baseURL = baseURL
	}
}

// NewService initializes a Service with required dependencies.
func NewService(userStore users.Store, m mailer.Mailer, options ...ServiceOption) (*Service, error) {
	if userStore == nil {
		return nil, errors.New("[NewService] users store is required")
	}
	if m == nil {
		return nil, errors.New("[NewService] mailer is required")
	}

	cs := &Service{
		users:   userStore,
		mailer:  m,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(cs)
	}

	dummy, err := users.HashPassword("-")
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] users.HashPassword")
	}
	cs.dummyHash = dummy

	return cs, nil
}

// LoginWithPassword resolves the identifier as an email first and a username
// second, then checks the password. Unknown identifier and wrong password
// both come back as ErrInvalidCredentials so callers cannot probe which
// accounts exist. The returned user never carries the password hash.
func (cs *Service) LoginWithPassword(identifier, password string) (*users.User, error) {
	user := cs.lookupByIdentifier(identifier)
	if user == nil || user.PasswordHash == "" {
		// Burn a full comparison so a miss takes as long as a mismatch;
		// the result is discarded.
		users.CheckPasswordHash(password, cs.dummyHash)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	user.LastLogin = cs.nowTime()
	if err := cs.users.Update(user); err != nil {
		return nil, errors.Wrap(err, "[LoginWithPassword] users.Update")
	}

	return user.Sanitized(), nil
}

// lookupByIdentifier tries the email path then the username path. Both paths
// are total: a miss is nil, never an error.
func (cs *Service) lookupByIdentifier(identifier string) *users.User {
	if user, err := cs.users.GetByEmail(identifier); err == nil {
		return user
	}
	if user, err := cs.users.GetByUsername(identifier); err == nil {
		return user
	}
	return nil
}

// GenerateEmailVerificationToken returns a cryptographically secure random
// token, 32 bytes hex-encoded. An entropy failure aborts the operation; the
// token source is never downgraded.
func (cs *Service) GenerateEmailVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "[GenerateEmailVerificationToken] rand.Read")
	}
	return hex.EncodeToString(buf), nil
}

// SendEmailVerification dispatches the verification mail. The return value
// reflects only whether the handoff to the mail collaborator succeeded;
// delivery is best-effort and failures are logged, never propagated.
func (cs *Service) SendEmailVerification(email, token, username string) bool {
	subject := "Verify your email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease verify your email address by visiting:\n\n%s/auth/verify-email?token=%s\n\nThis link expires in 24 hours.\n",
		username, cs.baseURL, token,
	)
	if err := cs.mailer.Send(email, subject, body); err != nil {
		cs.log.Err(err).Str("email", email).Msg("verification mail dispatch failed")
		return false
	}
	return true
}

// VerifyEmailToken consumes a verification token. On success the user is
// marked verified and the token and expiry are cleared in one update, so the
// token can never be replayed. An expired token is reported but left intact;
// only a resend overwrites it.
func (cs *Service) VerifyEmailToken(token string) (*users.User, error) {
	user, err := cs.users.GetByVerificationToken(token)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if user.EmailVerificationExpires == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if cs.nowTime().After(*user.EmailVerificationExpires) {
		return nil, apperrors.ErrTokenExpired
	}

	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	if err := cs.users.Update(user); err != nil {
		return nil, errors.Wrap(err, "[VerifyEmailToken] users.Update")
	}

	return user.Sanitized(), nil
}

// ResendEmailVerification issues a fresh token with a new 24 hour expiry and
// re-dispatches the mail. Any prior token is invalidated by the overwrite.
// Returns false if the user is unknown or already verified.
func (cs *Service) ResendEmailVerification(email string) bool {
	user, err := cs.users.GetByEmail(email)
	if err != nil {
		return false
	}
	if user.EmailVerified {
		return false
	}

	token, err := cs.GenerateEmailVerificationToken()
	if err != nil {
		cs.log.Err(err).Msg("verification token generation failed")
		return false
	}

	user.EmailVerificationToken = utils.Ptr(token)
	user.EmailVerificationExpires = utils.Ptr(cs.nowTime().Add(verificationTokenTTL))
	if err := cs.users.Update(user); err != nil {
		cs.log.Err(err).Str("email", email).Msg("failed to store verification token")
		return false
	}

	return cs.SendEmailVerification(user.Email, token, user.Username)
}
