package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/atinyakov/schemeseva/internal/guard"
	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/repository"
	"github.com/atinyakov/schemeseva/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the phone or password is wrong.
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	// ErrOTPInvalid is returned when a code is wrong, expired or was never sent.
	ErrOTPInvalid = errors.New("invalid or expired OTP")
	// ErrUnauthorized is returned when a session token is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")
)

// TooManyAttemptsError is returned while a phone is blocked by the attempt guard.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many attempts, try again in %d seconds", guard.Seconds(e.RetryAfter))
}

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	EnsureUser(ctx context.Context, phone string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	SetPasswordHash(ctx context.Context, userID string, hash []byte) error
	CreateSession(ctx context.Context, sess models.Session) error
	GetSession(ctx context.Context, token string, now time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	SaveOTP(ctx context.Context, otp models.OTP) error
	GetOTP(ctx context.Context, phone string) (*models.OTP, error)
	DeleteOTP(ctx context.Context, phone string) error
}

// OTPSender delivers a one-time code to a phone number.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender is an OTPSender that writes the code to the log.
// It stands in for an SMS gateway in development.
type LogSender struct {
	Log *zap.Logger
}

// Send logs the code.
func (s LogSender) Send(_ context.Context, phone, code string) error {
	s.Log.Info("otp issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// AuthOptions tunes the AuthService.
type AuthOptions struct {
	CountryCode string
	SessionTTL  time.Duration
	OTPTTL      time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
	// Clock defaults to time.Now.
	Clock guard.Clock
}

// AuthService implements phone/OTP/password authentication and sessions.
type AuthService struct {
	repo   AuthRepository
	sender OTPSender
	guard  *guard.Guard
	opts   AuthOptions

	newCode  func() (string, error)
	newToken func() (string, error)
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, sender OTPSender, opts AuthOptions) *AuthService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.OTPTTL == 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	return &AuthService{
		repo:     repo,
		sender:   sender,
		guard:    guard.NewLoginGuard(opts.Clock),
		opts:     opts,
		newCode:  randomCode,
		newToken: randomToken,
	}
}

// SendOTP issues a fresh code for a 10-digit phone number.
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	if err := validate.Phone(phone); err != nil {
		return err
	}
	full := s.opts.CountryCode + phone

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.HashCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	otp := models.OTP{Phone: full, CodeHash: hash, ExpiresAt: s.opts.Clock().Add(s.opts.OTPTTL)}
	if err := s.repo.SaveOTP(ctx, otp); err != nil {
		return err
	}
	return s.sender.Send(ctx, full, code)
}

// VerifyOTP consumes a code, creating the account on first use, and opens a session.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error) {
	if err := validate.Phone(phone); err != nil {
		return nil, err
	}
	if err := validate.OTP(code); err != nil {
		return nil, err
	}
	full := s.opts.CountryCode + phone
	if err := s.allow(full); err != nil {
		return nil, err
	}

	otp, err := s.repo.GetOTP(ctx, full)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOTPInvalid
	}
	if err != nil {
		return nil, err
	}
	if !s.opts.Clock().Before(otp.ExpiresAt) ||
		bcrypt.CompareHashAndPassword(otp.CodeHash, []byte(code)) != nil {
		// Once the phone is blocked the code is burned; a new one must be requested.
		if ok, _ := s.guard.Allow(full); !ok {
			if err := s.repo.DeleteOTP(ctx, full); err != nil {
				return nil, err
			}
		}
		return nil, ErrOTPInvalid
	}
	s.guard.Reset(full)

	if err := s.repo.DeleteOTP(ctx, full); err != nil {
		return nil, err
	}
	user, err := s.repo.EnsureUser(ctx, full)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

// SignIn checks a phone and password and opens a session.
func (s *AuthService) SignIn(ctx context.Context, phone, password string) (*models.Session, error) {
	if err := validate.Credentials(phone, password); err != nil {
		return nil, err
	}
	full := s.opts.CountryCode + phone
	if err := s.allow(full); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByPhone(ctx, full)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if user == nil || len(user.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	s.guard.Reset(full)
	return s.openSession(ctx, user)
}

// SetPassword stores a new password for the signed-in user.
func (s *AuthService) SetPassword(ctx context.Context, userID, password string) error {
	if err := validate.Password(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

// Session resolves a bearer token to its session.
func (s *AuthService) Session(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.repo.GetSession(ctx, token, s.opts.Clock())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return sess, err
}

// SignOut ends the session for token.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// allow reserves an attempt for phone. The attempt stays counted as a
// failure unless the caller succeeds and resets the guard.
func (s *AuthService) allow(phone string) error {
	if ok, wait := s.guard.Begin(phone); !ok {
		return &TooManyAttemptsError{RetryAfter: wait}
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*models.Session, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	sess := models.Session{
		Token:     token,
		UserID:    user.ID,
		Phone:     user.Phone,
		ExpiresAt: s.opts.Clock().Add(s.opts.SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
