package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go-auth-core/internal/metrics"
	"go-auth-core/internal/model"
	"go-auth-core/internal/repository"
	"go-auth-core/internal/security"
)

const TokenTypeBearer = "bearer"

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, digest string) bool
}

type tokenCodec interface {
	Issue(subject string, lifetime time.Duration) (security.IssuedToken, error)
	Resolve(token string) (string, error)
}

// ResetNotifier delivers a freshly issued password-reset token to its owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user model.User, token security.IssuedToken) error
}

type AuthService struct {
	store    repository.Store
	hasher   passwordHasher
	sessions tokenCodec
	resets   tokenCodec
	notifier ResetNotifier
	now      func() time.Time
}

type Option func(*AuthService)

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithResetNotifier(notifier ResetNotifier) Option {
	return func(s *AuthService) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

func NewAuthService(store repository.Store, hasher passwordHasher, sessions tokenCodec, resets tokenCodec, opts ...Option) (*AuthService, error) {
	if store == nil {
		return nil, errors.New("identity store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if sessions == nil || resets == nil {
		return nil, errors.New("token codecs are required")
	}

	service := &AuthService{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		resets:   resets,
		notifier: LogResetNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Register creates a user after checking that neither the username nor the
// email is taken. The checks run before hashing; the storage unique
// constraints back them up for concurrent registrations.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	var created model.User

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := ensureAbsent(tx.FindByUsername(ctx, req.Username)); err != nil {
			if errors.Is(err, errTaken) {
				return model.ErrDuplicateUsername
			}
			return err
		}
		if err := ensureAbsent(tx.FindByEmail(ctx, req.Email)); err != nil {
			if errors.Is(err, errTaken) {
				return model.ErrDuplicateEmail
			}
			return err
		}

		hash, err := s.hash(req.Password)
		if err != nil {
			return err
		}

		created, err = tx.Insert(ctx, model.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		metrics.RecordRegistration(registrationOutcome(err))
		return model.User{}, err
	}

	metrics.RecordRegistration(metrics.OutcomeSuccess)
	slog.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate looks the identifier up as a username first, then as an
// email. Unknown users and wrong passwords are both ErrInvalidCredentials.
// The unknown-user path returns before any hashing work.
func (s *AuthService) Authenticate(ctx context.Context, identifier string, password string) (model.User, error) {
	user, err := s.lookup(ctx, strings.TrimSpace(identifier))
	if errors.Is(err, model.ErrUserNotFound) {
		metrics.RecordLogin(metrics.OutcomeInvalidCredentials)
		return model.User{}, model.ErrInvalidCredentials
	}
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		return model.User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.RecordLogin(metrics.OutcomeInvalidCredentials)
		slog.Debug("login rejected", "user_id", user.ID, "reason", "password mismatch")
		return model.User{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.RecordLogin(metrics.OutcomeInactive)
		return model.User{}, model.ErrInactiveAccount
	}

	now := s.now().UTC()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		return model.User{}, fmt.Errorf("record last login: %w", err)
	}
	user.LastLogin = &now

	metrics.RecordLogin(metrics.OutcomeSuccess)
	return user, nil
}

// IssueSession mints an access token whose subject is the user id.
func (s *AuthService) IssueSession(user model.User) (model.Token, error) {
	issued, err := s.sessions.Issue(strconv.FormatInt(user.ID, 10), 0)
	if err != nil {
		return model.Token{}, err
	}

	metrics.RecordTokenIssued("session")
	return model.Token{
		AccessToken: issued.Value,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(issued.Lifetime / time.Second),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, identifier string, password string) (model.Token, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return model.Token{}, err
	}
	return s.IssueSession(user)
}

// Refresh issues a new token for an already authenticated user.
func (s *AuthService) Refresh(user model.User) (model.Token, error) {
	return s.IssueSession(user)
}

// ResolveUser turns a bearer token into the user it names. Every token
// failure is reported as ErrUnauthenticated; inactive users come back
// together with ErrInactiveAccount.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (model.User, error) {
	subject, err := s.sessions.Resolve(token)
	if err != nil {
		metrics.RecordTokenResolution(tokenOutcome(err))
		slog.Debug("token rejected", "reason", err.Error())
		return model.User{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		metrics.RecordTokenResolution(metrics.OutcomeUnknownSubject)
		return model.User{}, model.ErrUnauthenticated
	}

	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		metrics.RecordTokenResolution(metrics.OutcomeUnknownSubject)
		return model.User{}, model.ErrUnauthenticated
	}
	if err != nil {
		metrics.RecordTokenResolution(metrics.OutcomeError)
		return model.User{}, err
	}

	if !user.IsActive {
		metrics.RecordTokenResolution(metrics.OutcomeInactive)
		return user, model.ErrInactiveAccount
	}

	metrics.RecordTokenResolution(metrics.OutcomeSuccess)
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return s.store.FindByID(ctx, id)
}

// RequestPasswordReset issues a reset token for the account owning email and
// hands it to the notifier. Unknown or inactive accounts succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	issued, err := s.resets.Issue(user.Email, 0)
	if err != nil {
		return err
	}
	metrics.RecordTokenIssued("password_reset")

	if err := s.notifier.NotifyPasswordReset(ctx, user, issued); err != nil {
		return fmt.Errorf("deliver password reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset replaces the password of the account named by a
// valid reset token.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token string, newPassword string) error {
	email, err := s.resets.Resolve(token)
	if err != nil {
		slog.Debug("reset token rejected", "reason", err.Error())
		return fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.FindByEmail(ctx, email)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUnauthenticated
		}
		if err != nil {
			return err
		}
		if !user.IsActive {
			return model.ErrInactiveAccount
		}

		hash, err := s.hash(newPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash

		if err := tx.Update(ctx, user); err != nil {
			return err
		}

		slog.Info("password reset", "user_id", user.ID)
		return nil
	})
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (model.User, error) {
	if identifier == "" {
		return model.User{}, model.ErrUserNotFound
	}

	user, err := s.store.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, model.ErrUserNotFound) {
		return user, err
	}
	return s.store.FindByEmail(ctx, identifier)
}

func (s *AuthService) hash(password string) (string, error) {
	started := time.Now()
	hash, err := s.hasher.Hash(password)
	metrics.ObserveHash(time.Since(started))
	return hash, err
}

var errTaken = errors.New("taken")

func ensureAbsent(_ model.User, err error) error {
	switch {
	case err == nil:
		return errTaken
	case errors.Is(err, model.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrDuplicateUsername):
		return metrics.OutcomeDuplicateUsername
	case errors.Is(err, model.ErrDuplicateEmail):
		return metrics.OutcomeDuplicateEmail
	default:
		return metrics.OutcomeError
	}
}

func tokenOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrTokenExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, model.ErrTokenInvalidSignature):
		return metrics.OutcomeInvalidSignature
	default:
		return metrics.OutcomeMalformed
	}
}

// LogResetNotifier records that a reset token was issued without writing the
// token itself anywhere. It stands in until a mail transport is configured.
type LogResetNotifier struct{}

func (LogResetNotifier) NotifyPasswordReset(_ context.Context, user model.User, token security.IssuedToken) error {
	slog.Info("password reset token issued", "user_id", user.ID, "expires_at", token.ExpiresAt)
	return nil
}
