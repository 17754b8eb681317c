package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-auth-core/internal/model"
)

const (
	DefaultSessionLifetime = 24 * time.Hour
	DefaultResetLifetime   = time.Hour
	MinSecretLength        = 32
)

type Clock func() time.Time

// IssuedToken is a freshly signed token together with the lifetime it was
// minted with.
type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Lifetime  time.Duration
}

// TokenCodec signs and resolves HS256 JWTs carrying a subject and an expiry.
// Session and password-reset tokens are the same codec with different
// default lifetimes.
type TokenCodec struct {
	secret          []byte
	defaultLifetime time.Duration
	now             Clock
}

type CodecOption func(*TokenCodec)

func WithClock(clock Clock) CodecOption {
	return func(c *TokenCodec) {
		if clock != nil {
			c.now = clock
		}
	}
}

func NewTokenCodec(secret string, defaultLifetime time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if defaultLifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	codec := &TokenCodec{
		secret:          []byte(secret),
		defaultLifetime: defaultLifetime,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

// NewSessionCodec builds the codec used for access tokens. A non-positive
// lifetime falls back to DefaultSessionLifetime.
func NewSessionCodec(secret string, lifetime time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	return NewTokenCodec(secret, lifetime, opts...)
}

// NewResetCodec builds the codec used for password-reset tokens, whose
// subject is an email address.
func NewResetCodec(secret string, lifetime time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if lifetime <= 0 {
		lifetime = DefaultResetLifetime
	}
	return NewTokenCodec(secret, lifetime, opts...)
}

func (c *TokenCodec) DefaultLifetime() time.Duration {
	return c.defaultLifetime
}

// Issue signs a token for subject. A non-positive lifetime uses the codec
// default.
func (c *TokenCodec) Issue(subject string, lifetime time.Duration) (IssuedToken, error) {
	if strings.TrimSpace(subject) == "" {
		return IssuedToken{}, errors.New("token subject is required")
	}
	if lifetime <= 0 {
		lifetime = c.defaultLifetime
	}

	// NumericDate carries whole seconds; truncating here keeps the reported
	// times equal to the signed claims.
	now := c.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(lifetime)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return IssuedToken{
		Value:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Lifetime:  lifetime,
	}, nil
}

// Resolve returns the subject of a valid token. The signature is verified
// before any claim is looked at; expiry is checked against the codec clock.
func (c *TokenCodec) Resolve(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", model.ErrTokenMalformed
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", classifyTokenError(err)
	}
	if !parsed.Valid {
		return "", model.ErrTokenInvalidSignature
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", model.ErrTokenMalformed
	}

	return claims.Subject, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", model.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", model.ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", model.ErrTokenMalformed, err)
	}
}
