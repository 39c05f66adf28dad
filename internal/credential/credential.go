// internal/credential/credential.go
//
// Password hashing and bearer-token handling.
// Responsibilities:
//   - Hash / Verify: bcrypt password credentials.
//   - IssueToken / VerifyToken: HS256 JWTs carrying {username, id}.
//
// The signing secret is supplied at construction so that tests (and multiple
// servers in one process) never share key material through globals.

package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/bloglist/internal/apperr"
)

// MinPasswordLen is the shortest password accepted by Hash.
const MinPasswordLen = 3

// maxPasswordLen is bcrypt's input limit.
const maxPasswordLen = 72

// Claims is the identity carried by a bearer token.
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

// Service hashes passwords and signs/verifies tokens with one secret.
type Service struct {
	secret []byte
	cost   int
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Values outside bcrypt's range fall back to
// bcrypt.DefaultCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithTTL makes issued tokens expire after ttl. Zero means tokens never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New returns a Service signing with secret.
func New(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("credential: empty signing secret")
	}
	s := &Service{
		secret: append([]byte(nil), secret...),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Hash returns a salted bcrypt hash of password.
func (s *Service) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", apperr.Validation(fmt.Sprintf("password must be at least %d characters long", MinPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return "", apperr.Validation(fmt.Sprintf("password must not exceed %d bytes", maxPasswordLen))
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperr.Internal("hash password", err)
	}
	return string(h), nil
}

// Verify reports whether password matches hash. A mismatch is not an error;
// a malformed hash is.
func (s *Service) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperr.Internal("verify password", err)
	}
}

// IssueToken signs a token for the given identity.
func (s *Service) IssueToken(username, id string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		UserID:   id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("sign token", err)
	}
	return ss, nil
}

// VerifyToken checks the signature of token and returns its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Auth("token missing or invalid")
	}
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Auth("token expired")
		}
		return nil, apperr.Auth("token missing or invalid")
	}
	if claims.UserID == "" {
		return nil, apperr.Auth("token missing or invalid")
	}
	return claims, nil
}
