package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

const (
	sessionCookie  = "_session_id"
	sessionIssuer  = "satellite"
	loginPath      = "/users/login"
	DefaultSession = 8 * time.Hour
)

// Sessions issues and verifies the HS256 tokens stored in the UI session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

type SessionOption func(s *Sessions)

func WithSessionClock(c clock.Clock) SessionOption {
	return func(s *Sessions) {
		s.clock = c
	}
}

// NewSessions signs tokens with secret. An empty secret is replaced with a random one,
// which invalidates sessions across restarts.
func NewSessions(secret string, ttl time.Duration, opts ...SessionOption) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultSession
	}

	s := &Sessions{secret: key, ttl: ttl, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Sessions) CookieName() string {
	return sessionCookie
}

func (s *Sessions) Issue(login string) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   login,
		Issuer:    sessionIssuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the login of a valid token.
func (s *Sessions) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}

// RequireSession redirects requests without a valid session cookie to the login page.
func (s *Sessions) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err == nil {
			var login string
			if login, err = s.Verify(token); err == nil {
				c.Set(SessionUserKey, login)
				c.Next()
				return
			}
			zap.S().Named("session").Debugw("rejected session cookie", "path", c.Request.URL.Path, "error", err)
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}
