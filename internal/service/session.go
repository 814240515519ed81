package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netwave/isp-portal-bfa-go/internal/domain"
	"github.com/netwave/isp-portal-bfa-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var sessionTracer = otel.Tracer("service/session")

const bcryptCost = 12

// SessionService verifies bearer tokens issued by the identity provider and
// publishes session lifecycle events. Logout revokes the session: a revoked
// token fails verification on the next navigation, which is how identity
// context teardown happens without any global "current user" state.
type SessionService struct {
	jwtSecret   []byte
	accessTTL   time.Duration
	credentials port.CredentialStore
	devAuth     bool
	logger      *zap.Logger

	mu          sync.RWMutex
	revoked     map[string]time.Time // user ID -> revoked-at
	subscribers map[int]chan domain.SessionEvent
	nextSub     int
}

// NewSessionService creates the session provider adapter. jwtSecret is the
// identity provider's HS256 signing secret; tokens are verified locally
// without a network round trip.
func NewSessionService(jwtSecret string, accessTTL time.Duration, credentials port.CredentialStore, devAuth bool, logger *zap.Logger) *SessionService {
	return &SessionService{
		jwtSecret:   []byte(jwtSecret),
		accessTTL:   accessTTL,
		credentials: credentials,
		devAuth:     devAuth,
		logger:      logger,
		revoked:     make(map[string]time.Time),
		subscribers: make(map[int]chan domain.SessionEvent),
	}
}

// sessionClaims are the claims carried in provider-issued access tokens.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// VerifySession validates a bearer token and returns the session it carries.
func (s *SessionService) VerifySession(ctx context.Context, tokenString string) (*domain.Session, error) {
	_, span := sessionTracer.Start(ctx, "SessionService.VerifySession")
	defer span.End()

	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	session := &domain.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	// Tokens issued before the user's last logout are revoked.
	s.mu.RLock()
	revokedAt, wasRevoked := s.revoked[session.UserID]
	s.mu.RUnlock()
	if wasRevoked && !session.IssuedAt.After(revokedAt) {
		return nil, &domain.ErrUnauthorized{Message: "session revoked"}
	}

	return session, nil
}

// Logout revokes all of the user's outstanding tokens and publishes the
// logout event.
func (s *SessionService) Logout(ctx context.Context, userID string) {
	_, span := sessionTracer.Start(ctx, "SessionService.Logout")
	defer span.End()

	s.mu.Lock()
	s.revoked[userID] = time.Now()
	s.mu.Unlock()

	s.logger.Info("session: user logged out", zap.String("user_id", userID))
	s.publish(domain.SessionEvent{Type: domain.SessionLogout, UserID: userID, At: time.Now()})
}

// DevLogin issues a local access token after a bcrypt credential check
// against the dev_logins table. Only available when DEV_AUTH is enabled; in
// production the frontend obtains tokens from the identity provider directly.
func (s *SessionService) DevLogin(ctx context.Context, email, password string) (token string, expiresIn int, err error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.DevLogin")
	defer span.End()

	if !s.devAuth || s.credentials == nil {
		return "", 0, &domain.ErrForbidden{Action: "dev login disabled"}
	}

	userID, hash, err := s.credentials.GetDevCredential(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return "", 0, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return "", 0, fmt.Errorf("get dev credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.Warn("session: failed dev login", zap.String("email", email))
		return "", 0, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	now := time.Now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "isp-portal-bfa",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("session: dev login", zap.String("user_id", userID))
	s.publish(domain.SessionEvent{Type: domain.SessionLogin, UserID: userID, At: now})
	return signed, int(s.accessTTL.Seconds()), nil
}

// HashPassword hashes a password for seeding dev credentials.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// Subscribe registers for session lifecycle events. The returned cancel
// func must be called to release the subscription.
func (s *SessionService) Subscribe() (<-chan domain.SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.SessionEvent, 16)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *SessionService) publish(ev domain.SessionEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default: // slow subscriber, drop rather than block
		}
	}
}
