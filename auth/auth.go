package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Kotlang/summitGo/logger"
	"github.com/dgrijalva/jwt-go"
	grpc_auth "github.com/grpc-ecosystem/go-grpc-middleware/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AdminSubject is the subject of every admin session token.
const AdminSubject = "admin"

type Claims string

const SubjectClaim Claims = "subject"

var (
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidToken  = errors.New("invalid session token")
)

// SessionIssuer issues and checks expiring admin session tokens.
type SessionIssuer struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionIssuer(password, secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login exchanges the shared admin password for a session token.
func (s *SessionIssuer) Login(password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		return "", time.Time{}, ErrWrongPassword
	}
	return s.GetToken(AdminSubject)
}

func (s *SessionIssuer) GetToken(subject string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.StandardClaims{
		Subject:   subject,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken validates signature and expiry and returns the token's subject.
func (s *SessionIssuer) ParseToken(token string) (string, error) {
	parsedToken, err := jwt.ParseWithClaims(
		token,
		&jwt.StandardClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsedToken.Claims.(*jwt.StandardClaims)
	if !ok || !parsedToken.Valid || claims.Subject != AdminSubject {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// VerifyToken is the gRPC auth func for admin-only services.
func (s *SessionIssuer) VerifyToken() grpc_auth.AuthFunc {
	return func(ctx context.Context) (context.Context, error) {
		token, err := grpc_auth.AuthFromMD(ctx, "bearer")
		if err != nil {
			return nil, err
		}

		subject, err := s.ParseToken(token)
		if err != nil {
			logger.Error("Failed validating token", zap.Error(err))
			return nil, status.Errorf(codes.Unauthenticated, "Bad authorization string")
		}

		return context.WithValue(ctx, SubjectClaim, subject), nil
	}
}
