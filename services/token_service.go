package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hackslate/hackathon-system/models"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// SessionClaims is the decoded identity claim set of a session token. The
// UserID is the only claim used for lookups; the rest is display data frozen
// at issue time and may be stale.
type SessionClaims struct {
	UserID   int
	Username string
	FullName string
	Email    string
	Role     models.UserRole
	Verified bool
}

type TokenService interface {
	IssueSessionToken(user *models.User) (string, error)
	VerifySessionToken(token string) (*SessionClaims, error)
	IssueAdminGateToken() (string, error)
	VerifyAdminGateToken(token string) error
	SessionTTL() time.Duration
	AdminGateTTL() time.Duration
}

type tokenService struct {
	secret     []byte
	sessionTTL time.Duration
	gateTTL    time.Duration
}

func NewTokenService(secret string, sessionTTL, gateTTL time.Duration) TokenService {
	return &tokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		gateTTL:    gateTTL,
	}
}

func (s *tokenService) IssueSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"name":     user.FullName,
		"email":    user.Email,
		"role":     string(user.Role),
		"verified": user.Verified,
		"exp":      now.Add(s.sessionTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, ErrTokenInvalid
	}

	session := &SessionClaims{UserID: int(userID)}
	if v, ok := claims["username"].(string); ok {
		session.Username = v
	}
	if v, ok := claims["name"].(string); ok {
		session.FullName = v
	}
	if v, ok := claims["email"].(string); ok {
		session.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		session.Role = models.UserRole(v)
	}
	if v, ok := claims["verified"].(bool); ok {
		session.Verified = v
	}
	return session, nil
}

// IssueAdminGateToken mints the short-lived flag-only token of the organizer
// gate. It carries no identity on purpose.
func (s *tokenService) IssueAdminGateToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"admin_gate": true,
		"exp":        now.Add(s.gateTTL).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin gate token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) VerifyAdminGateToken(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	if flag, ok := claims["admin_gate"].(bool); !ok || !flag {
		return ErrTokenInvalid
	}
	return nil
}

func (s *tokenService) SessionTTL() time.Duration   { return s.sessionTTL }
func (s *tokenService) AdminGateTTL() time.Duration { return s.gateTTL }

func (s *tokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
