package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
)

// verificationCodeTTL bounds how long an emailed verification code is usable.
const verificationCodeTTL = 20 * time.Minute

const minPasswordLength = 8

// DuplicationError reports which unique identity fields collided on signup.
// Several flags can be set at once when one payload collides on multiple
// constraints.
type DuplicationError struct {
	Duplication repositories.Duplication
}

func (e *DuplicationError) Error() string {
	var fields []string
	if e.Duplication.Email {
		fields = append(fields, "email")
	}
	if e.Duplication.Username {
		fields = append(fields, "username")
	}
	if e.Duplication.EnrollmentNumber {
		fields = append(fields, "enrollment number")
	}
	return "already in use: " + strings.Join(fields, ", ")
}

type RegisterInput struct {
	Username         string `json:"username" validate:"required,min=3,max=32"`
	Email            string `json:"email" validate:"required,email"`
	EnrollmentNumber string `json:"enrollmentNumber" validate:"omitempty,numeric,min=10,max=16"`
	Password         string `json:"password" validate:"required,min=8"`
	FullName         string `json:"fullName" validate:"required"`
}

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthService interface {
	RegisterStudent(ctx context.Context, input RegisterInput) (*models.User, string, error)
	RegisterOrganizer(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	VerifyEmail(ctx context.Context, username, code string) error
	CheckAdminGatePassword(password string) error
}

type authService struct {
	userRepo     repositories.UserRepository
	gatePassword []byte
}

func NewAuthService(userRepo repositories.UserRepository, adminGatePassword string) AuthService {
	return &authService{
		userRepo:     userRepo,
		gatePassword: []byte(adminGatePassword),
	}
}

// RegisterStudent creates a student identity. The returned string is the raw
// verification code to be emailed; only its hash is stored.
func (s *authService) RegisterStudent(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if input.EnrollmentNumber == "" {
		return nil, "", ErrEnrollmentRequired
	}
	enrollment := input.EnrollmentNumber
	return s.register(ctx, input, models.RoleStudent, &enrollment)
}

// RegisterOrganizer creates an organizer identity; organizers never carry an
// enrollment number.
func (s *authService) RegisterOrganizer(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	return s.register(ctx, input, models.RoleOrganizer, nil)
}

func (s *authService) register(ctx context.Context, input RegisterInput, role models.UserRole, enrollment *string) (*models.User, string, error) {
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	// Pre-check gives the client every colliding field at once. It is racy by
	// design; the unique constraints below are the actual enforcement.
	duplication, err := s.userRepo.FindDuplicates(ctx, input.Email, input.Username, enrollment)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing identity: %w", err)
	}
	if duplication.Any() {
		return nil, "", &DuplicationError{Duplication: duplication}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	code := uuid.NewString()
	codeHash := hashVerificationCode(code)
	now := time.Now()

	user := &models.User{
		Username:         input.Username,
		Email:            input.Email,
		EnrollmentNumber: enrollment,
		Role:             role,
		PasswordHash:     string(hashedPassword),
		FullName:         input.FullName,
		Skills:           []string{},
		VerifyCodeHash:   &codeHash,
		VerifyCodeSentAt: &now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	return user, code, nil
}

// Login resolves the identity by whichever identifier shape was submitted:
// email, enrollment number, or username. Not-found and wrong-password remain
// distinct errors; classification decides what the client sees.
func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.lookupByIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) lookupByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	switch {
	case strings.Contains(identifier, "@"):
		return s.userRepo.GetByEmail(ctx, identifier)
	case isAllDigits(identifier) && len(identifier) >= 10:
		return s.userRepo.GetByEnrollmentNumber(ctx, identifier)
	default:
		return s.userRepo.GetByUsername(ctx, identifier)
	}
}

// VerifyEmail consumes a verification code. Codes expire 20 minutes after
// issuance and are single-use: success clears the stored hash.
func (s *authService) VerifyEmail(ctx context.Context, username, code string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Verified {
		return ErrAlreadyVerified
	}
	if user.VerifyCodeHash == nil || user.VerifyCodeSentAt == nil {
		return ErrVerificationMismatch
	}
	if time.Since(*user.VerifyCodeSentAt) > verificationCodeTTL {
		return ErrVerificationExpired
	}

	codeHash := hashVerificationCode(code)
	if subtle.ConstantTimeCompare([]byte(codeHash), []byte(*user.VerifyCodeHash)) != 1 {
		return ErrVerificationMismatch
	}

	return s.userRepo.SetVerified(ctx, user.ID)
}

// CheckAdminGatePassword compares the shared organizer password. This gate is
// deliberately not tied to an identity; it only unlocks the organizer routes
// in combination with a regular session.
func (s *authService) CheckAdminGatePassword(password string) error {
	if subtle.ConstantTimeCompare([]byte(password), s.gatePassword) != 1 {
		return ErrAdminGateDenied
	}
	return nil
}

func hashVerificationCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
