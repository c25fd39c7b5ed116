package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
)

type fakeUserRepo struct {
	repositories.UserRepository

	duplication repositories.Duplication
	created     *models.User
	verifiedID  int

	byEmail      map[string]*models.User
	byUsername   map[string]*models.User
	byEnrollment map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:      map[string]*models.User{},
		byUsername:   map[string]*models.User{},
		byEnrollment: map[string]*models.User{},
	}
}

func (r *fakeUserRepo) FindDuplicates(_ context.Context, _, _ string, _ *string) (repositories.Duplication, error) {
	return r.duplication, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = 1
	r.created = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := r.byUsername[username]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEnrollmentNumber(_ context.Context, enrollment string) (*models.User, error) {
	if user, ok := r.byEnrollment[enrollment]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) SetVerified(_ context.Context, id int) error {
	r.verifiedID = id
	return nil
}

func (r *fakeUserRepo) addUser(user *models.User) {
	r.byEmail[user.Email] = user
	r.byUsername[user.Username] = user
	if user.EnrollmentNumber != nil {
		r.byEnrollment[*user.EnrollmentNumber] = user
	}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:         "ada",
		Email:            "ada@example.com",
		EnrollmentNumber: "2026000123",
		Password:         "correct-horse",
		FullName:         "Ada Lovelace",
	}
}

func TestRegisterStudentRequiresEnrollment(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "gate")

	input := validRegisterInput()
	input.EnrollmentNumber = ""
	_, _, err := svc.RegisterStudent(context.Background(), input)
	assert.ErrorIs(t, err, ErrEnrollmentRequired)
}

func TestRegisterStudentShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "gate")

	input := validRegisterInput()
	input.Password = "short"
	_, _, err := svc.RegisterStudent(context.Background(), input)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterStudentDuplication(t *testing.T) {
	repo := newFakeUserRepo()
	repo.duplication = repositories.Duplication{Email: true, Username: true, EnrollmentNumber: true}
	svc := NewAuthService(repo, "gate")

	_, _, err := svc.RegisterStudent(context.Background(), validRegisterInput())

	var dup *DuplicationError
	require.ErrorAs(t, err, &dup)
	assert.True(t, dup.Duplication.Email)
	assert.True(t, dup.Duplication.Username)
	assert.True(t, dup.Duplication.EnrollmentNumber)
}

func TestRegisterStudentSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "gate")

	user, code, err := svc.RegisterStudent(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, code)

	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.EnrollmentNumber)
	assert.Equal(t, "2026000123", *user.EnrollmentNumber)
	assert.False(t, user.Verified)

	// The raw code is never persisted, only its hash.
	require.NotNil(t, repo.created.VerifyCodeHash)
	assert.NotEqual(t, code, *repo.created.VerifyCodeHash)
	assert.Equal(t, hashVerificationCode(code), *repo.created.VerifyCodeHash)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("correct-horse")))
}

func TestRegisterOrganizerHasNoEnrollment(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "gate")

	input := validRegisterInput()
	input.EnrollmentNumber = ""
	user, _, err := svc.RegisterOrganizer(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, models.RoleOrganizer, user.Role)
	assert.Nil(t, user.EnrollmentNumber)
}

func loginFixture(t *testing.T) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	enrollment := "2026000123"
	repo := newFakeUserRepo()
	repo.addUser(&models.User{
		ID:               1,
		Username:         "ada",
		Email:            "ada@example.com",
		EnrollmentNumber: &enrollment,
		PasswordHash:     string(hash),
	})
	return repo
}

func TestLoginIdentifierResolution(t *testing.T) {
	for _, identifier := range []string{"ada@example.com", "2026000123", "ada"} {
		svc := NewAuthService(loginFixture(t), "gate")
		user, err := svc.Login(context.Background(), LoginInput{Identifier: identifier, Password: "correct-horse"})
		require.NoError(t, err, "identifier %q", identifier)
		assert.Equal(t, 1, user.ID)
		assert.Empty(t, user.PasswordHash)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc := NewAuthService(loginFixture(t), "gate")

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(loginFixture(t), "gate")

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func verifyFixture(t *testing.T, code string, sentAt time.Time, verified bool) *fakeUserRepo {
	t.Helper()
	hash := hashVerificationCode(code)
	repo := newFakeUserRepo()
	repo.addUser(&models.User{
		ID:               1,
		Username:         "ada",
		Email:            "ada@example.com",
		Verified:         verified,
		VerifyCodeHash:   &hash,
		VerifyCodeSentAt: &sentAt,
	})
	return repo
}

func TestVerifyEmailSuccess(t *testing.T) {
	repo := verifyFixture(t, "the-code", time.Now(), false)
	svc := NewAuthService(repo, "gate")

	require.NoError(t, svc.VerifyEmail(context.Background(), "ada", "the-code"))
	assert.Equal(t, 1, repo.verifiedID)
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	repo := verifyFixture(t, "the-code", time.Now().Add(-21*time.Minute), false)
	svc := NewAuthService(repo, "gate")

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "ada", "the-code"), ErrVerificationExpired)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	repo := verifyFixture(t, "the-code", time.Now(), false)
	svc := NewAuthService(repo, "gate")

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "ada", "not-the-code"), ErrVerificationMismatch)
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	repo := verifyFixture(t, "the-code", time.Now(), true)
	svc := NewAuthService(repo, "gate")

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "ada", "the-code"), ErrAlreadyVerified)
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "gate")

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "ghost", "any"), ErrUserNotFound)
}

func TestCheckAdminGatePassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "open-sesame")

	assert.NoError(t, svc.CheckAdminGatePassword("open-sesame"))
	assert.ErrorIs(t, svc.CheckAdminGatePassword("wrong"), ErrAdminGateDenied)
	assert.ErrorIs(t, svc.CheckAdminGatePassword(""), ErrAdminGateDenied)
}
