package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/pkg/auth"
)

func createTestAuthService(t *testing.T, userRepo *MockUserRepo) *AuthService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)
	svc, err := NewAuthService(userRepo, jwtService)
	require.NoError(t, err)
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	userRepo.On("GetByEmail", "student@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByUsername", "student").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 1
	}).Return(nil)

	user, token, err := svc.Register("student", "Student@Example.COM ", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email, "email is normalized before storage")
	assert.NotEmpty(t, token)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	userRepo.On("GetByEmail", "taken@example.com").Return(&entity.User{ID: 1}, nil)

	_, _, err := svc.Register("newuser", "taken@example.com", "secret123")

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	userRepo.On("GetByEmail", "fresh@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByUsername", "taken").Return(&entity.User{ID: 1}, nil)

	_, _, err := svc.Register("taken", "fresh@example.com", "secret123")

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userRepo.On("GetByEmail", "student@example.com").Return(&entity.User{
		ID: 1, Email: "student@example.com", Password: string(hashed), Role: "user",
	}, nil)

	user, token, err := svc.Login("student@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.NotEmpty(t, token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userRepo.On("GetByEmail", "student@example.com").Return(&entity.User{
		ID: 1, Password: string(hashed),
	}, nil)

	_, _, err = svc.Login("student@example.com", "not-the-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepo)
	svc := createTestAuthService(t, userRepo)

	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login("ghost@example.com", "whatever")

	// Unknown account and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
