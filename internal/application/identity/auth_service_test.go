package identity

import (
	"context"
	"testing"
	"time"

	"github.com/billhub/backend/internal/domain/identity"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/billhub/backend/internal/infrastructure/auth"
	"github.com/billhub/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func newTestAuthService(userRepo identity.UserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
	return NewAuthService(userRepo, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
}

func TestAuthService_Register_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	req := RegisterRequest{
		FullName: "Jordan Smith",
		Email:    "jordan@billhub.test",
		Password: "secret123",
	}

	mockRepo.On("ExistsByEmail", ctx, req.Email).Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	result, err := service.Register(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "jordan@billhub.test", result.User.Email)
	assert.Equal(t, "user", result.User.Role)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	req := RegisterRequest{
		FullName: "Jordan Smith",
		Email:    "jordan@billhub.test",
		Password: "secret123",
	}

	mockRepo.On("ExistsByEmail", ctx, req.Email).Return(true, nil)

	result, err := service.Register(ctx, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	assert.Equal(t, "Email already registered", domainErr.Message)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	req := RegisterRequest{
		FullName: "Jordan Smith",
		Email:    "jordan@billhub.test",
		Password: "onlyletters",
	}

	mockRepo.On("ExistsByEmail", ctx, req.Email).Return(false, nil)

	result, err := service.Register(ctx, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestAuthService_Login_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	user, err := identity.NewUser("Jordan Smith", "jordan@billhub.test", "secret123", "")
	require.NoError(t, err)

	mockRepo.On("FindByEmail", ctx, "jordan@billhub.test").Return(user, nil)
	mockRepo.On("Save", ctx, user).Return(nil)

	result, err := service.Login(ctx, LoginRequest{
		Email:    "jordan@billhub.test",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotNil(t, user.LastLoginAt)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	user, err := identity.NewUser("Jordan Smith", "jordan@billhub.test", "secret123", "")
	require.NoError(t, err)

	mockRepo.On("FindByEmail", ctx, "jordan@billhub.test").Return(user, nil)

	result, err := service.Login(ctx, LoginRequest{
		Email:    "jordan@billhub.test",
		Password: "wrong-password1",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	assert.Equal(t, "Invalid email or password", domainErr.Message)
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "nobody@billhub.test").
		Return(nil, shared.NewNotFoundError("User not found"))

	result, err := service.Login(ctx, LoginRequest{
		Email:    "nobody@billhub.test",
		Password: "whatever1",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	// Same message as a wrong password so accounts cannot be probed
	assert.Equal(t, "Invalid email or password", domainErr.Message)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	user, err := identity.NewUser("Jordan Smith", "jordan@billhub.test", "secret123", "")
	require.NoError(t, err)
	require.NoError(t, user.Deactivate())

	mockRepo.On("FindByEmail", ctx, "jordan@billhub.test").Return(user, nil)

	result, err := service.Login(ctx, LoginRequest{
		Email:    "jordan@billhub.test",
		Password: "secret123",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()

	mockRepo.On("ExistsByEmail", ctx, "jordan@billhub.test").Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	registered, err := service.Register(ctx, RegisterRequest{
		FullName: "Jordan Smith",
		Email:    "jordan@billhub.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	pair, err := service.Refresh(ctx, registered.Tokens.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, registered.Tokens.RefreshToken, pair.RefreshToken)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	pair, err := service.Refresh(context.Background(), "not-a-token")

	assert.Error(t, err)
	assert.Nil(t, pair)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
}

func TestAuthService_Logout_BlacklistsToken(t *testing.T) {
	mockRepo := new(MockUserRepository)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	service := NewAuthService(mockRepo, jwtService, blacklist, zap.NewNop())

	ctx := context.Background()
	id := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: id,
		UserID:   id,
		Username: "jordan@billhub.test",
		Role:     "user",
	})
	require.NoError(t, err)

	err = service.Logout(ctx, pair.AccessToken)
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestAuthService_Logout_InvalidTokenIsNoOp(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	err := service.Logout(context.Background(), "garbage")

	assert.NoError(t, err)
}

func TestAuthService_Me_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := newTestAuthService(mockRepo)

	ctx := context.Background()
	user, err := identity.NewUser("Jordan Smith", "jordan@billhub.test", "secret123", identity.RoleAdmin)
	require.NoError(t, err)

	mockRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	result, err := service.Me(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.ID)
	assert.Equal(t, "admin", result.Role)
	mockRepo.AssertExpectations(t)
}
