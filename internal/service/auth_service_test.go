package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spotly/internal/auth"
	apperrors "spotly/internal/errors"
	"spotly/internal/model"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret", "test-refresh-secret", 0, 0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedKind  apperrors.Kind
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Name: "Test User", Email: "Test@Example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "Test@Example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "user already exists",
			input: RegisterInput{Name: "Existing User", Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:  "duplicate detected on insert",
			input: RegisterInput{Name: "Racer", Email: "race@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:  "database error",
			input: RegisterInput{Name: "Test User", Email: "db@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "db@example.com").Return(nil, errors.New("connection refused"))
			},
			expectedKind: apperrors.KindInternal,
		},
		{
			name:  "name too short after trimming",
			input: RegisterInput{Name: " A ", Email: "short@example.com", Password: "password123"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "short@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedKind: apperrors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestJWT(), nil, nil)
			result, err := service.Register(context.Background(), tt.input)

			switch {
			case tt.expectedError != nil:
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			case tt.expectedKind != "":
				assert.True(t, apperrors.Is(err, tt.expectedKind), "got %v", err)
				assert.Nil(t, result)
			default:
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", result.User.Email)
				assert.Equal(t, model.RoleUser, result.User.Role)
				assert.True(t, result.User.IsActive)
				assert.NotEqual(t, "password123", result.User.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("password123")))
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	active := &model.User{ID: uuid.New(), Email: "test@example.com", Role: model.RoleUser, IsActive: true, PasswordHash: hashed(t, "password123")}
	disabled := &model.User{ID: uuid.New(), Email: "off@example.com", Role: model.RoleUser, IsActive: false, PasswordHash: hashed(t, "password123")}
	oauthOnly := &model.User{ID: uuid.New(), Email: "oauth@example.com", Role: model.RoleUser, IsActive: true}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(active, nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(active, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "deactivated account with correct password",
			email:    "off@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "off@example.com").Return(disabled, nil)
			},
			expectedError: ErrAccountDisabled,
		},
		{
			name:     "deactivated account with wrong password",
			email:    "off@example.com",
			password: "nope-nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "off@example.com").Return(disabled, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "oauth account has no password",
			email:    "oauth@example.com",
			password: "",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "oauth@example.com").Return(oauthOnly, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := newTestJWT()
			service := NewAuthService(mockRepo, jwtService, nil, nil)

			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.email, result.User.Email)

				claims, err := jwtService.ValidateAccessToken(result.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, active.ID.String(), claims.UserID)
				assert.Equal(t, model.RoleUser, claims.Role)

				_, err = jwtService.ValidateRefreshToken(result.RefreshToken)
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginDoesNotRevealUnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "real@example.com").
		Return(&model.User{ID: uuid.New(), Email: "real@example.com", IsActive: true, PasswordHash: hashed(t, "right-pass")}, nil)

	service := NewAuthService(mockRepo, newTestJWT(), nil, nil)
	_, unknown := service.Login(context.Background(), "ghost@example.com", "whatever")
	_, wrong := service.Login(context.Background(), "real@example.com", "whatever")

	assert.Equal(t, unknown, wrong)
	assert.Equal(t, "Invalid email or password", unknown.Error())
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := newTestJWT()
	user := &model.User{ID: uuid.New(), Email: "test@example.com", Role: model.RoleUser, IsActive: true}
	refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)
	access, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)

	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedRole  model.Role
	}{
		{
			name:  "uses the current role",
			token: refresh,
			setupMock: func(m *MockUserRepository) {
				promoted := *user
				promoted.Role = model.RoleBusinessOwner
				m.On("FindByID", mock.Anything, user.ID).Return(&promoted, nil)
			},
			expectedRole: model.RoleBusinessOwner,
		},
		{
			name:          "access token is not a refresh token",
			token:         access,
			setupMock:     func(m *MockUserRepository) {},
			expectedError: ErrInvalidRefreshToken,
		},
		{
			name:          "garbage",
			token:         "not-a-token",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: ErrInvalidRefreshToken,
		},
		{
			name:  "user deleted",
			token: refresh,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, user.ID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidRefreshToken,
		},
		{
			name:  "user deactivated",
			token: refresh,
			setupMock: func(m *MockUserRepository) {
				off := *user
				off.IsActive = false
				m.On("FindByID", mock.Anything, user.ID).Return(&off, nil)
			},
			expectedError: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, jwtService, nil, nil)
			token, err := service.RefreshToken(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateAccessToken(token)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	id := uuid.New()
	claims := &auth.Claims{UserID: id.String()}

	tests := []struct {
		name          string
		claims        *auth.Claims
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:   "active user",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, IsActive: true}, nil)
			},
		},
		{
			name:          "malformed id",
			claims:        &auth.Claims{UserID: "nope"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: ErrTokenUserNotFound,
		},
		{
			name:   "user gone",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrTokenUserNotFound,
		},
		{
			name:   "deactivated after token was issued",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, IsActive: false}, nil)
			},
			expectedError: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestJWT(), nil, nil)
			user, err := service.Authenticate(context.Background(), tt.claims)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, user.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "me@example.com"}, nil)
	mockRepo.On("SavedSpotIDs", mock.Anything, id).Return([]string{"s1", "s2"}, nil)

	service := NewAuthService(mockRepo, newTestJWT(), nil, nil)
	user, err := service.Me(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, user.SavedSpots)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_OAuthLoginURL(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), newTestJWT(), nil, nil)
		_, err := service.OAuthLoginURL(context.Background())
		assert.Equal(t, ErrOAuthNotConfigured, err)
	})

	t.Run("stores state and verifier", func(t *testing.T) {
		provider := new(MockOAuthProvider)
		states := new(MockStateStore)

		var savedState string
		var saved auth.OAuthState
		states.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("auth.OAuthState")).
			Run(func(args mock.Arguments) {
				savedState = args.String(1)
				saved = args.Get(2).(auth.OAuthState)
			}).Return(nil)
		provider.On("AuthURL", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return("https://idp.example.com/authorize")

		service := NewAuthService(new(MockUserRepository), newTestJWT(), provider, states)
		url, err := service.OAuthLoginURL(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "https://idp.example.com/authorize", url)
		assert.NotEmpty(t, savedState)
		assert.NotEmpty(t, saved.CodeVerifier)

		call := provider.Calls[0]
		assert.Equal(t, savedState, call.Arguments.String(0))
		assert.NotEqual(t, saved.CodeVerifier, call.Arguments.String(1))
	})
}

func TestAuthService_OAuthCallback(t *testing.T) {
	existingID := uuid.New()
	identity := &auth.OAuthIdentity{Subject: "sub-1", Email: "Pat@Example.com", EmailVerified: true, Name: "Pat", Picture: "https://img/p.png"}

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockStateStore, *MockOAuthProvider)
		expectedError error
		check         func(t *testing.T, user *model.User)
	}{
		{
			name: "unknown state",
			setupMock: func(m *MockUserRepository, s *MockStateStore, p *MockOAuthProvider) {
				s.On("Consume", mock.Anything, "state-1").Return(nil, errors.New("oauth state not found"))
			},
			expectedError: ErrInvalidOAuthState,
		},
		{
			name: "known subject",
			setupMock: func(m *MockUserRepository, s *MockStateStore, p *MockOAuthProvider) {
				s.On("Consume", mock.Anything, "state-1").Return(&auth.OAuthState{CodeVerifier: "v"}, nil)
				p.On("Exchange", mock.Anything, "code-1", "v").Return(identity, nil)
				m.On("FindByOAuthSubject", mock.Anything, "sub-1").Return(&model.User{ID: existingID, Email: "pat@example.com", IsActive: true}, nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, existingID, user.ID)
			},
		},
		{
			name: "links by email",
			setupMock: func(m *MockUserRepository, s *MockStateStore, p *MockOAuthProvider) {
				s.On("Consume", mock.Anything, "state-1").Return(&auth.OAuthState{CodeVerifier: "v"}, nil)
				p.On("Exchange", mock.Anything, "code-1", "v").Return(identity, nil)
				m.On("FindByOAuthSubject", mock.Anything, "sub-1").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "Pat@Example.com").Return(&model.User{ID: existingID, Email: "pat@example.com", IsActive: true}, nil)
				m.On("UpdateFields", mock.Anything, existingID, mock.MatchedBy(func(f map[string]any) bool {
					return f["oauth_subject"] == "sub-1" && f["is_verified"] == true && f["avatar"] == "https://img/p.png"
				})).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, existingID, user.ID)
				assert.True(t, user.IsVerified)
				require.NotNil(t, user.OAuthSubject)
				assert.Equal(t, "sub-1", *user.OAuthSubject)
			},
		},
		{
			name: "creates a new user",
			setupMock: func(m *MockUserRepository, s *MockStateStore, p *MockOAuthProvider) {
				s.On("Consume", mock.Anything, "state-1").Return(&auth.OAuthState{CodeVerifier: "v"}, nil)
				p.On("Exchange", mock.Anything, "code-1", "v").Return(identity, nil)
				m.On("FindByOAuthSubject", mock.Anything, "sub-1").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "Pat@Example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, "Pat", user.Name)
				assert.Equal(t, "pat@example.com", user.Email)
				assert.True(t, user.IsVerified)
				assert.Empty(t, user.PasswordHash)
			},
		},
		{
			name: "deactivated user",
			setupMock: func(m *MockUserRepository, s *MockStateStore, p *MockOAuthProvider) {
				s.On("Consume", mock.Anything, "state-1").Return(&auth.OAuthState{CodeVerifier: "v"}, nil)
				p.On("Exchange", mock.Anything, "code-1", "v").Return(identity, nil)
				m.On("FindByOAuthSubject", mock.Anything, "sub-1").Return(&model.User{ID: existingID, IsActive: false}, nil)
			},
			expectedError: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			states := new(MockStateStore)
			provider := new(MockOAuthProvider)
			tt.setupMock(mockRepo, states, provider)

			service := NewAuthService(mockRepo, newTestJWT(), provider, states)
			result, err := service.OAuthCallback(context.Background(), "code-1", "state-1")

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.True(t, strings.Count(result.AccessToken, ".") == 2)
				tt.check(t, result.User)
			}

			mockRepo.AssertExpectations(t)
			states.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}
