package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spotly/internal/auth"
	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/repository"
	"spotly/internal/validation"
)

const bcryptCost = 10

// RegisterInput is the payload of a password registration.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// AuthResult is returned by every successful login flow.
type AuthResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	OAuthLoginURL(ctx context.Context) (string, error)
	OAuthCallback(ctx context.Context, code, state string) (*AuthResult, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	oauth      auth.OAuthProvider
	states     auth.StateStoreInterface
	now        func() time.Time
}

// NewAuthService creates a new authentication service. provider may be nil when OAuth is not configured.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, provider auth.OAuthProvider, states auth.StateStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		oauth:      provider,
		states:     states,
		now:        time.Now,
	}
}

// Register creates a new user with hashed password and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("check user existence", err)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        model.NormalizeEmail(in.Email),
		PasswordHash: string(hashedPassword),
		Phone:        in.Phone,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := validation.Struct(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, apperrors.Internal("create user", err)
	}

	return s.issue(user)
}

// Login authenticates a user and returns access and refresh tokens.
// The password is checked before the active flag so a deactivated account is only revealed to its owner.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Internal("find user", err)
	}

	// Verify password
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issue(user)
}

// RefreshToken validates a refresh token and returns a new access token carrying the user's current role.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", apperrors.Internal("find user", err)
	}
	if !user.IsActive {
		return "", ErrAccountDisabled
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", apperrors.Internal("generate access token", err)
	}
	return accessToken, nil
}

// Authenticate resolves verified token claims to a live, active user.
func (s *authService) Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenUserNotFound
		}
		return nil, apperrors.Internal("find user", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// Me returns the user together with saved spot ids.
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "find user")
	}
	saved, err := s.userRepo.SavedSpotIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("load saved spots", err)
	}
	user.SavedSpots = saved
	return user, nil
}

// OAuthLoginURL starts an authorization code flow and returns the provider URL.
func (s *authService) OAuthLoginURL(ctx context.Context) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthNotConfigured
	}

	state, err := auth.NewState()
	if err != nil {
		return "", apperrors.Internal("generate oauth state", err)
	}
	verifier, challenge, err := auth.NewPKCE()
	if err != nil {
		return "", apperrors.Internal("generate pkce", err)
	}
	if err := s.states.Save(ctx, state, auth.OAuthState{CodeVerifier: verifier, CreatedAt: s.now()}); err != nil {
		return "", apperrors.Internal("save oauth state", err)
	}

	return s.oauth.AuthURL(state, challenge), nil
}

// OAuthCallback completes the flow. The user is found by provider subject, then linked by
// email, and otherwise created.
func (s *authService) OAuthCallback(ctx context.Context, code, state string) (*AuthResult, error) {
	if s.oauth == nil {
		return nil, ErrOAuthNotConfigured
	}

	pending, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, ErrInvalidOAuthState
	}

	identity, err := s.oauth.Exchange(ctx, code, pending.CodeVerifier)
	if err != nil {
		return nil, apperrors.InvalidCredential("OAuth login failed")
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, apperrors.InvalidCredential("OAuth provider did not return an email")
	}

	user, err := s.findOrCreateOAuthUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issue(user)
}

func (s *authService) findOrCreateOAuthUser(ctx context.Context, identity *auth.OAuthIdentity) (*model.User, error) {
	user, err := s.userRepo.FindByOAuthSubject(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("find oauth user", err)
	}

	subject := identity.Subject

	// Link an existing password account with the same email
	user, err = s.userRepo.FindByEmail(ctx, identity.Email)
	if err == nil {
		fields := map[string]any{"oauth_subject": subject}
		if identity.EmailVerified && !user.IsVerified {
			fields["is_verified"] = true
			user.IsVerified = true
		}
		if user.Avatar == "" && identity.Picture != "" {
			fields["avatar"] = identity.Picture
			user.Avatar = identity.Picture
		}
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, storeError(err, ErrUserNotFound, "link oauth user")
		}
		user.OAuthSubject = &subject
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("find user", err)
	}

	name := strings.TrimSpace(identity.Name)
	if len(name) < 2 {
		name = strings.SplitN(identity.Email, "@", 2)[0]
	}
	if len(name) > 50 {
		name = name[:50]
	}
	user = &model.User{
		Name:         name,
		Email:        model.NormalizeEmail(identity.Email),
		Avatar:       identity.Picture,
		Role:         model.RoleUser,
		OAuthSubject: &subject,
		IsVerified:   identity.EmailVerified,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeError(err, nil, "create oauth user")
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal("generate access token", fmt.Errorf("user %s: %w", user.ID, err))
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Internal("generate refresh token", fmt.Errorf("user %s: %w", user.ID, err))
	}
	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
