package middleware

import (
	"context"
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"spotly/internal/auth"
	apperrors "spotly/internal/errors"
	"spotly/internal/model"
)

const userContextKey = "user"

var (
	errNoToken   = apperrors.Unauthenticated("No token provided. Please login to access this resource.")
	errForbidden = apperrors.Forbidden("You do not have permission to perform this action")
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Authenticator resolves verified claims to a live user.
type Authenticator interface {
	Authenticate(ctx context.Context, claims *auth.Claims) (*model.User, error)
}

// Gate authenticates bearer tokens and enforces role permissions.
type Gate struct {
	tokens TokenValidator
	users  Authenticator
}

// NewGate creates a Gate.
func NewGate(tokens TokenValidator, users Authenticator) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Mandatory rejects requests without a valid token for an existing, active user.
func (g *Gate) Mandatory() echo.MiddlewareFunc {
	return echojwt.WithConfig(g.config(false))
}

// Optional resolves the user when a valid token is present and otherwise
// continues anonymously.
func (g *Gate) Optional() echo.MiddlewareFunc {
	return echojwt.WithConfig(g.config(true))
}

func (g *Gate) config(optional bool) echojwt.Config {
	return echojwt.Config{
		ContextKey:  userContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := g.tokens.ValidateAccessToken(token)
			if err != nil {
				return nil, err
			}
			return g.users.Authenticate(c.Request().Context(), claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if optional {
				return nil
			}
			// Parse failures carry a typed error; anything else means no usable token was sent.
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			return errNoToken
		},
		ContinueOnIgnoredError: optional,
	}
}

// Require allows the request only when the authenticated user's role grants perm.
// It must run after Mandatory.
func (g *Gate) Require(perm auth.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return errNoToken
			}
			if !auth.Can(user.Role, perm) {
				return errForbidden
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}
