package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// CustomClaims contains the claims issued by the expenses backend
type CustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// SessionKey is the context key for the authenticated domain.Session
const SessionKey contextKey = "session"

// TokenValidator turns a bearer token into a session
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.Session, error)
}

// JWTValidator validates HS256 tokens signed with a shared secret
type JWTValidator struct {
	validator *validator.Validator
}

// NewJWTValidator creates a JWTValidator for the given secret, issuer and audience
func NewJWTValidator(secret, issuer, audience string) (*JWTValidator, error) {
	key := []byte(secret)
	jwtValidator, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return key, nil
		},
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}
	return &JWTValidator{validator: jwtValidator}, nil
}

// ValidateToken checks the token and returns the session it identifies.
// The user id comes from the userId claim, falling back to the subject.
func (v *JWTValidator) ValidateToken(ctx context.Context, token string) (domain.Session, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return domain.Session{}, errors.Join(ErrInvalidToken, err)
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return domain.Session{}, ErrInvalidToken
	}

	userID := validatedClaims.RegisteredClaims.Subject
	if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok && custom.UserID != "" {
		userID = custom.UserID
	}
	if strings.TrimSpace(userID) == "" {
		return domain.Session{}, ErrInvalidToken
	}

	return domain.Session{UserID: userID, Token: token}, nil
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that validates bearer tokens and
// stores the session in the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			session, err := m.validator.ValidateToken(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), session)))
			return next(c)
		}
	}
}

// WithSession stores session in ctx
func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession extracts the session from the context
func GetSession(c echo.Context) (domain.Session, bool) {
	session, ok := c.Request().Context().Value(SessionKey).(domain.Session)
	return session, ok
}

// GetUserID extracts the authenticated user id from the context
func GetUserID(c echo.Context) string {
	session, _ := GetSession(c)
	return session.UserID
}
