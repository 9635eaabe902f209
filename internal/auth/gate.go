package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "taskflow/internal/errors"
)

// BearerPrefix is the only accepted Authorization scheme.
const BearerPrefix = "Bearer "

// ContextKey is where the verified user ID is stored on the echo context.
const ContextKey = "user_id"

// Gate is the request middleware guarding authenticated routes.
type Gate struct {
	tokens TokenService
	logger *zap.Logger
}

// NewGate creates a gate verifying tokens with the given service.
func NewGate(tokens TokenService, logger *zap.Logger) *Gate {
	return &Gate{tokens: tokens, logger: logger}
}

// Middleware rejects requests without a verifiable bearer token and attaches
// the user ID to the request context otherwise. Every rejection produces the
// same 401 body.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + BearerPrefix,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return g.reject(c, err.Error())
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		attach := func(c echo.Context) error {
			userID, ok := c.Get(ContextKey).(uuid.UUID)
			if !ok || userID == uuid.Nil {
				return g.reject(c, "verified token carried no user id")
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithUserID(req.Context(), userID)))
			return next(c)
		}
		verified := verify(attach)

		return func(c echo.Context) error {
			if _, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); !ok {
				return g.reject(c, "missing or malformed authorization header")
			}
			return verified(c)
		}
	}
}

func (g *Gate) reject(c echo.Context, reason string) error {
	g.logger.Debug("request rejected by auth gate",
		zap.String("path", c.Path()),
		zap.String("reason", reason),
	)
	httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthorized)
	return echo.NewHTTPError(http.StatusUnauthorized, httpErr.ToErrorResponse())
}

// bearerToken extracts the token after the case-sensitive "Bearer " prefix.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
