package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "user-id"

var (
	errMissingToken    = errors.New("not authorized, no token")
	errInvalidToken    = errors.New("invalid or expired token")
	errAuthUnavailable = errors.New("authentication is not configured")
)

// UserIDFromContext returns the authenticated user ID set by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying userID, as the auth middleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthenticator creates an authenticator for tokens signed with secret.
// An empty secret rejects every request.
func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	if secret == "" {
		logger.Warn("jwt-secret-missing", zap.String("effect", "protected routes reject all requests"))
	}
	return &Authenticator{
		secret: []byte(secret),
		logger: logger,
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// token's user ID in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r.Header.Get("Authorization"))
		if err != nil {
			AuthFailuresTotal.Inc()
			a.logger.Debug("auth-rejected",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			writeJSON(w, a.logger, http.StatusUnauthorized, envelope{Success: false, Message: authMessage(err)})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return errMissingToken.Error()
	case errors.Is(err, errAuthUnavailable):
		return errAuthUnavailable.Error()
	default:
		return errInvalidToken.Error()
	}
}

func (a *Authenticator) authenticate(header string) (string, error) {
	if len(a.secret) == 0 {
		return "", errAuthUnavailable
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	for _, key := range []string{"sub", "_id"} {
		if id, ok := claims[key].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no subject claim", errInvalidToken)
}
