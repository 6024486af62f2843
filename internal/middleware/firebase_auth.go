package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/session"
)

// IDTokenVerifier is the part of the Firebase auth client the middleware needs.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and maps the Firebase UID onto a
// local user.
func FirebaseAuthMiddleware(verifier IDTokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account is linked to this Firebase user")
				}
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}

			attachSession(c, session.Session{UserID: user.ID, Token: idToken})
			return next(c)
		}
	}
}
