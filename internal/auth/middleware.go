package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/truthdare/truthdare-api/internal/apperror"
)

type contextKey string

const subjectKey contextKey = "subject"

// RequireAdmin rejects requests without a valid admin bearer token.
//
//	no or malformed Authorization header -> 401
//	invalid or expired token             -> 401
//	valid token, subject is not admin    -> 403
//
// Rejections are *apperror.AppError values handed to writeErr, so they share
// the API's error body. On success the token subject is stored in the request
// context.
func RequireAdmin(tokens *TokenService, writeErr func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				writeErr(w, apperror.Unauthorized("bearer token required"))
				return
			}

			subject, err := tokens.Validate(raw)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "token expired"
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
				writeErr(w, apperror.Unauthorized(msg).WithCause(err))
				return
			}
			if subject != AdminSubject {
				writeErr(w, apperror.Forbidden("admin rights required"))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the authenticated token subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok && sub != ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
