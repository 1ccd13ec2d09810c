package middleware

import (
	"net/http"

	"storefront-be/internal/apperr"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

// Auth attaches the actor carried by a valid access token. Requests without
// a token pass through anonymously; a token that fails verification is
// rejected.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.ParseJWT(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				transport.WriteError(r.Context(), w, apperr.ErrUnauthorized.WithMessage("Invalid or expired token"))
				return
			}

			ctx := auth.WithActor(r.Context(), actor)
			ctx = logger.WithUserID(ctx, actor.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ActorFrom(r.Context()); !ok {
			transport.WriteError(r.Context(), w, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFrom(r.Context())
		if !ok {
			transport.WriteError(r.Context(), w, apperr.ErrUnauthorized)
			return
		}
		if !actor.IsAdmin() {
			transport.WriteError(r.Context(), w, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
