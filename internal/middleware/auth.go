// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/balcaohq/platform/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// ActorIDKey is the context key for the authenticated actor id.
	ActorIDKey ContextKey = "actor_id"
	// AccessLevelKey is the context key for the actor's access level.
	AccessLevelKey ContextKey = "access_level"
)

// Claims represents JWT claims. Subject carries the actor id.
type Claims struct {
	jwt.RegisteredClaims
	AccessLevel model.AccessLevel `json:"access_level"`
}

// Auth creates JWT authentication middleware. Every route behind it has a
// resolved actor; requests without one stop here.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid || claims.Subject == "" {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ActorIDKey, claims.Subject)
			ctx = context.WithValue(ctx, AccessLevelKey, claims.AccessLevel)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActorID gets the authenticated actor id from context.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(ActorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetAccessLevel gets the actor's access level from context.
func GetAccessLevel(ctx context.Context) model.AccessLevel {
	if v := ctx.Value(AccessLevelKey); v != nil {
		return v.(model.AccessLevel)
	}
	return ""
}

var levelRank = map[model.AccessLevel]int{
	model.AccessSupport:    1,
	model.AccessSupervisor: 2,
	model.AccessAdmin:      3,
}

// HasAccessLevel checks whether the context's actor meets a minimum level.
func HasAccessLevel(ctx context.Context, min model.AccessLevel) bool {
	return levelRank[GetAccessLevel(ctx)] >= levelRank[min]
}

// RequireAccessLevel creates middleware that enforces a minimum access level.
func RequireAccessLevel(min model.AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasAccessLevel(r.Context(), min) {
				http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
