package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atriumhq/atriumpm/pkg/composables"
	"github.com/atriumhq/atriumpm/pkg/configuration"
)

// Principal verifies an optional bearer token and attaches the resulting
// principal to the context. A missing or invalid token is not an error at
// this layer; the request simply proceeds unauthenticated and the tenant
// middleware or a controller decides whether that is acceptable.
func Principal() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(conf.Jwt.Secret), nil
			},
				jwt.WithIssuer(conf.Jwt.Issuer),
				jwt.WithAudience(conf.Jwt.Audience),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				composables.UseLogger(r.Context()).WithError(err).Debug("rejected bearer token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(composables.WithPrincipal(r.Context(), principalFromClaims(claims))))
		})
	}
}

func principalFromClaims(claims jwt.MapClaims) *composables.Principal {
	p := &composables.Principal{Claims: map[string]any(claims)}
	if sub, err := claims.GetSubject(); err == nil {
		if id, err := uuid.Parse(sub); err == nil {
			p.UserID = id
		}
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	}
	return p
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
