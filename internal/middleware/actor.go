package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"skill-assessment/internal/config"
)

type contextKey string

// ActorKey holds the identity recorded as the actor of round mutations
const ActorKey contextKey = "actor_id"

// DefaultActor is used when neither a token nor an actor header is present
const DefaultActor = "system"

// ActorHeader names the header carrying the actor when token auth is disabled
const ActorHeader = "X-Actor-ID"

var errMissingSubject = errors.New("token has no subject")

// ActorMiddleware resolves the acting identity of maintenance requests
type ActorMiddleware struct {
	enabled bool
	secret  []byte
	issuer  string
}

// NewActorMiddleware creates a new actor middleware
func NewActorMiddleware(cfg *config.AuthConfig) *ActorMiddleware {
	return &ActorMiddleware{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.JWTSecret),
		issuer:  cfg.Issuer,
	}
}

// Authenticate stores the actor in the request context. With auth enabled a
// valid HMAC bearer token is required and its subject becomes the actor.
func (m *ActorMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			if actor == "" {
				actor = DefaultActor
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
			return
		}

		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondUnauthorized(w)
			return
		}

		subject, err := m.verify(token)
		if err != nil {
			slog.Warn("Rejected actor token", "error", err, "remote_ip", r.RemoteAddr)
			respondUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), subject)))
	})
}

func (m *ActorMiddleware) verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// IssueActorToken signs an HS256 token for subject, valid for ttl
func IssueActorToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WithActor returns a context carrying actor
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromContext returns the resolved actor, or DefaultActor when none was set
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(ActorKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="assessment"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "unauthorized"})
}
