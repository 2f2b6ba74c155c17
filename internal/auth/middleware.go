// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/metrics"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication
	AuthModeNone AuthMode = "none"

	// AuthModeJWT uses JWT Bearer tokens
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "jwt":
		return AuthModeJWT, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

type contextKey string

const claimsContextKey contextKey = "claims"

// ErrorWriter renders an authentication failure. code is a stable
// machine-readable error code.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Error codes passed to ErrorWriter.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
)

// Middleware authenticates bearer tokens and throttles each subject.
type Middleware struct {
	mode       AuthMode
	jwtManager *JWTManager
	limiter    *SubjectLimiter
	writeError ErrorWriter
}

// NewMiddleware creates authentication middleware. jwtManager is required
// in AuthModeJWT; limiter may be nil.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager, limiter *SubjectLimiter) *Middleware {
	return &Middleware{
		mode:       mode,
		jwtManager: jwtManager,
		limiter:    limiter,
		writeError: plainError,
	}
}

// SetErrorWriter replaces the default text/plain error responses.
func (m *Middleware) SetErrorWriter(fn ErrorWriter) {
	if fn != nil {
		m.writeError = fn
	}
}

// Mode returns the configured mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Stop releases the subject limiter.
func (m *Middleware) Stop() {
	m.limiter.Stop()
}

func plainError(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
	http.Error(w, message, status)
}

// Authenticate enforces a valid bearer token in AuthModeJWT and stores the
// claims in the request context. In AuthModeNone it passes requests through.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.mode != AuthModeJWT {
			next(w, r)
			return
		}

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			metrics.AuthFailures.WithLabelValues("missing_token").Inc()
			w.Header().Set("WWW-Authenticate", `Bearer realm="readora"`)
			m.writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			metrics.AuthFailures.WithLabelValues(failureReason(err)).Inc()
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Token validation failed")
			w.Header().Set("WWW-Authenticate", `Bearer realm="readora", error="invalid_token"`)
			m.writeError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
			return
		}

		if !m.limiter.Allow(claims.Subject) {
			metrics.APIRateLimitHits.WithLabelValues("subject").Inc()
			w.Header().Set("Retry-After", "1")
			m.writeError(w, r, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("authorization scheme must be Bearer")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, ErrMissingSubject):
		return "missing_subject"
	default:
		return "invalid"
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// SubjectFromContext returns the authenticated user ID.
func SubjectFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
