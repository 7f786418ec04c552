package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "commerce-be/pkg/errors"
	"commerce-be/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserIDContextKey is the key for the authenticated subject in context
	UserIDContextKey ContextKey = "user_id"
	// RoleContextKey is the key for the authenticated role in context
	RoleContextKey ContextKey = "role"
)

// Claims are the JWT claims the services issue and accept
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the Bearer token and puts subject and role on the context
func Auth(secretKey string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := claimsFromRequest(r, secretKey)
			if appErr != nil {
				logger.WithError(appErr).Warn("Authentication failed")
				writeErrorResponse(w, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, claims.Subject)
			ctx = context.WithValue(ctx, RoleContextKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuth validates the Bearer token and additionally requires the admin role
func AdminAuth(secretKey string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := claimsFromRequest(r, secretKey)
			if appErr != nil {
				logger.WithError(appErr).Warn("Authentication failed")
				writeErrorResponse(w, appErr)
				return
			}

			if claims.Role != "admin" {
				logger.WithField("subject", claims.Subject).Warn("Admin access denied")
				writeErrorResponse(w, apperrors.NewAuthorizationError("Admin access required"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, claims.Subject)
			ctx = context.WithValue(ctx, RoleContextKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFromRequest extracts and verifies the HS256 bearer token
func claimsFromRequest(r *http.Request, secretKey string) (*Claims, *apperrors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.NewAuthenticationError("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, apperrors.NewAuthenticationError("Invalid authorization header format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return nil, apperrors.NewAuthenticationError("Token is required")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}

	return claims, nil
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"type":      appErr.Type,
			"message":   appErr.Message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
