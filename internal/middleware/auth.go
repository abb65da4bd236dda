// Package middleware provides HTTP middleware for the service.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type userIDCtxKey struct{}

// claims is the JWT payload issued by the GITrello core service. Tokens are
// long-lived service-to-service credentials; only the signature is checked.
type claims struct {
	UserID int64 `json:"user_id"`
}

// Auth returns middleware that parses a Bearer JWT (HS256) and, when valid,
// stores the authenticated user id in the request context. Requests without
// a valid token proceed anonymously; handlers decide whether anonymous
// access is acceptable.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				slog.Warn("invalid authorization header", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			c, err := verifyToken(token, secret)
			if err != nil {
				slog.Warn("token rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), c.UserID)))
		})
	}
}

// WithUser returns a context carrying an authenticated user id.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserID extracts the authenticated user id from the context. The second
// return value is false for anonymous requests.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(int64)
	return id, ok
}

// verifyToken checks the HMAC-SHA256 signature of a compact JWT and decodes
// its claims.
func verifyToken(tokenStr string, secret []byte) (*claims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, errors.New("malformed token")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, errors.New("invalid signature")
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, errors.New("undecodable payload")
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, errors.New("unparseable claims")
	}

	return &c, nil
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
