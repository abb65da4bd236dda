package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testSecret = []byte("test-secret")

// signToken builds a compact HS256 JWT the way the GITrello core service
// issues them.
func signToken(t *testing.T, secret []byte, payload string) string {
	t.Helper()
	enc := func(data []byte) string {
		return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
	}
	header := enc([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := enc([]byte(payload))
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(header + "." + body))
	return header + "." + body + "." + enc(mac.Sum(nil))
}

func runAuth(t *testing.T, authHeader string) (int64, bool) {
	t.Helper()
	var gotID int64
	var gotOK bool
	handler := Auth(testSecret)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return gotID, gotOK
}

func TestAuthValidToken(t *testing.T) {
	token := signToken(t, testSecret, `{"user_id": 7}`)
	id, ok := runAuth(t, "Bearer "+token)
	if !ok {
		t.Fatal("expected authenticated request")
	}
	if id != 7 {
		t.Fatalf("expected user 7, got %d", id)
	}
}

func TestAuthMissingHeaderIsAnonymous(t *testing.T) {
	if _, ok := runAuth(t, ""); ok {
		t.Fatal("expected anonymous request")
	}
}

func TestAuthRejectedTokensAreAnonymous(t *testing.T) {
	wrongSecret := signToken(t, []byte("other-secret"), `{"user_id": 7}`)
	valid := signToken(t, testSecret, `{"user_id": 7}`)
	tampered := valid[:len(valid)-2] + "xx"

	for name, header := range map[string]string{
		"not bearer":      "Token abc",
		"malformed":       "Bearer not.a",
		"wrong secret":    "Bearer " + wrongSecret,
		"tampered":        "Bearer " + tampered,
		"garbage payload": "Bearer " + signToken(t, testSecret, `not json`),
	} {
		if _, ok := runAuth(t, header); ok {
			t.Fatalf("%s: expected anonymous request", name)
		}
	}
}

func TestWithUserRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), 42)
	id, ok := UserID(ctx)
	if !ok || id != 42 {
		t.Fatalf("expected user 42, got %d ok=%v", id, ok)
	}
}

func TestUserIDAbsent(t *testing.T) {
	if _, ok := UserID(context.Background()); ok {
		t.Fatal("expected no user in fresh context")
	}
}
