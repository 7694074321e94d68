package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	middleware := NewMiddleware(secret, policy)

	var gotRole Role
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"exempt path", http.MethodGet, "/healthz", "", http.StatusOK},
		{"missing token", http.MethodGet, "/api/v1/session", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/session", "not-a-jwt", http.StatusUnauthorized},
		{"viewer reads status", http.MethodGet, "/api/v1/session", signToken(t, secret, "viewer"), http.StatusOK},
		{"viewer cannot start", http.MethodPost, "/api/v1/session/start", signToken(t, secret, "viewer"), http.StatusForbidden},
		{"operator starts", http.MethodPost, "/api/v1/session/start", signToken(t, secret, "operator"), http.StatusOK},
		{"operator cannot bulk export", http.MethodGet, "/api/v1/exports/roasts.csv", signToken(t, secret, "operator"), http.StatusForbidden},
		{"admin exports", http.MethodGet, "/api/v1/exports/roasts.csv", signToken(t, secret, "admin"), http.StatusOK},
		{"wrong secret", http.MethodGet, "/api/v1/session", signToken(t, []byte("other"), "viewer"), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	if gotRole != RoleAdmin {
		t.Fatalf("last forwarded role = %q, want admin from final case", gotRole)
	}
}
