package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

func serveWithAuth(authHeader string) (*httptest.ResponseRecorder, string) {
	var subject string
	handler := AuthMiddleware(testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = GetSubject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, subject
}

func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without a bearer token are rejected", prop.ForAll(
		func(header string) bool {
			w, _ := serveWithAuth(header)
			return w.Code == http.StatusUnauthorized
		},
		gen.OneGenOf(gen.Const(""), gen.AlphaString(), gen.Const("Bearer"), gen.Const("Basic dXNlcjpwYXNz")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens pass and expose their subject", prop.ForAll(
		func(subject string) bool {
			token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})

			w, got := serveWithAuth("Bearer " + token)
			return w.Code == http.StatusOK && got == subject
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name: "expired",
			token: signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject:   "inventory-admin",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}),
		},
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject: "inventory-admin",
			}),
		},
		{
			name:  "missing subject",
			token: signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{}),
		},
		{
			name:  "garbage",
			token: "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := serveWithAuth("Bearer " + tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "intruder"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	w, _ := serveWithAuth("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
