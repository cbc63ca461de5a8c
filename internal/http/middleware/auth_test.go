// README: Auth middleware tests with a stubbed token verifier.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/infra"
	"taxiboard/internal/types"
)

type stubVerifier struct {
	tokens map[string]*infra.FirebaseToken
}

func (v *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*infra.FirebaseToken, error) {
	if t, ok := v.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("invalid id token")
}

func newAuthRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(verifier))
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "actor missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": string(actor.ID), "role": string(actor.Role)})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{})
	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := doRequest(r, "Basic abc"); w.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: expected 401, got %d", w.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{})
	if w := doRequest(r, "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthUnknownRole(t *testing.T) {
	r := newAuthRouter(&stubVerifier{tokens: map[string]*infra.FirebaseToken{
		"tok": {UID: "u1", Claims: map[string]interface{}{"role": "intern"}},
	}})
	if w := doRequest(r, "Bearer tok"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAuthMissingRoleClaim(t *testing.T) {
	r := newAuthRouter(&stubVerifier{tokens: map[string]*infra.FirebaseToken{
		"tok": {UID: "u1", Claims: map[string]interface{}{}},
	}})
	if w := doRequest(r, "Bearer tok"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	r := newAuthRouter(&stubVerifier{tokens: map[string]*infra.FirebaseToken{
		"tok-sec": {UID: "u_sec", Claims: map[string]interface{}{"role": string(types.RoleSecretary)}},
	}})
	w := doRequest(r, "Bearer tok-sec")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"uid":"u_sec"`) || !strings.Contains(body, `"role":"secretary"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}
