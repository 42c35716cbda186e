package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfbetancur/consorcio-manager/internal/auth"
)

type mockParser struct {
	claims auth.Claims
	err    error
}

func (m *mockParser) ParseToken(token string) (auth.Claims, error) {
	return m.claims, m.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	parser := &mockParser{claims: auth.Claims{Username: "clopez", Roles: []string{auth.RoleConsulta}}}

	t.Run("valid token passes claims through", func(t *testing.T) {
		var got auth.Claims
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token-abc")
		rec := httptest.NewRecorder()

		Authenticate(parser)(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got.Username != "clopez" {
			t.Errorf("claims in context = %+v", got)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		Authenticate(parser)(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		bad := &mockParser{err: auth.ErrInvalidToken}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()

		Authenticate(bad)(okHandler()).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	parser := &mockParser{claims: auth.Claims{Username: "clopez", Roles: []string{auth.RoleConsulta}}}

	run := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer token-abc")
		rec := httptest.NewRecorder()
		Authenticate(parser)(RequireRole(role)(okHandler())).ServeHTTP(rec, req)
		return rec
	}

	if rec := run(auth.RoleConsulta); rec.Code != http.StatusOK {
		t.Errorf("granted role: status = %d, want 200", rec.Code)
	}
	if rec := run(auth.RoleAdmin); rec.Code != http.StatusForbidden {
		t.Errorf("missing role: status = %d, want 403", rec.Code)
	}

	t.Run("without authenticate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		RequireRole(auth.RoleAdmin)(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
