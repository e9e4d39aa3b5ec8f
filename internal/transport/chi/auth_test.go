package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/envdex/internal/domain/tenant"
)

func TestTenantMiddleware_AnonymousWithoutCredential(t *testing.T) {
	var got string
	handler := TenantMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = tenantFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != tenant.Anonymous {
		t.Errorf("expected anonymous tenant, got %q", got)
	}
}

func TestTenantMiddleware_BearerCredentialResolves(t *testing.T) {
	var got string
	handler := TenantMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = tenantFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	req.Header.Set("Authorization", "Bearer my-team-key")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	want := tenant.Resolve("my-team-key")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got == tenant.Anonymous {
		t.Error("credentialed request must not land in the anonymous namespace")
	}
}

func TestTenantMiddleware_SameCredentialSameTenant(t *testing.T) {
	if tenant.Resolve("key-a") != tenant.Resolve("key-a") {
		t.Error("resolution must be deterministic")
	}
	if tenant.Resolve("key-a") == tenant.Resolve("key-b") {
		t.Error("different credentials must map to different tenants")
	}
}

func TestTenantMiddleware_ExemptPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			called := false
			handler := TenantMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if r.Context().Value(tenantKey) != nil {
					t.Error("exempt path should skip tenant resolution")
				}
			}))

			req := httptest.NewRequest(http.MethodGet, path, nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if !called {
				t.Error("handler not reached")
			}
		})
	}
}
