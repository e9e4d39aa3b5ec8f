package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/kailas-cloud/envdex/internal/domain/tenant"
)

type ctxKey int

const tenantKey ctxKey = iota

// exemptPaths are routes that bypass tenant resolution (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantMiddleware resolves the caller's namespace from the Authorization
// Bearer credential. No credential means the shared anonymous namespace;
// resolution never rejects a request.
func TenantMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			credential := ""
			auth := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if strings.HasPrefix(auth, bearerPrefix) {
				credential = auth[len(bearerPrefix):]
			}

			ctx := context.WithValue(r.Context(), tenantKey, tenant.Resolve(credential))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tenantFromContext returns the resolved tenant, defaulting to anonymous.
func tenantFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tenantKey).(string); ok && t != "" {
		return t
	}
	return tenant.Anonymous
}
