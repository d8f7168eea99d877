// Package tenant resolves the acting brand for a request. Every brand on the
// platform runs its own storefront, so the brand id arrives either in a
// header or as the subdomain the storefront is served from.
package tenant

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/virginus01/afobata-core/internal/common"
)

type contextKey string

const brandContextKey contextKey = "brand.id"

// Resolver resolves brand identifiers from HTTP requests using either
// headers or subdomains.
type Resolver struct {
	HeaderName   string
	RootDomain   string
	DefaultBrand string
}

// NewResolver returns a resolver configured with the provided header name,
// root domain, and default brand slug. If headerName is empty, "X-Brand-ID"
// is used.
func NewResolver(headerName, rootDomain, defaultBrand string) *Resolver {
	if headerName == "" {
		headerName = "X-Brand-ID"
	}
	return &Resolver{
		HeaderName:   headerName,
		RootDomain:   strings.ToLower(strings.TrimSpace(rootDomain)),
		DefaultBrand: strings.TrimSpace(defaultBrand),
	}
}

// Middleware resolves the brand from the request and injects it into the
// context passed downstream.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		brandID := r.Resolve(req)
		if brandID == "" {
			brandID = r.DefaultBrand
		}
		if brandID != "" {
			req = req.WithContext(WithBrand(req.Context(), brandID))
		}
		next.ServeHTTP(w, req)
	})
}

// Resolve attempts to find the brand identifier from the configured header
// or the request subdomain.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return ""
	}
	if brandID := strings.TrimSpace(req.Header.Get(r.HeaderName)); brandID != "" {
		return brandID
	}
	host := hostWithoutPort(req.Host)
	if host == "" {
		return ""
	}
	return strings.TrimSpace(r.subdomainFromHost(host))
}

// Require rejects requests that reach brand-scoped routes without a
// resolved brand.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := From(r.Context()); !ok {
			common.RespondFail(w, http.StatusBadRequest, common.CodeBadRequest, "brand is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (r *Resolver) subdomainFromHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if r.RootDomain != "" {
		if host == r.RootDomain {
			return ""
		}
		suffix := "." + r.RootDomain
		if !strings.HasSuffix(host, suffix) {
			return ""
		}
		host = strings.TrimSuffix(host, suffix)
	}
	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func hostWithoutPort(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if strings.HasPrefix(hostport, "[") {
		if idx := strings.Index(hostport, "]"); idx != -1 {
			if host := hostport[1:idx]; host != "" {
				return host
			}
		}
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	if idx := strings.Index(hostport, ":"); idx != -1 && strings.Count(hostport, ":") == 1 {
		return hostport[:idx]
	}
	return hostport
}

// WithBrand stores the brand identifier inside the context.
func WithBrand(ctx context.Context, brandID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, brandContextKey, brandID)
}

// From retrieves the brand identifier from the context.
func From(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(brandContextKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// PrefixKey creates a namespaced cache/queue key per brand slug or id.
func PrefixKey(brandSlugOrID, key string) string {
	if brandSlugOrID == "" {
		return key
	}
	return brandSlugOrID + ":" + key
}
