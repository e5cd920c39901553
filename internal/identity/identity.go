// Package identity resolves the tenant behind a request.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	TenantCookieName     = "mymcp_tenant_id"
	TenantHeaderName     = "X-MyMCP-Tenant-ID"
	DefaultTenantIDValue = "default"
	tenantCookieMaxAge   = 30 * 24 * time.Hour
)

type contextKey int

const tenantIDKey contextKey = iota

var (
	anonTenantPattern = regexp.MustCompile(`^tnt_[a-f0-9]{32}$`)
	tenantIDPattern   = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// TenantIDFromContext extracts the tenant ID from the request context.
func TenantIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantIDKey).(string); ok {
		return v
	}
	return DefaultTenantIDValue
}

// WithTenantID returns a context carrying the given tenant ID. Used by
// non-HTTP entry points (the extension socket) that resolve tenancy
// from their own handshake.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, sanitizeTenantID(tenantID))
}

func generateAnonTenantID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate tenant id: %w", err)
	}
	return "tnt_" + hex.EncodeToString(buf), nil
}

func isValidAnonTenantID(id string) bool {
	return anonTenantPattern.MatchString(id)
}

func sanitizeTenantID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !tenantIDPattern.MatchString(id) {
		return DefaultTenantIDValue
	}
	return id
}

func setTenantCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TenantCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(tenantCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(tenantCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// tenantIDFromRequest resolves the tenant in priority order: explicit
// header, query parameter, cookie. A valid cookie is refreshed; a
// missing one mints a new anonymous tenant so first-time browsers get
// a stable identity without signup.
func tenantIDFromRequest(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if tid := r.Header.Get(TenantHeaderName); tid != "" {
		return sanitizeTenantID(tid), nil
	}
	if tid := r.URL.Query().Get("tenant_id"); tid != "" {
		return sanitizeTenantID(tid), nil
	}

	if c, err := r.Cookie(TenantCookieName); err == nil && isValidAnonTenantID(c.Value) {
		setTenantCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonTenantID()
	if err != nil {
		return "", err
	}
	setTenantCookie(w, id, isDev)
	return id, nil
}

// Middleware injects the resolved tenant ID into the request context.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := tenantIDFromRequest(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish tenant identity"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
