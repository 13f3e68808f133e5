package security

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE"
	corsHeaders = "Content-Type, Authorization"
	corsMaxAge  = "600"
)

// CORS allows credentialed requests from a fixed list of origins. Requests
// from other origins get no CORS headers, which the browser treats as a
// refusal.
type CORS struct {
	origins []string
}

func NewCORS(origins []string) *CORS {
	return &CORS{origins: origins}
}

func (c *CORS) allowed(origin string) bool {
	return origin != "" && slices.Contains(c.origins, strings.TrimRight(origin, "/"))
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		h := w.Header()
		h.Add("Vary", "Origin")

		if c.allowed(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if c.allowed(origin) {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
