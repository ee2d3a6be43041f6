package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicRoutes bypass authentication so probes and scrapers need no key.
var publicRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const (
	bearerPrefix = "Bearer "
	apiKeyHeader = "X-API-Key"
)

// BearerAuthMiddleware checks the API key sent as "Authorization: Bearer <key>"
// or in X-API-Key. Empty keys are ignored; with no keys left the middleware is
// a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicRoutes[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			presented, msg := presentedKey(r)
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="smartsample"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, msg)
				return
			}
			if !knownKey(keys, presented) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="smartsample", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey returns the key from the request, or a client-facing reason
// why none could be read.
func presentedKey(r *http.Request) (string, string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, bearerPrefix) {
			return "", "authorization header must use Bearer scheme"
		}
		return strings.TrimSpace(auth[len(bearerPrefix):]), ""
	}
	if k := r.Header.Get(apiKeyHeader); k != "" {
		return k, ""
	}
	return "", "missing authorization header"
}

// knownKey compares against every key in constant time per key.
func knownKey(keys [][]byte, presented string) bool {
	p := []byte(presented)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, p)
	}
	return found == 1
}
