package middleware

import (
	"net/http"
	"strconv"
)

// localizedVary lists the request headers a localized catalog response
// depends on: the locale comes from Accept-Language or from the session.
const localizedVary = "Accept-Language, Cookie, X-Session-ID"

// CacheControl lets browsers keep GET responses for maxAge seconds. The
// responses are private because their locale may come from the session.
// A non-positive maxAge asks clients to revalidate every time.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := "no-cache"
	if maxAge > 0 {
		value = "private, max-age=" + strconv.Itoa(maxAge)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				h := w.Header()
				h.Set("Cache-Control", value)
				h.Add("Vary", localizedVary)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore disables caching, for per-session resources such as the cart.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
