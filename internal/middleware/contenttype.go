package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// jsonMediaType is the only media type accepted for request bodies.
const jsonMediaType = "application/json"

// RequireJSON returns a middleware that rejects requests whose Content-Type
// is not JSON with 415. It runs before any body parsing or validation, so
// the media-type check always takes precedence over field errors.
func RequireJSON() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isJSONContentType(r.Header.Get("Content-Type")) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":"Invalid content type"}` + "\n"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isJSONContentType reports whether the header names a JSON media type,
// ignoring parameters such as charset and accepting +json suffixes.
func isJSONContentType(header string) bool {
	if header == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}

	return mediaType == jsonMediaType || strings.HasSuffix(mediaType, "+json")
}
