package middleware

import (
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler run time. The request context is cancelled at the
// deadline, so in-flight store calls abort with it, and the client gets a 503
// envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body := errorEnvelope("REQUEST_TIMEOUT", "request timed out")

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, body)
		// TimeoutHandler writes its body through the outer writer without a
		// content type. Every response under this middleware is a JSON
		// envelope, and handler headers still replace this one on success.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			bounded.ServeHTTP(w, r)
		})
	}
}
