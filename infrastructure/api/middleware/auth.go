package middleware

import (
	"crypto/subtle"
	"net/http"
)

// HeaderCallbackSecret is the header the queue provider replays on worker
// callbacks.
const HeaderCallbackSecret = "X-Callback-Secret"

// CallbackSecret returns a middleware that admits only requests carrying the
// shared secret in X-Callback-Secret. An empty secret rejects every request.
func CallbackSecret(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(want) == 0 {
				WriteError(w, r, NewAuthenticationError("worker callbacks are disabled"), nil)
				return
			}

			got := r.Header.Get(HeaderCallbackSecret)
			if got == "" {
				WriteError(w, r, NewAuthenticationError(HeaderCallbackSecret+" header is required"), nil)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				WriteError(w, r, NewAuthenticationError("invalid callback secret"), nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
