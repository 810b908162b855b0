package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/response"
)

// Recovery catches panics in downstream handlers, logs the stack trace, and
// returns a structured 500 to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithCtx(r.Context()).Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.ServerError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
