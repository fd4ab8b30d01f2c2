// Package middleware provides HTTP middleware for the clustering API.
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grailbio/base/log"
)

// Logger logs one line per request with its status, size and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := "%s %s %d %dB %s [%s]"
			args := []interface{}{r.Method, r.URL.RequestURI(), status, ww.BytesWritten(),
				time.Since(start), chimiddleware.GetReqID(r.Context())}
			if status >= http.StatusInternalServerError {
				log.Error.Printf(line, args...)
			} else {
				log.Printf(line, args...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
