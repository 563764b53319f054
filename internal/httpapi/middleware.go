// Copyright 2025 The flicker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpapi is the wire adapter over internal/core: it decodes HTTP
// requests into Coordinator/Arbiter calls and renders their results back as
// HTTP responses. Denial reasons never reach the wire.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/flicker-io/flicker/internal/fwlog"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// eventually written, so the logging middleware can report it after the
// handler has run.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.headerWritten {
		rw.statusCode = http.StatusOK
		rw.headerWritten = true
	}
	return rw.ResponseWriter.Write(data)
}

// loggingMiddleware logs one structured line per request: method, path,
// status and duration. The access handler logs the AccessOutcome kind
// itself; the token is never included here or there.
func loggingMiddleware(logger fwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(wrapped, r)

		logger.Infof("method=%s path=%s status=%d duration_ms=%d",
			r.Method, redactPath(r.URL.Path), wrapped.statusCode, time.Since(start).Milliseconds())
	})
}

// redactPath replaces a token in an access path with a fixed placeholder so
// the bearer token that grants access to a blob never reaches the logs.
func redactPath(path string) string {
	if strings.HasPrefix(path, "/image/") && path != "/image/" {
		return "/image/{token}"
	}
	return path
}
