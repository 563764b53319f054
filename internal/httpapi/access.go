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

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flicker-io/flicker/internal/core"
)

// genericNotFoundBody is returned for every Denied reason, per the
// anti-enumeration requirement: a caller must not be able to distinguish
// "expired" from "never existed" by inspecting the response.
const genericNotFoundBody = `{"error":"not found"}`

// handleAccess serves GET /image/{token}.
func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/image/")
	if token == "" || strings.Contains(token, "/") {
		s.writeDenied(w)
		return
	}

	outcome, err := s.arbiter.Access(r.Context(), core.Token(token))
	if err != nil {
		if errors.Is(err, core.ErrInternal) {
			s.logger.Errorf("access: internal invariant violated: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.logger.Errorf("access: index unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
		return
	}

	s.logger.Infof("access outcome=%s", outcomeKind(outcome))

	if !outcome.IsAllowed() {
		s.writeDenied(w)
		return
	}

	contentType := outcome.Record().ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(outcome.Bytes())
}

func (s *Server) writeDenied(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(genericNotFoundBody))
}

func outcomeKind(outcome core.AccessOutcome) string {
	if outcome.IsAllowed() {
		return "allowed"
	}
	switch outcome.Reason() {
	case core.DenyMissing:
		return "denied_missing"
	case core.DenyExpired:
		return "denied_expired"
	case core.DenyInvalid:
		return "denied_invalid"
	default:
		return "denied_unknown"
	}
}
