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
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/flicker-io/flicker/internal/core"
)

// maxMultipartMemory bounds how much of a multipart body is buffered in
// memory before spilling to a temp file, independent of the Coordinator's
// own MaxUploadBytes policy.
const maxMultipartMemory = 32 << 20

type uploadResponse struct {
	Token            string `json:"token"`
	ExpiresAtEpochMs int64  `json:"expiresAtEpochMs"`
}

// handleUpload serves POST /image: it decodes a multipart form with a
// "file" part and an optional "content_type" field, then delegates to the
// Coordinator.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file body")
		return
	}

	contentType := r.FormValue("content_type")
	if contentType == "" {
		contentType = header.Header.Get("Content-Type")
	}

	result, err := s.coordinator.Upload(r.Context(), core.UploadInput{
		Bytes:       data,
		ContentType: contentType,
		Filename:    header.Filename,
	})
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(uploadResponse{
		Token:            string(result.Token),
		ExpiresAtEpochMs: result.ExpiresAtEpochMs,
	})
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid upload")
	case errors.Is(err, core.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
	case errors.Is(err, core.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported content type")
	default:
		s.logger.Errorf("upload: internal failure: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
