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
	"context"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/flicker-io/flicker/internal/core"
	"github.com/flicker-io/flicker/internal/cors"
	"github.com/flicker-io/flicker/internal/fwlog"
)

// uploader is the subset of Coordinator the wire adapter depends on.
type uploader interface {
	Upload(ctx context.Context, in core.UploadInput) (core.UploadResult, error)
}

// accessor is the subset of Arbiter the wire adapter depends on.
type accessor interface {
	Access(ctx context.Context, token core.Token) (core.AccessOutcome, error)
}

// Server is the HTTP wire adapter over a Coordinator and an Arbiter.
type Server struct {
	coordinator uploader
	arbiter     accessor
	logger      fwlog.Logger
}

// New wires coordinator and arbiter behind CORS, gzip response compression,
// and per-request structured logging.
func New(coordinator uploader, arbiter accessor, logger fwlog.Logger) *Server {
	if logger == nil {
		logger = fwlog.DefaultLogger()
	}
	return &Server{coordinator: coordinator, arbiter: arbiter, logger: logger}
}

// Handler returns the fully-wrapped http.Handler ready to mount on an
// http.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/image", s.handleUpload)
	mux.HandleFunc("/image/", s.handleAccess)
	mux.HandleFunc("/healthz", s.handleHealthz)

	wrapped := gzhttp.GzipHandler(mux)
	return cors.New().Handler(loggingMiddleware(s.logger, wrapped))
}
