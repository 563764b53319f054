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

// Package cors configures the single rs/cors policy flicker's HTTP adapter
// runs behind. The upload/access endpoints are meant to be called directly
// from arbitrary browser origins (there is no notion of account or session
// to scope an origin allowlist to), so the policy is permissive on origin
// but still pins the method/header surface to what the adapter exposes.
package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// New returns the CORS middleware flicker mounts in front of its mux.
func New() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
