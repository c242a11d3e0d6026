/******************************************************************************
*
*  Copyright 2025 SAP SE
*
*  Licensed under the Apache License, Version 2.0 (the "License");
*  you may not use this file except in compliance with the License.
*  You may obtain a copy of the License at
*
*      http://www.apache.org/licenses/LICENSE-2.0
*
*  Unless required by applicable law or agreed to in writing, software
*  distributed under the License is distributed on an "AS IS" BASIS,
*  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
*  See the License for the specific language governing permissions and
*  limitations under the License.
*
******************************************************************************/

package apicmd

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
)

// headerReflector is an httpapi.API that implements the
// GET /debug/reflect-headers endpoint.
type headerReflector struct {
	Enabled bool // usually only on dev/QA systems
}

// AddTo implements the httpapi.API interface.
func (hr *headerReflector) AddTo(r *mux.Router) {
	if hr.Enabled {
		r.Methods("GET").Path("/debug/reflect-headers").HandlerFunc(reflectHeaders)
	}
}

func reflectHeaders(w http.ResponseWriter, r *http.Request) {
	// echo all request headers into the response body
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	for _, headerName := range slices.Sorted(maps.Keys(r.Header)) {
		for _, val := range r.Header[headerName] {
			fmt.Fprintf(w, "Request %s: %s\n", headerName, val)
		}
	}
}
