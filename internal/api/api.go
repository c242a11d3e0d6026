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

// Package api contains the HTTP API of fedreg: provider submission and
// reconciliation on the write side, catalog queries on the read side.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/processor"
)

// API contains state variables used by the fedreg API implementation.
type API struct {
	proc    *processor.Processor
	auditor fedreg.Auditor

	// can be replaced by a deterministic double for unit tests
	timeNow func() time.Time
}

// NewAPI constructs a new API instance.
func NewAPI(proc *processor.Processor, auditor fedreg.Auditor) *API {
	return &API{proc, auditor, time.Now}
}

// OverrideTimeNow replaces time.Now with a test double.
func (a *API) OverrideTimeNow(timeNow func() time.Time) *API {
	a.timeNow = timeNow
	return a
}

// AddTo adds routes for this API to the given router.
func (a *API) AddTo(r *mux.Router) {
	r.Methods("GET").Path("/v1/providers").HandlerFunc(a.handleListProviders)
	r.Methods("POST").Path("/v1/providers").HandlerFunc(a.handlePostProvider)
	r.Methods("GET").Path("/v1/providers/{uid}").HandlerFunc(a.handleGetProvider)
	r.Methods("PUT").Path("/v1/providers/{uid}").HandlerFunc(a.handlePutProvider)
	r.Methods("DELETE").Path("/v1/providers/{uid}").HandlerFunc(a.handleDeleteProvider)

	for _, route := range catalogRoutes {
		r.Methods("GET").Path(route.path).HandlerFunc(a.makeCatalogHandler(route))
	}
}

// respondWithError writes a RegError rendering of err and returns true,
// or does nothing and returns false if err is nil.
func respondWithError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	rerr := fedreg.AsRegError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rerr.HTTPStatus())
	buf, marshalErr := rerr.MarshalJSON()
	if marshalErr != nil {
		return true
	}
	w.Write(append(buf, '\n')) //nolint:errcheck
	return true
}

// isPrivilegedRequest reports whether the caller gets the private view
// of the catalog. Token validation itself happens upstream of fedreg;
// what arrives here is only the presence of an already-validated token.
func isPrivilegedRequest(r *http.Request) bool {
	return r.Header.Get("X-Auth-Token") != ""
}

// loadNode resolves a {uid} path variable into a node of the expected
// label. A node of a different label intentionally yields NOT_FOUND.
func (a *API) loadNode(r *http.Request, label string) (*graph.Node, error) {
	uid := mux.Vars(r)["uid"]
	node, err := a.proc.Store().GetNodeByUID(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	if node == nil || node.Label != label {
		return nil, fedreg.ErrNotFound.With("no %s with UID %s", label, uid)
	}
	return node, nil
}
