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

package api

import (
	"io"
	"net/http"

	"github.com/sapcc/go-api-declarations/cadf"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/models"
	"github.com/sapcc/fedreg/internal/schemas"
)

func (a *API) handlePostProvider(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/providers")
	in, ok := a.decodeProviderTree(w, r)
	if !ok {
		return
	}

	existing, err := a.proc.Store().GetNode(r.Context(), models.LabelProvider,
		graph.Filter{"name": in.Name, "type": in.Type})
	if respondWithError(w, err) {
		return
	}
	if existing != nil {
		respondWithError(w, fedreg.ErrConflict.With(
			"provider %q of type %q already exists as %s", in.Name, in.Type, existing.UID))
		return
	}

	node, err := a.proc.CreateProvider(r.Context(), in)
	if err != nil {
		submissionsCounter.WithLabelValues("create", "error").Inc()
		respondWithError(w, err)
		return
	}
	submissionsCounter.WithLabelValues("create", "success").Inc()
	a.recordProviderEvent(r, cadf.CreateAction, node)

	result, err := a.proc.ExportProvider(r.Context(), node)
	if respondWithError(w, err) {
		return
	}
	respondwith.JSON(w, http.StatusCreated, providerResponse{node.UID, result})
}

func (a *API) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/providers/:uid")
	node, err := a.loadNode(r, models.LabelProvider)
	if respondWithError(w, err) {
		return
	}
	result, err := a.proc.ExportProvider(r.Context(), node)
	if respondWithError(w, err) {
		return
	}
	respondwith.JSON(w, http.StatusOK, providerResponse{node.UID, result})
}

func (a *API) handlePutProvider(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/providers/:uid")
	node, err := a.loadNode(r, models.LabelProvider)
	if respondWithError(w, err) {
		return
	}
	in, ok := a.decodeProviderTree(w, r)
	if !ok {
		return
	}

	// the resubmitted payload names the provider implicitly; a payload
	// for a different provider on this UID is a caller mistake
	if stringProp(node, "name") != in.Name || stringProp(node, "type") != in.Type {
		respondWithError(w, fedreg.ErrConflict.With(
			"payload describes provider %q of type %q, but UID %s is a different provider", in.Name, in.Type, node.UID))
		return
	}

	force := r.URL.Query().Get("force") != "false"
	updated, err := a.proc.UpdateProvider(r.Context(), node, in, force)
	if err != nil {
		submissionsCounter.WithLabelValues("update", "error").Inc()
		respondWithError(w, err)
		return
	}
	submissionsCounter.WithLabelValues("update", "success").Inc()
	if updated != nil {
		a.recordProviderEvent(r, cadf.UpdateAction, node)
	}

	result, err := a.proc.ExportProvider(r.Context(), node)
	if respondWithError(w, err) {
		return
	}
	respondwith.JSON(w, http.StatusOK, providerResponse{node.UID, result})
}

func (a *API) handleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/providers/:uid")
	node, err := a.loadNode(r, models.LabelProvider)
	if respondWithError(w, err) {
		return
	}
	err = a.proc.RemoveProvider(r.Context(), node)
	if err != nil {
		submissionsCounter.WithLabelValues("delete", "error").Inc()
		respondWithError(w, err)
		return
	}
	submissionsCounter.WithLabelValues("delete", "success").Inc()
	a.recordProviderEvent(r, cadf.DeleteAction, node)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListProviders(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/providers")
	a.makeCatalogHandler(providersRoute)(w, r)
}

// providerResponse is the response body payload for the single-provider
// endpoints.
type providerResponse struct {
	UID      string                         `json:"uid"`
	Provider schemas.ProviderCreateExtended `json:"provider"`
}

func (a *API) decodeProviderTree(w http.ResponseWriter, r *http.Request) (schemas.ProviderCreateExtended, bool) {
	var in schemas.ProviderCreateExtended
	buf, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, fedreg.ErrInvalidInput.With("cannot read request body: %s", err.Error()))
		return in, false
	}
	err = fedreg.UnmarshalJSONStrict(buf, &in)
	if err != nil {
		respondWithError(w, fedreg.ErrInvalidInput.With("%s", err.Error()))
		return in, false
	}
	err = in.Validate()
	if respondWithError(w, err) {
		return in, false
	}
	return in, true
}

func stringProp(node *graph.Node, key string) string {
	value, _ := node.Props[key].(string)
	return value
}
