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
	"net/http"
	"strconv"
	"strings"

	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/models"
)

// catalogRoute describes one read-only listing endpoint. All listings
// share the same handler: filter by whitelisted props, sort, paginate,
// and strip restricted fields for unprivileged callers.
type catalogRoute struct {
	path       string
	envelope   string // key of the result list in the response body
	label      string
	filterKeys []string
	// props hidden from unprivileged callers; nil means the whole
	// entity is public
	restrictedProps []string
	// when set, unprivileged callers only see nodes where this bool
	// prop is true
	publicFlag string
}

var providersRoute = catalogRoute{
	path:            "/v1/providers",
	envelope:        "providers",
	label:           models.LabelProvider,
	filterKeys:      []string{"name", "type", "status"},
	restrictedProps: []string{"support_emails"},
	publicFlag:      "is_public",
}

var catalogRoutes = []catalogRoute{
	{
		path:       "/v1/projects",
		envelope:   "projects",
		label:      models.LabelProject,
		filterKeys: []string{"name", "uuid"},
	},
	{
		path:       "/v1/regions",
		envelope:   "regions",
		label:      models.LabelRegion,
		filterKeys: []string{"name"},
	},
	{
		path:       "/v1/locations",
		envelope:   "locations",
		label:      models.LabelLocation,
		filterKeys: []string{"site", "country"},
	},
	{
		path:       "/v1/flavors",
		envelope:   "flavors",
		label:      models.LabelFlavor,
		filterKeys: []string{"name", "uuid"},
		publicFlag: "is_public",
	},
	{
		path:       "/v1/images",
		envelope:   "images",
		label:      models.LabelImage,
		filterKeys: []string{"name", "uuid"},
		publicFlag: "is_public",
	},
	{
		path:       "/v1/networks",
		envelope:   "networks",
		label:      models.LabelNetwork,
		filterKeys: []string{"name", "uuid"},
		publicFlag: "is_shared",
	},
	{
		path:            "/v1/identity_providers",
		envelope:        "identity_providers",
		label:           models.LabelIdentityProvider,
		filterKeys:      []string{"endpoint"},
		restrictedProps: []string{"group_claim"},
	},
	{
		path:       "/v1/user_groups",
		envelope:   "user_groups",
		label:      models.LabelUserGroup,
		filterKeys: []string{"name"},
	},
	{
		path:       "/v1/slas",
		envelope:   "slas",
		label:      models.LabelSLA,
		filterKeys: []string{"doc_uuid"},
	},
}

func (a *API) makeCatalogHandler(route catalogRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpapi.IdentifyEndpoint(r, route.path)
		catalogRequestsCounter.WithLabelValues(route.label).Inc()

		query := r.URL.Query()
		opts, err := parseListOpts(query)
		if respondWithError(w, err) {
			return
		}
		filter := graph.Filter{}
		for _, key := range route.filterKeys {
			if value := query.Get(key); value != "" {
				filter[key] = value
			}
		}
		privileged := isPrivilegedRequest(r)
		if !privileged && route.publicFlag != "" {
			filter[route.publicFlag] = true
		}

		nodes, err := a.proc.Store().ListNodes(r.Context(), route.label, filter, opts)
		if respondWithError(w, err) {
			return
		}

		entries := make([]map[string]any, 0, len(nodes))
		for _, node := range nodes {
			entry := map[string]any{"uid": node.UID}
			for key, value := range node.Props {
				entry[key] = value
			}
			if !privileged {
				for _, key := range route.restrictedProps {
					delete(entry, key)
				}
			}
			entries = append(entries, entry)
		}
		respondwith.JSON(w, http.StatusOK, map[string]any{route.envelope: entries})
	}
}

// parseListOpts reads the pagination and sorting query parameters:
// skip, limit, and sort (a prop key with an optional _asc or _desc
// suffix).
func parseListOpts(query map[string][]string) (graph.ListOpts, error) {
	var opts graph.ListOpts

	getInt := func(key string) (int, error) {
		values := query[key]
		if len(values) == 0 || values[0] == "" {
			return 0, nil
		}
		value, err := strconv.Atoi(values[0])
		if err != nil || value < 0 {
			return 0, fedreg.ErrInvalidInput.With("invalid value for %s: %q", key, values[0])
		}
		return value, nil
	}

	var err error
	opts.Skip, err = getInt("skip")
	if err != nil {
		return opts, err
	}
	opts.Limit, err = getInt("limit")
	if err != nil {
		return opts, err
	}

	if values := query["sort"]; len(values) > 0 && values[0] != "" {
		sortKey := values[0]
		descending := strings.HasSuffix(sortKey, "_desc")
		sortKey = strings.TrimSuffix(strings.TrimSuffix(sortKey, "_desc"), "_asc")
		if descending {
			sortKey = "-" + sortKey
		}
		opts.Sort = sortKey
	}
	return opts, nil
}
