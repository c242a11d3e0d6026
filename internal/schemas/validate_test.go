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

package schemas_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/schemas"
	"github.com/sapcc/fedreg/internal/test"
)

func TestValidatePayloadFixture(t *testing.T) {
	tree := decodeTree(t, test.ProviderPayload())
	err := tree.Validate()
	if err != nil {
		t.Fatalf("expected the payload fixture to be valid, got: %s", err.Error())
	}
}

func TestValidateRejections(t *testing.T) {
	region := func(p assert.JSONObject) assert.JSONObject {
		return p["regions"].([]assert.JSONObject)[0]
	}
	computeService := func(p assert.JSONObject) assert.JSONObject {
		return region(p)["compute_services"].([]assert.JSONObject)[0]
	}
	firstSLA := func(p assert.JSONObject) assert.JSONObject {
		idp := p["identity_providers"].([]assert.JSONObject)[0]
		return idp["user_groups"].([]assert.JSONObject)[0]["sla"].(assert.JSONObject)
	}

	testCases := []struct {
		name        string
		mutate      func(p assert.JSONObject)
		expectedMsg string
	}{
		{
			name:        "unknown provider type",
			mutate:      func(p assert.JSONObject) { p["type"] = "bare-metal" },
			expectedMsg: "not a valid provider type",
		},
		{
			name: "duplicate project UUID",
			mutate: func(p assert.JSONObject) {
				projects := p["projects"].([]assert.JSONObject)
				projects[1]["uuid"] = projects[0]["uuid"]
			},
			expectedMsg: "duplicate entry",
		},
		{
			name: "duplicate region name",
			mutate: func(p assert.JSONObject) {
				p["regions"] = append(p["regions"].([]assert.JSONObject), assert.JSONObject{"name": "region-one"})
			},
			expectedMsg: "duplicate entry",
		},
		{
			name:        "SLA with unknown project",
			mutate:      func(p assert.JSONObject) { firstSLA(p)["project"] = "proj-unknown" },
			expectedMsg: "is not among the provider's projects",
		},
		{
			name: "SLA date range inverted",
			mutate: func(p assert.JSONObject) {
				sla := firstSLA(p)
				sla["start_date"] = "2026-01-01"
				sla["end_date"] = "2025-01-01"
			},
			expectedMsg: "not before end_date",
		},
		{
			name: "duplicate SLA document UUID across groups",
			mutate: func(p assert.JSONObject) {
				idp := p["identity_providers"].([]assert.JSONObject)[0]
				idp["user_groups"] = append(idp["user_groups"].([]assert.JSONObject), assert.JSONObject{
					"name": "operators",
					"sla": assert.JSONObject{
						"doc_uuid":   "sla-0001",
						"start_date": "2025-01-01",
						"end_date":   "2025-12-31",
						"project":    "proj-beta",
					},
				})
			},
			expectedMsg: "duplicate SLA document UUID",
		},
		{
			name: "one project bound by two SLAs",
			mutate: func(p assert.JSONObject) {
				idp := p["identity_providers"].([]assert.JSONObject)[0]
				idp["user_groups"] = append(idp["user_groups"].([]assert.JSONObject), assert.JSONObject{
					"name": "operators",
					"sla": assert.JSONObject{
						"doc_uuid":   "sla-0002",
						"start_date": "2025-01-01",
						"end_date":   "2025-12-31",
						"project":    "proj-alpha",
					},
				})
			},
			expectedMsg: "already bound by the SLA",
		},
		{
			name: "private flavor without projects",
			mutate: func(p assert.JSONObject) {
				computeService(p)["flavors"].([]assert.JSONObject)[1]["projects"] = []string{}
			},
			expectedMsg: "must name at least one project",
		},
		{
			name: "public flavor with projects",
			mutate: func(p assert.JSONObject) {
				computeService(p)["flavors"].([]assert.JSONObject)[0]["projects"] = []string{"proj-alpha"}
			},
			expectedMsg: "cannot name projects",
		},
		{
			name: "gpu metadata without gpus",
			mutate: func(p assert.JSONObject) {
				computeService(p)["flavors"].([]assert.JSONObject)[0]["gpu_model"] = "A100"
			},
			expectedMsg: "require gpus > 0",
		},
		{
			name: "two total quotas for one project",
			mutate: func(p assert.JSONObject) {
				svc := computeService(p)
				svc["quotas"] = append(svc["quotas"].([]assert.JSONObject),
					assert.JSONObject{"cores": 99, "project": "proj-alpha"})
			},
			expectedMsg: "multiple quotas",
		},
		{
			name: "quota for unknown project",
			mutate: func(p assert.JSONObject) {
				computeService(p)["quotas"].([]assert.JSONObject)[0]["project"] = "proj-unknown"
			},
			expectedMsg: "is not among the provider's projects",
		},
		{
			name: "shared network naming a project",
			mutate: func(p assert.JSONObject) {
				net := region(p)["network_services"].([]assert.JSONObject)[0]["networks"].([]assert.JSONObject)[0]
				net["project"] = "proj-alpha"
			},
			expectedMsg: "shared networks cannot name a project",
		},
		{
			name: "private network without project",
			mutate: func(p assert.JSONObject) {
				net := region(p)["network_services"].([]assert.JSONObject)[0]["networks"].([]assert.JSONObject)[1]
				net["project"] = ""
			},
			expectedMsg: "must name exactly one project",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload := test.ProviderPayload()
			tc.mutate(payload)
			err := decodeTree(t, payload).Validate()
			if err == nil {
				t.Fatal("expected a validation error, got none")
			}
			if !fedreg.IsErrorCode(err, fedreg.ErrInvalidInput) {
				t.Errorf("expected an INVALID_INPUT error, got %#v", err)
			}
			if !strings.Contains(err.Error(), tc.expectedMsg) {
				t.Errorf("expected error message to contain %q, got %q", tc.expectedMsg, err.Error())
			}
		})
	}
}

// decodeTree is like test.ProviderTree, but skips validation so that
// the rejection tests reach Validate() themselves.
func decodeTree(t *testing.T, payload assert.JSONObject) schemas.ProviderCreateExtended {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err.Error())
	}
	var tree schemas.ProviderCreateExtended
	err = fedreg.UnmarshalJSONStrict(buf, &tree)
	if err != nil {
		t.Fatal(err.Error())
	}
	return tree
}
