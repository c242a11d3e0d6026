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

package test

import (
	"encoding/json"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/schemas"
)

// ProviderPayload returns a full provider tree in the JSON format that
// POST /v1/providers accepts. Each call builds a fresh copy, so tests
// can mutate the result freely.
func ProviderPayload() assert.JSONObject {
	return assert.JSONObject{
		"name":           "example-cloud",
		"type":           "openstack",
		"description":    "example provider for unit tests",
		"is_public":      true,
		"support_emails": []string{"ops@example.org"},
		"projects": []assert.JSONObject{
			{"name": "alpha", "uuid": "proj-alpha"},
			{"name": "beta", "uuid": "proj-beta"},
		},
		"identity_providers": []assert.JSONObject{{
			"endpoint":     "https://idp.example.org",
			"group_claim":  "groups",
			"relationship": assert.JSONObject{"idp_name": "example-idp", "protocol": "openid"},
			"user_groups": []assert.JSONObject{{
				"name": "researchers",
				"sla": assert.JSONObject{
					"doc_uuid":   "sla-0001",
					"start_date": "2025-01-01",
					"end_date":   "2025-12-31",
					"project":    "proj-alpha",
				},
			}},
		}},
		"regions": []assert.JSONObject{{
			"name": "region-one",
			"location": assert.JSONObject{
				"site":         "Garching",
				"country":      "Germany",
				"country_code": "DE",
				"latitude":     48.26,
				"longitude":    11.67,
			},
			"compute_services": []assert.JSONObject{{
				"endpoint": "https://compute.example.org",
				"name":     "nova",
				"flavors": []assert.JSONObject{
					{"name": "m1.small", "uuid": "flavor-small", "vcpus": 2, "ram": 4096, "disk": 20},
					{"name": "m1.private", "uuid": "flavor-private", "vcpus": 8, "ram": 16384, "disk": 80,
						"is_public": false, "projects": []string{"proj-alpha"}},
				},
				"images": []assert.JSONObject{
					{"name": "ubuntu-24.04", "uuid": "image-ubuntu", "os_type": "linux", "os_distro": "ubuntu", "os_version": "24.04"},
				},
				"quotas": []assert.JSONObject{
					{"cores": 20, "instances": 10, "ram": 40960, "project": "proj-alpha"},
					{"cores": 4, "instances": 2, "ram": 8192, "per_user": true, "project": "proj-alpha"},
				},
			}},
			"block_storage_services": []assert.JSONObject{{
				"endpoint": "https://volumes.example.org",
				"name":     "cinder",
				"quotas": []assert.JSONObject{
					{"gigabytes": 50, "volumes": 10, "per_volume_gigabytes": 20, "project": "proj-alpha"},
				},
			}},
			"network_services": []assert.JSONObject{{
				"endpoint": "https://network.example.org",
				"name":     "neutron",
				"networks": []assert.JSONObject{
					{"name": "public-net", "uuid": "net-public", "is_router_external": true, "mtu": 1500},
					{"name": "alpha-net", "uuid": "net-alpha", "is_shared": false, "project": "proj-alpha"},
				},
				"quotas": []assert.JSONObject{
					{"public_ips": 5, "networks": 10, "ports": 100, "security_groups": 10, "security_group_rules": 100, "project": "proj-beta"},
				},
			}},
			"identity_services": []assert.JSONObject{{
				"endpoint": "https://keystone.example.org",
				"name":     "keystone",
			}},
			"object_storage_services": []assert.JSONObject{{
				"endpoint": "https://swift.example.org",
				"name":     "swift",
				"quotas": []assert.JSONObject{
					{"bytes": 1073741824, "project": "proj-beta"},
				},
			}},
		}},
	}
}

// ProviderTree decodes a JSON payload into the schemas type, the same
// way that the API does for submitted payloads. This applies the
// documented field defaults, which Go struct literals would not.
func ProviderTree(t *testing.T, payload assert.JSONObject) schemas.ProviderCreateExtended {
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
	err = tree.Validate()
	if err != nil {
		t.Fatal(err.Error())
	}
	return tree
}
