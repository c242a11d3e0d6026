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

package processor_test

import (
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/models"
	"github.com/sapcc/fedreg/internal/test"
)

// withSecondComputeService adds another compute service to the fixture
// region that declares the same m1.small flavor as the first one.
func withSecondComputeService(payload assert.JSONObject) assert.JSONObject {
	region := payload["regions"].([]assert.JSONObject)[0]
	region["compute_services"] = append(region["compute_services"].([]assert.JSONObject), assert.JSONObject{
		"endpoint": "https://compute-gpu.example.org",
		"name":     "nova-gpu",
		"flavors": []assert.JSONObject{
			{"name": "m1.small", "uuid": "flavor-small", "vcpus": 2, "ram": 4096, "disk": 20},
		},
	})
	return payload
}

func TestFlavorSharedBetweenServices(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx,
		test.ProviderTree(t, withSecondComputeService(test.ProviderPayload())))
	mustSucceed(t, err)

	// both services reference one flavor node
	expectNodeCount(t, s, models.LabelComputeService, 2)
	expectNodeCount(t, s, models.LabelFlavor, 2)
	flavor := findNode(t, s, models.LabelFlavor, "uuid", "flavor-small")
	owners, err := s.Store.CountRelated(s.Ctx, models.RelHasFlavor, flavor.UID, graph.Incoming)
	mustSucceed(t, err)
	assert.DeepEqual(t, "owners", owners, 2)

	// dropping one service only detaches the shared flavor
	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, test.ProviderPayload()), true)
	mustSucceed(t, err)
	expectNodeCount(t, s, models.LabelComputeService, 1)
	surviving := findNode(t, s, models.LabelFlavor, "uuid", "flavor-small")
	assert.DeepEqual(t, "flavor UID", surviving.UID, flavor.UID)
	owners, err = s.Store.CountRelated(s.Ctx, models.RelHasFlavor, surviving.UID, graph.Incoming)
	mustSucceed(t, err)
	assert.DeepEqual(t, "owners", owners, 1)
}

func TestFlavorNotSharedBetweenProviders(t *testing.T) {
	s := test.NewSetup(t)
	_, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	// a second provider declaring the same flavor UUID gets its own node
	otherPayload := test.ProviderPayload()
	otherPayload["name"] = "other-cloud"
	otherPayload["identity_providers"] = []assert.JSONObject{}
	_, err = s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, otherPayload))
	mustSucceed(t, err)

	flavors, err := s.Store.ListNodes(s.Ctx, models.LabelFlavor,
		graph.Filter{"uuid": "flavor-small"}, graph.ListOpts{})
	mustSucceed(t, err)
	if len(flavors) != 2 {
		t.Errorf("expected one flavor node per provider, got %d", len(flavors))
	}
}

func TestIdentityProviderSharedBetweenProviders(t *testing.T) {
	s := test.NewSetup(t)
	first, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	otherPayload := test.ProviderPayload()
	otherPayload["name"] = "other-cloud"
	second, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, otherPayload))
	mustSucceed(t, err)

	// same endpoint, same IdP node
	expectNodeCount(t, s, models.LabelIdentityProvider, 1)
	expectNodeCount(t, s, models.LabelUserGroup, 1)
	expectNodeCount(t, s, models.LabelSLA, 1)

	// the shared SLA binds one project per provider
	sla := findNode(t, s, models.LabelSLA, "doc_uuid", "sla-0001")
	bound, err := s.Store.CountRelated(s.Ctx, models.RelBindsProject, sla.UID, graph.Outgoing)
	mustSucceed(t, err)
	assert.DeepEqual(t, "bound projects", bound, 2)

	// the IdP outlives the first provider, but not the second
	mustSucceed(t, s.Processor.RemoveProvider(s.Ctx, first))
	expectNodeCount(t, s, models.LabelIdentityProvider, 1)
	expectNodeCount(t, s, models.LabelUserGroup, 1)
	mustSucceed(t, s.Processor.RemoveProvider(s.Ctx, second))
	expectNodeCount(t, s, models.LabelIdentityProvider, 0)
	expectNodeCount(t, s, models.LabelUserGroup, 0)
	expectNodeCount(t, s, models.LabelSLA, 0)
}

func TestSLAProjectReassignment(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	payload := test.ProviderPayload()
	idp := payload["identity_providers"].([]assert.JSONObject)[0]
	sla := idp["user_groups"].([]assert.JSONObject)[0]["sla"].(assert.JSONObject)
	sla["project"] = "proj-beta"

	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)

	slaNode := findNode(t, s, models.LabelSLA, "doc_uuid", "sla-0001")
	bound, err := s.Store.Related(s.Ctx, models.RelBindsProject, slaNode.UID, graph.Outgoing)
	mustSucceed(t, err)
	if len(bound) != 1 {
		t.Fatalf("expected the SLA to bind exactly one project, got %d", len(bound))
	}
	assert.DeepEqual(t, "bound project", bound[0].Props["uuid"], any("proj-beta"))
}

func TestQuotaScopesAreIndependent(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)
	expectNodeCount(t, s, models.LabelComputeQuota, 2)

	// dropping the per-user quota leaves the total quota untouched
	payload := test.ProviderPayload()
	svc := payload["regions"].([]assert.JSONObject)[0]["compute_services"].([]assert.JSONObject)[0]
	svc["quotas"] = svc["quotas"].([]assert.JSONObject)[:1]

	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)
	expectNodeCount(t, s, models.LabelComputeQuota, 1)
	remaining := findNode(t, s, models.LabelComputeQuota, "per_user", false)
	assert.DeepEqual(t, "cores", remaining.Props["cores"], any(float64(20)))
}

func TestLocationReplacementOnSiteChange(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)
	locationBefore := findNode(t, s, models.LabelLocation, "site", "Garching")

	// same site: the node is updated in place
	payload := test.ProviderPayload()
	location := payload["regions"].([]assert.JSONObject)[0]["location"].(assert.JSONObject)
	location["latitude"] = 48.27
	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)
	updated := findNode(t, s, models.LabelLocation, "site", "Garching")
	assert.DeepEqual(t, "location UID", updated.UID, locationBefore.UID)
	assert.DeepEqual(t, "latitude", updated.Props["latitude"], any(48.27))

	// different site: the node is replaced
	location["site"] = "Berlin"
	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)
	expectNodeCount(t, s, models.LabelLocation, 1)
	replacement := findNode(t, s, models.LabelLocation, "site", "Berlin")
	if replacement.UID == locationBefore.UID {
		t.Error("expected a fresh location node after the site changed")
	}
}

func TestNetworkProjectMove(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	payload := test.ProviderPayload()
	networks := payload["regions"].([]assert.JSONObject)[0]["network_services"].([]assert.JSONObject)[0]["networks"].([]assert.JSONObject)
	networks[1]["project"] = "proj-beta"

	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)

	network := findNode(t, s, models.LabelNetwork, "uuid", "net-alpha")
	visible, err := s.Store.Related(s.Ctx, models.RelVisibleTo, network.UID, graph.Outgoing)
	mustSucceed(t, err)
	if len(visible) != 1 {
		t.Fatalf("expected the network to be visible to exactly one project, got %d", len(visible))
	}
	assert.DeepEqual(t, "project", visible[0].Props["uuid"], any("proj-beta"))
}
