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

func TestCreateProviderAndExportRoundTrip(t *testing.T) {
	s := test.NewSetup(t)
	tree := test.ProviderTree(t, test.ProviderPayload())

	node, err := s.Processor.CreateProvider(s.Ctx, tree)
	mustSucceed(t, err)
	if node.UID == "" {
		t.Fatal("expected a provider UID")
	}

	expectNodeCount(t, s, models.LabelProvider, 1)
	expectNodeCount(t, s, models.LabelProject, 2)
	expectNodeCount(t, s, models.LabelRegion, 1)
	expectNodeCount(t, s, models.LabelLocation, 1)
	expectNodeCount(t, s, models.LabelComputeService, 1)
	expectNodeCount(t, s, models.LabelBlockStorageService, 1)
	expectNodeCount(t, s, models.LabelNetworkService, 1)
	expectNodeCount(t, s, models.LabelIdentityService, 1)
	expectNodeCount(t, s, models.LabelObjectStorageService, 1)
	expectNodeCount(t, s, models.LabelFlavor, 2)
	expectNodeCount(t, s, models.LabelImage, 1)
	expectNodeCount(t, s, models.LabelNetwork, 2)
	expectNodeCount(t, s, models.LabelComputeQuota, 2)
	expectNodeCount(t, s, models.LabelBlockStorageQuota, 1)
	expectNodeCount(t, s, models.LabelNetworkQuota, 1)
	expectNodeCount(t, s, models.LabelObjectStorageQuota, 1)
	expectNodeCount(t, s, models.LabelIdentityProvider, 1)
	expectNodeCount(t, s, models.LabelUserGroup, 1)
	expectNodeCount(t, s, models.LabelSLA, 1)

	result, err := s.Processor.ExportProvider(s.Ctx, node)
	mustSucceed(t, err)
	test.AssertEqualJSON(t, "exported provider", result, tree)
}

func TestResubmissionIsIdempotent(t *testing.T) {
	s := test.NewSetup(t)
	tree := test.ProviderTree(t, test.ProviderPayload())

	node, err := s.Processor.CreateProvider(s.Ctx, tree)
	mustSucceed(t, err)
	flavorUID := findNode(t, s, models.LabelFlavor, "uuid", "flavor-small").UID

	updated, err := s.Processor.UpdateProvider(s.Ctx, node, tree, true)
	mustSucceed(t, err)
	if updated != nil {
		t.Error("expected no change on identical resubmission")
	}

	// resubmission must not churn node identities
	assert.DeepEqual(t, "flavor UID",
		findNode(t, s, models.LabelFlavor, "uuid", "flavor-small").UID, flavorUID)
	expectNodeCount(t, s, models.LabelFlavor, 2)
	expectNodeCount(t, s, models.LabelSLA, 1)
}

func TestUpdateWithoutForceSkipsSubtrees(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	// the payload drops the whole region, but without force only the
	// provider's own scalars are reconciled
	payload := test.ProviderPayload()
	payload["description"] = "under new management"
	payload["regions"] = []assert.JSONObject{}

	updated, err := s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), false)
	mustSucceed(t, err)
	if updated == nil {
		t.Fatal("expected the description change to be applied")
	}

	reread, err := s.Store.GetNodeByUID(s.Ctx, node.UID)
	mustSucceed(t, err)
	assert.DeepEqual(t, "description", reread.Props["description"], any("under new management"))
	expectNodeCount(t, s, models.LabelRegion, 1)
	expectNodeCount(t, s, models.LabelFlavor, 2)
}

func TestUpdateScalarsKeepsNodeIdentity(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	quotaBefore := findNode(t, s, models.LabelComputeQuota, "cores", 20)
	flavorBefore := findNode(t, s, models.LabelFlavor, "uuid", "flavor-small")

	payload := test.ProviderPayload()
	svc := payload["regions"].([]assert.JSONObject)[0]["compute_services"].([]assert.JSONObject)[0]
	svc["quotas"].([]assert.JSONObject)[0]["cores"] = 30
	svc["flavors"].([]assert.JSONObject)[0]["disk"] = 50

	updated, err := s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)
	if updated == nil {
		t.Fatal("expected the update to report a change")
	}

	quotaAfter := findNode(t, s, models.LabelComputeQuota, "cores", 30)
	assert.DeepEqual(t, "quota UID", quotaAfter.UID, quotaBefore.UID)
	flavorAfter := findNode(t, s, models.LabelFlavor, "uuid", "flavor-small")
	assert.DeepEqual(t, "flavor UID", flavorAfter.UID, flavorBefore.UID)
	assert.DeepEqual(t, "flavor disk", flavorAfter.Props["disk"], any(float64(50)))
}

func TestUpdateRemovesUnmatchedProject(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	// proj-beta disappears from the payload, and with it its quotas
	payload := test.ProviderPayload()
	payload["projects"] = payload["projects"].([]assert.JSONObject)[:1]
	region := payload["regions"].([]assert.JSONObject)[0]
	region["network_services"].([]assert.JSONObject)[0]["quotas"] = []assert.JSONObject{}
	region["object_storage_services"].([]assert.JSONObject)[0]["quotas"] = []assert.JSONObject{}

	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)

	expectNodeCount(t, s, models.LabelProject, 1)
	expectNodeCount(t, s, models.LabelNetworkQuota, 0)
	expectNodeCount(t, s, models.LabelObjectStorageQuota, 0)
}

func TestUpdateRemovesUnmatchedRegion(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	payload := test.ProviderPayload()
	payload["regions"] = []assert.JSONObject{}

	_, err = s.Processor.UpdateProvider(s.Ctx, node, test.ProviderTree(t, payload), true)
	mustSucceed(t, err)

	expectNodeCount(t, s, models.LabelRegion, 0)
	expectNodeCount(t, s, models.LabelLocation, 0)
	for _, label := range models.ServiceLabels {
		expectNodeCount(t, s, label, 0)
	}
	expectNodeCount(t, s, models.LabelFlavor, 0)
	expectNodeCount(t, s, models.LabelImage, 0)
	expectNodeCount(t, s, models.LabelNetwork, 0)
	for _, label := range models.QuotaLabels {
		expectNodeCount(t, s, label, 0)
	}

	// projects and the identity subtree are not touched by a region removal
	expectNodeCount(t, s, models.LabelProject, 2)
	expectNodeCount(t, s, models.LabelIdentityProvider, 1)
	expectNodeCount(t, s, models.LabelSLA, 1)
}

func TestRemoveProviderClearsEverything(t *testing.T) {
	s := test.NewSetup(t)
	node, err := s.Processor.CreateProvider(s.Ctx, test.ProviderTree(t, test.ProviderPayload()))
	mustSucceed(t, err)

	mustSucceed(t, s.Processor.RemoveProvider(s.Ctx, node))

	for _, label := range models.AllLabels {
		expectNodeCount(t, s, label, 0)
	}
}

func expectNodeCount(t *testing.T, s test.Setup, label string, expected int) {
	t.Helper()
	nodes, err := s.Store.ListNodes(s.Ctx, label, nil, graph.ListOpts{})
	mustSucceed(t, err)
	if len(nodes) != expected {
		t.Errorf("expected %d %s nodes, got %d", expected, label, len(nodes))
	}
}

func findNode(t *testing.T, s test.Setup, label, key string, value any) *graph.Node {
	t.Helper()
	node, err := s.Store.GetNode(s.Ctx, label, graph.Filter{key: value})
	mustSucceed(t, err)
	if node == nil {
		t.Fatalf("expected a %s node with %s = %v", label, key, value)
	}
	return node
}

func mustSucceed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err.Error())
	}
}
