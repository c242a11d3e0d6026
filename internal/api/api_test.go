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

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sapcc/go-api-declarations/cadf"
	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/fedreg/internal/test"
)

func TestProviderLifecycle(t *testing.T) {
	s := test.NewSetup(t)

	status, body := submit(t, s.Handler, "POST", "/v1/providers", test.ProviderPayload())
	expectStatus(t, status, http.StatusCreated)
	uid, _ := body["uid"].(string)
	if uid == "" {
		t.Fatalf("expected a provider UID in the response, got %v", body)
	}
	provider, _ := body["provider"].(map[string]any)
	if provider["name"] != "example-cloud" {
		t.Errorf("expected the response to echo the provider, got %v", provider)
	}
	s.Auditor.ExpectEvents(t, test.Event{Action: cadf.CreateAction, TargetID: uid})

	status, body = submit(t, s.Handler, "GET", "/v1/providers/"+uid, nil)
	expectStatus(t, status, http.StatusOK)
	if body["uid"] != uid {
		t.Errorf("expected UID %s, got %v", uid, body["uid"])
	}

	// an identical resubmission changes nothing and is not audited
	status, _ = submit(t, s.Handler, "PUT", "/v1/providers/"+uid, test.ProviderPayload())
	expectStatus(t, status, http.StatusOK)
	s.Auditor.ExpectEvents(t)

	// a real change is applied and audited
	payload := test.ProviderPayload()
	payload["description"] = "under new management"
	status, body = submit(t, s.Handler, "PUT", "/v1/providers/"+uid, payload)
	expectStatus(t, status, http.StatusOK)
	provider, _ = body["provider"].(map[string]any)
	if provider["description"] != "under new management" {
		t.Errorf("expected the updated description in the response, got %v", provider)
	}
	s.Auditor.ExpectEvents(t, test.Event{Action: cadf.UpdateAction, TargetID: uid})

	// a payload for a different provider is rejected on this UID
	payload = test.ProviderPayload()
	payload["name"] = "other-cloud"
	status, body = submit(t, s.Handler, "PUT", "/v1/providers/"+uid, payload)
	expectStatus(t, status, http.StatusConflict)
	if body["code"] != "CONFLICT" {
		t.Errorf("expected a CONFLICT error body, got %v", body)
	}
	s.Auditor.IgnoreEvents()

	status, _ = submit(t, s.Handler, "DELETE", "/v1/providers/"+uid, nil)
	expectStatus(t, status, http.StatusNoContent)
	s.Auditor.ExpectEvents(t, test.Event{Action: cadf.DeleteAction, TargetID: uid})

	status, _ = submit(t, s.Handler, "GET", "/v1/providers/"+uid, nil)
	expectStatus(t, status, http.StatusNotFound)
}

func TestPostProviderRejections(t *testing.T) {
	s := test.NewSetup(t)

	// malformed payload
	payload := test.ProviderPayload()
	payload["type"] = "bare-metal"
	status, body := submit(t, s.Handler, "POST", "/v1/providers", payload)
	expectStatus(t, status, http.StatusUnprocessableEntity)
	if body["code"] != "INVALID_INPUT" {
		t.Errorf("expected an INVALID_INPUT error body, got %v", body)
	}

	// unknown fields are rejected, not silently dropped
	payload = test.ProviderPayload()
	payload["nmae"] = "typo"
	status, _ = submit(t, s.Handler, "POST", "/v1/providers", payload)
	expectStatus(t, status, http.StatusUnprocessableEntity)

	// duplicate name/type pair
	status, _ = submit(t, s.Handler, "POST", "/v1/providers", test.ProviderPayload())
	expectStatus(t, status, http.StatusCreated)
	status, _ = submit(t, s.Handler, "POST", "/v1/providers", test.ProviderPayload())
	expectStatus(t, status, http.StatusConflict)
	s.Auditor.IgnoreEvents()
}

func TestCatalogVisibility(t *testing.T) {
	s := test.NewSetup(t)
	status, _ := submit(t, s.Handler, "POST", "/v1/providers", test.ProviderPayload())
	expectStatus(t, status, http.StatusCreated)
	s.Auditor.IgnoreEvents()

	// unprivileged callers only see public flavors
	status, body := submit(t, s.Handler, "GET", "/v1/flavors", nil)
	expectStatus(t, status, http.StatusOK)
	flavors, _ := body["flavors"].([]any)
	if len(flavors) != 1 {
		t.Fatalf("expected only the public flavor, got %v", flavors)
	}
	if name := flavors[0].(map[string]any)["name"]; name != "m1.small" {
		t.Errorf("expected m1.small, got %v", name)
	}

	// a token reveals the private flavor as well
	status, body = submitWithToken(t, s.Handler, "GET", "/v1/flavors", nil)
	expectStatus(t, status, http.StatusOK)
	flavors, _ = body["flavors"].([]any)
	if len(flavors) != 2 {
		t.Fatalf("expected both flavors for privileged callers, got %v", flavors)
	}

	// restricted provider props are stripped from the public tier
	status, body = submit(t, s.Handler, "GET", "/v1/providers", nil)
	expectStatus(t, status, http.StatusOK)
	providers, _ := body["providers"].([]any)
	if len(providers) != 1 {
		t.Fatalf("expected one provider, got %v", providers)
	}
	if _, exists := providers[0].(map[string]any)["support_emails"]; exists {
		t.Error("expected support_emails to be hidden from unprivileged callers")
	}
	status, body = submitWithToken(t, s.Handler, "GET", "/v1/providers", nil)
	expectStatus(t, status, http.StatusOK)
	providers, _ = body["providers"].([]any)
	if _, exists := providers[0].(map[string]any)["support_emails"]; !exists {
		t.Error("expected support_emails to be visible to privileged callers")
	}
}

func TestCatalogListControls(t *testing.T) {
	s := test.NewSetup(t)
	status, _ := submit(t, s.Handler, "POST", "/v1/providers", test.ProviderPayload())
	expectStatus(t, status, http.StatusCreated)
	s.Auditor.IgnoreEvents()

	projectNames := func(query string) []any {
		t.Helper()
		status, body := submit(t, s.Handler, "GET", "/v1/projects"+query, nil)
		expectStatus(t, status, http.StatusOK)
		var names []any
		for _, entry := range body["projects"].([]any) {
			names = append(names, entry.(map[string]any)["name"])
		}
		return names
	}

	assert.DeepEqual(t, "names", projectNames("?sort=name_asc"), []any{"alpha", "beta"})
	assert.DeepEqual(t, "names", projectNames("?sort=name_desc"), []any{"beta", "alpha"})
	assert.DeepEqual(t, "names", projectNames("?sort=name_asc&skip=1&limit=1"), []any{"beta"})
	assert.DeepEqual(t, "names", projectNames("?uuid=proj-alpha"), []any{"alpha"})

	status, body := submit(t, s.Handler, "GET", "/v1/projects?limit=potato", nil)
	expectStatus(t, status, http.StatusUnprocessableEntity)
	if body["code"] != "INVALID_INPUT" {
		t.Errorf("expected an INVALID_INPUT error body, got %v", body)
	}
}

func submit(t *testing.T, handler http.Handler, method, path string, payload assert.JSONObject) (int, map[string]any) {
	t.Helper()
	return submitRequest(t, handler, method, path, payload, "")
}

func submitWithToken(t *testing.T, handler http.Handler, method, path string, payload assert.JSONObject) (int, map[string]any) {
	t.Helper()
	return submitRequest(t, handler, method, path, payload, "dummy-token")
}

func submitRequest(t *testing.T, handler http.Handler, method, path string, payload assert.JSONObject, token string) (int, map[string]any) {
	t.Helper()

	var requestBody *bytes.Reader
	if payload == nil {
		requestBody = bytes.NewReader(nil)
	} else {
		buf, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err.Error())
		}
		requestBody = bytes.NewReader(buf)
	}
	request := httptest.NewRequest(method, path, requestBody)
	if token != "" {
		request.Header.Set("X-Auth-Token", token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	response := recorder.Result()

	var body map[string]any
	if response.StatusCode != http.StatusNoContent {
		err := json.NewDecoder(response.Body).Decode(&body)
		if err != nil {
			t.Fatalf("%s %s: cannot decode response body: %s", method, path, err.Error())
		}
	}
	return response.StatusCode, body
}

func expectStatus(t *testing.T, actual, expected int) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected status %d, got %d", expected, actual)
	}
}
