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

package schemas

import (
	"encoding/json"
	"testing"

	"github.com/sapcc/go-bits/assert"
)

func TestProviderDefaults(t *testing.T) {
	var p ProviderCreateExtended
	mustUnmarshal(t, `{"name": "x", "type": "openstack"}`, &p)
	assert.DeepEqual(t, "status", p.Status, "active")

	mustUnmarshal(t, `{"name": "x", "type": "openstack", "status": "maintenance"}`, &p)
	assert.DeepEqual(t, "status", p.Status, "maintenance")
}

func TestFlavorAndImageDefaults(t *testing.T) {
	var f FlavorCreateExtended
	mustUnmarshal(t, `{"name": "m1", "uuid": "f1"}`, &f)
	assert.DeepEqual(t, "is_public", f.IsPublic, true)

	mustUnmarshal(t, `{"name": "m1", "uuid": "f1", "is_public": false}`, &f)
	assert.DeepEqual(t, "is_public", f.IsPublic, false)

	var i ImageCreateExtended
	mustUnmarshal(t, `{"name": "img", "uuid": "i1"}`, &i)
	assert.DeepEqual(t, "is_public", i.IsPublic, true)
}

func TestNetworkDefaults(t *testing.T) {
	var n NetworkCreateExtended
	mustUnmarshal(t, `{"name": "net", "uuid": "n1"}`, &n)
	assert.DeepEqual(t, "is_shared", n.IsShared, true)

	mustUnmarshal(t, `{"name": "net", "uuid": "n1", "is_shared": false, "project": "p1"}`, &n)
	assert.DeepEqual(t, "is_shared", n.IsShared, false)
	assert.DeepEqual(t, "project", n.Project, "p1")
}

func TestObjectStorageQuotaDefaults(t *testing.T) {
	var q ObjectStorageQuotaCreateExtended
	mustUnmarshal(t, `{"project": "p1"}`, &q)
	assert.DeepEqual(t, "bytes", q.Bytes, -1)
	assert.DeepEqual(t, "containers", q.Containers, 1000)
	assert.DeepEqual(t, "objects", q.Objects, -1)

	mustUnmarshal(t, `{"project": "p1", "bytes": 42, "containers": 5, "objects": 10}`, &q)
	assert.DeepEqual(t, "bytes", q.Bytes, 42)
	assert.DeepEqual(t, "containers", q.Containers, 5)
	assert.DeepEqual(t, "objects", q.Objects, 10)
}

func TestDateParsing(t *testing.T) {
	var s SLACreate
	mustUnmarshal(t, `{"doc_uuid": "d1", "start_date": "2025-01-01", "end_date": "2025-12-31"}`, &s)
	assert.DeepEqual(t, "start_date", s.StartDate, Date("2025-01-01"))
	if !s.StartDate.Before(s.EndDate) {
		t.Error("expected start_date to be before end_date")
	}

	err := json.Unmarshal([]byte(`{"start_date": "01.01.2025"}`), &s)
	if err == nil {
		t.Error("expected a parse error for a malformed date")
	}
}

func mustUnmarshal(t *testing.T, input string, target any) {
	t.Helper()
	err := json.Unmarshal([]byte(input), target)
	if err != nil {
		t.Fatal(err.Error())
	}
}
