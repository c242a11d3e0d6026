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

package models

import (
	"testing"

	"github.com/sapcc/go-bits/assert"
)

func TestPropsNormalization(t *testing.T) {
	props := PropsOf(Flavor{Name: "m1.small", UUID: "f1", VCPUs: 2, IsPublic: true})

	// props carry JSON types only, so ints come out as float64
	assert.DeepEqual(t, "vcpus", props["vcpus"], any(float64(2)))
	assert.DeepEqual(t, "is_public", props["is_public"], any(true))
	assert.DeepEqual(t, "name", props["name"], any("m1.small"))
}

func TestDecodeRecoversTypedView(t *testing.T) {
	original := ObjectStorageQuota{Description: "tiny", Bytes: -1, Containers: 1000, Objects: 5}
	decoded, err := Decode[ObjectStorageQuota](PropsOf(original))
	if err != nil {
		t.Fatal(err.Error())
	}
	assert.DeepEqual(t, "quota", decoded, original)
}

func TestDecodeToleratesExtraProps(t *testing.T) {
	props := PropsOf(Project{Name: "alpha", UUID: "p1"})
	props["left_over"] = "from an older schema"
	decoded, err := Decode[Project](props)
	if err != nil {
		t.Fatal(err.Error())
	}
	assert.DeepEqual(t, "name", decoded.Name, "alpha")
}
