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
	"strings"
	"testing"

	"github.com/aryann/difflib"
)

// AssertEqualJSON checks that both values render to the same JSON, and
// prints a line diff of the renderings otherwise. By comparing the JSON
// renderings instead of the values, differences between e.g. int and
// float64 props do not matter.
func AssertEqualJSON(t *testing.T, variable string, actual, expected any) bool {
	t.Helper()
	actualJSON := toIndentedJSON(t, actual)
	expectedJSON := toIndentedJSON(t, expected)
	if actualJSON == expectedJSON {
		return true
	}

	var lines []string
	for _, record := range difflib.Diff(strings.Split(expectedJSON, "\n"), strings.Split(actualJSON, "\n")) {
		switch record.Delta {
		case difflib.LeftOnly:
			lines = append(lines, "-"+record.Payload)
		case difflib.RightOnly:
			lines = append(lines, "+"+record.Payload)
		case difflib.Common:
			lines = append(lines, " "+record.Payload)
		}
	}
	t.Errorf("unexpected value for %s (diff from expected to actual):\n%s", variable, strings.Join(lines, "\n"))
	return false
}

func toIndentedJSON(t *testing.T, value any) string {
	t.Helper()
	buf, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("cannot marshal %T: %s", value, err.Error())
	}
	return string(buf)
}
