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
	"testing"

	"github.com/sapcc/go-api-declarations/cadf"
	"github.com/sapcc/go-bits/audittools"
)

// Auditor is a fedreg.Auditor that records all events in memory, so that
// tests can check which audit events were generated.
type Auditor struct {
	events []audittools.Event
}

// Record implements the fedreg.Auditor interface.
func (a *Auditor) Record(event audittools.Event) {
	a.events = append(a.events, event)
}

// Event is the view of a recorded audit event that tests assert on.
type Event struct {
	Action   cadf.Action
	TargetID string
}

// ExpectEvents checks that the recorded events match the given
// action/target pairs, then clears the recording for the next phase of
// the test.
func (a *Auditor) ExpectEvents(t *testing.T, expected ...Event) {
	t.Helper()
	actual := make([]Event, len(a.events))
	for idx, event := range a.events {
		actual[idx] = Event{event.Action, event.Target.Render().ID}
	}
	a.events = nil

	if len(actual) != len(expected) {
		t.Errorf("expected audit events %v, got %v", expected, actual)
		return
	}
	for idx := range actual {
		if actual[idx] != expected[idx] {
			t.Errorf("audit event %d: expected %v, got %v", idx, expected[idx], actual[idx])
		}
	}
}

// IgnoreEvents clears the recording without checking anything.
func (a *Auditor) IgnoreEvents() {
	a.events = nil
}
