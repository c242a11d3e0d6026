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

package fedreg

import (
	"encoding/json"

	"github.com/sapcc/go-api-declarations/cadf"
	"github.com/sapcc/go-bits/audittools"
	"github.com/sapcc/go-bits/logg"
)

// Auditor is a component that forwards audit events to the appropriate logs.
// It is used by the API modules.
type Auditor interface {
	// Record forwards the given audit event to the audit log.
	Record(event audittools.Event)
}

// LogAuditor is an Auditor that writes the rendered CADF resources to the
// standard log. It is the only auditor shipped with fedreg; deployments
// that need a real audit trail plug their own Auditor into the API.
type LogAuditor struct{}

// Record implements the Auditor interface.
func (LogAuditor) Record(event audittools.Event) {
	var target cadf.Resource
	if event.Target != nil {
		target = event.Target.Render()
	}
	msg, err := json.Marshal(struct {
		Action cadf.Action   `json:"action"`
		Reason int           `json:"reason"`
		Target cadf.Resource `json:"target"`
	}{event.Action, event.ReasonCode, target})
	if err != nil {
		logg.Error("cannot marshal audit event: %s", err.Error())
		return
	}
	logg.Other("AUDIT", "%s", string(msg))
}

// NullAuditor is an Auditor that discards all events. Tests use it when
// they do not care about the audit trail.
type NullAuditor struct{}

// Record implements the Auditor interface.
func (NullAuditor) Record(event audittools.Event) {}
