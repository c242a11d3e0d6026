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

package api

import (
	"net/http"

	"github.com/sapcc/go-api-declarations/cadf"
	"github.com/sapcc/go-bits/audittools"

	"github.com/sapcc/fedreg/internal/graph"
)

func (a *API) recordProviderEvent(r *http.Request, action cadf.Action, node *graph.Node) {
	a.auditor.Record(audittools.Event{
		Time:       a.timeNow(),
		Request:    r,
		ReasonCode: http.StatusOK,
		Action:     action,
		Target: providerEventTarget{
			UID:  node.UID,
			Name: stringProp(node, "name"),
			Type: stringProp(node, "type"),
		},
	})
}

// providerEventTarget renders a provider node as the target of an
// audit event.
type providerEventTarget struct {
	UID  string
	Name string
	Type string
}

// Render implements the audittools.TargetRenderer interface.
func (t providerEventTarget) Render() cadf.Resource {
	return cadf.Resource{
		TypeURI: "fedreg/provider/" + t.Type,
		ID:      t.UID,
		Name:    t.Name,
	}
}
