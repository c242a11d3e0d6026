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

package processor

import (
	"context"
	"reflect"

	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/models"
)

// scope is the read-only reconciliation context threaded through every
// step of a Provider submission: the Provider's resolved Project nodes.
// It is re-derived at the top of each diff pass and never mutated below.
type scope struct {
	projects []*graph.Node
	byUUID   map[string]*graph.Node
}

func newScope(projects []*graph.Node) scope {
	byUUID := make(map[string]*graph.Node, len(projects))
	for _, project := range projects {
		byUUID[projectUUID(project)] = project
	}
	return scope{projects, byUUID}
}

// filtered returns the subset of the scope's projects with the given
// UUIDs, skipping unknown UUIDs. (Unknown UUIDs mean the payload
// referenced an out-of-scope project, which schema validation rejects
// before reconciliation starts.)
func (s scope) filtered(uuids []string) []*graph.Node {
	var result []*graph.Node
	for _, uuid := range uuids {
		if project, exists := s.byUUID[uuid]; exists {
			result = append(result, project)
		}
	}
	return result
}

func projectUUID(project *graph.Node) string {
	uuid, _ := project.Props["uuid"].(string)
	return uuid
}

func stringProp(node *graph.Node, key string) string {
	value, _ := node.Props[key].(string)
	return value
}

// applyScalars writes the desired scalar props onto the node and
// persists it. When force is false, only props differing from their
// documented default are considered (unsupplied fields carry defaults,
// so this approximates "only explicitly supplied fields"). The return
// value reports whether anything was written.
func (p *Processor) applyScalars(ctx context.Context, node *graph.Node, desired, defaults map[string]any, force bool) (bool, error) {
	changed := false
	for key, value := range desired {
		if !force && propsEqual(value, defaults[key]) {
			continue
		}
		if !propsEqual(node.Props[key], value) {
			node.Props[key] = value
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, p.store.UpdateNode(ctx, node)
}

// propsEqual compares two JSON-normalized prop values. Both sides
// always come out of models.PropsOf or a graph driver, so only JSON
// types (string, bool, float64, []any, nil) appear here.
func propsEqual(left, right any) bool {
	return reflect.DeepEqual(left, right)
}

// providerOf walks from a service node up to its Provider
// (service <- region <- provider).
func (p *Processor) providerOf(ctx context.Context, service *graph.Node) (*graph.Node, error) {
	regions, err := p.store.Related(ctx, models.RelSuppliesService, service.UID, graph.Incoming)
	if err != nil {
		return nil, err
	}
	region, err := graph.Single(regions, "region supplying service "+service.UID)
	if err != nil {
		return nil, err
	}
	providers, err := p.store.Related(ctx, models.RelHasRegion, region.UID, graph.Incoming)
	if err != nil {
		return nil, err
	}
	return graph.Single(providers, "provider owning region "+region.UID)
}

// nodesByProp indexes a node list by one of its string props.
func nodesByProp(nodes []*graph.Node, key string) map[string]*graph.Node {
	result := make(map[string]*graph.Node, len(nodes))
	for _, node := range nodes {
		result[stringProp(node, key)] = node
	}
	return result
}
