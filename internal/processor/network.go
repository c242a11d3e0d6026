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

	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/models"
	"github.com/sapcc/fedreg/internal/schemas"
)

// CreateNetwork creates a network node and connects it to its network
// service. Networks are never shared across services, so there is no
// reuse lookup. Non-shared networks additionally link their one owning
// project.
func (p *Processor) CreateNetwork(ctx context.Context, in schemas.NetworkCreateExtended, service *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.store.CreateNode(ctx, models.LabelNetwork, models.PropsOf(in.Model()))
	if err != nil {
		return nil, err
	}
	err = p.store.Connect(ctx, models.RelHasNetwork, service.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}
	if project, exists := sc.byUUID[in.Project]; exists {
		err = p.store.Connect(ctx, models.RelVisibleTo, node.UID, project.UID, nil)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateNetwork patches a network node. Under force, the single
// owning-project link is recomputed as well. Returns nil if nothing
// changed.
func (p *Processor) UpdateNetwork(ctx context.Context, node *graph.Node, in schemas.NetworkCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.DefaultNetwork()), force)
	if err != nil {
		return nil, err
	}
	if force {
		relEdited, err := p.syncNetworkProject(ctx, node, in, sc)
		if err != nil {
			return nil, err
		}
		edited = edited || relEdited
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

func (p *Processor) syncNetworkProject(ctx context.Context, node *graph.Node, in schemas.NetworkCreateExtended, sc scope) (bool, error) {
	linked, err := p.store.Related(ctx, models.RelVisibleTo, node.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	current, err := graph.ZeroOrOne(linked, "project owning network "+node.UID)
	if err != nil {
		return false, err
	}
	desired := sc.byUUID[in.Project]

	switch {
	case desired == nil && current == nil:
		return false, nil
	case desired == nil:
		return true, p.store.Disconnect(ctx, models.RelVisibleTo, node.UID, current.UID)
	case current == nil:
		return true, p.store.Connect(ctx, models.RelVisibleTo, node.UID, desired.UID, nil)
	case current.UID != desired.UID:
		return true, p.store.Reconnect(ctx, models.RelVisibleTo, node.UID, current.UID, desired.UID)
	default:
		return false, nil
	}
}

// RemoveNetwork deletes a network node.
func (p *Processor) RemoveNetwork(ctx context.Context, node *graph.Node) error {
	return p.store.DeleteNode(ctx, node.UID)
}
