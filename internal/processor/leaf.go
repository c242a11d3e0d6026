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
)

// findLeafInProvider looks for an existing flavor or image node with
// this UUID within the provider owning `service`. Leaf UUIDs are
// provider-scoped: the same UUID under a different provider is a
// different node, but within one provider the node is shared across
// services.
func (p *Processor) findLeafInProvider(ctx context.Context, label, rel, uuid string, service *graph.Node) (*graph.Node, error) {
	targetProvider, err := p.providerOf(ctx, service)
	if err != nil {
		return nil, err
	}
	candidates, err := p.store.ListNodes(ctx, label, graph.Filter{"uuid": uuid}, graph.ListOpts{})
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		owningServices, err := p.store.Related(ctx, rel, candidate.UID, graph.Incoming)
		if err != nil {
			return nil, err
		}
		for _, owner := range owningServices {
			ownerProvider, err := p.providerOf(ctx, owner)
			if err != nil {
				return nil, err
			}
			if ownerProvider.UID == targetProvider.UID {
				return candidate, nil
			}
		}
	}
	return nil, nil
}

// syncVisibleProjects reconciles the RelVisibleTo project set of a
// flavor or image: connect new members, keep existing ones, disconnect
// removed ones. Reports whether any relationship changed.
func (p *Processor) syncVisibleProjects(ctx context.Context, node *graph.Node, desired []*graph.Node) (bool, error) {
	current, err := p.store.Related(ctx, models.RelVisibleTo, node.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	currentByUID := make(map[string]*graph.Node, len(current))
	for _, project := range current {
		currentByUID[project.UID] = project
	}

	changed := false
	for _, project := range desired {
		if _, exists := currentByUID[project.UID]; exists {
			delete(currentByUID, project.UID)
			continue
		}
		err = p.store.Connect(ctx, models.RelVisibleTo, node.UID, project.UID, nil)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	for _, project := range currentByUID {
		err = p.store.Disconnect(ctx, models.RelVisibleTo, node.UID, project.UID)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// removeOrDisconnectLeaf implements the cascade rule for shared leaves:
// a flavor or image that is only linked to this one service is deleted
// outright; one that other services still reference is merely
// disconnected from this service.
func (p *Processor) removeOrDisconnectLeaf(ctx context.Context, rel string, service, leaf *graph.Node) error {
	ownerCount, err := p.store.CountRelated(ctx, rel, leaf.UID, graph.Incoming)
	if err != nil {
		return err
	}
	if ownerCount == 1 {
		return p.store.DeleteNode(ctx, leaf.UID)
	}
	return p.store.Disconnect(ctx, rel, service.UID, leaf.UID)
}
