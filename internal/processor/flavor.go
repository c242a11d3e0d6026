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

// CreateFlavor connects a flavor to a compute service, creating the
// flavor node unless the owning provider already has one with this
// UUID (in which case the existing node is shared).
func (p *Processor) CreateFlavor(ctx context.Context, in schemas.FlavorCreateExtended, service *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.findLeafInProvider(ctx, models.LabelFlavor, models.RelHasFlavor, in.UUID, service)
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = p.store.CreateNode(ctx, models.LabelFlavor, models.PropsOf(in.Model()))
		if err != nil {
			return nil, err
		}
	}
	err = p.store.Connect(ctx, models.RelHasFlavor, service.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}
	for _, project := range sc.filtered(in.Projects) {
		err = p.store.Connect(ctx, models.RelVisibleTo, node.UID, project.UID, nil)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateFlavor patches a flavor node. When force is false, only scalar
// props differing from their defaults are applied, and relationships
// stay untouched. When force is true, all scalar props are applied and
// the linked-project set is recomputed. Returns nil if nothing changed.
func (p *Processor) UpdateFlavor(ctx context.Context, node *graph.Node, in schemas.FlavorCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.DefaultFlavor()), force)
	if err != nil {
		return nil, err
	}
	if force {
		relEdited, err := p.syncVisibleProjects(ctx, node, sc.filtered(in.Projects))
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

// RemoveFlavor deletes a flavor node. The caller must have checked
// that no other service still references it, or accept orphaning those
// references. The service diff uses removeOrDisconnectLeaf instead.
func (p *Processor) RemoveFlavor(ctx context.Context, node *graph.Node) error {
	return p.store.DeleteNode(ctx, node.UID)
}
