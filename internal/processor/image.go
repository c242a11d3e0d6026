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

// CreateImage connects an image to a compute service. Sharing rules
// are the same as for flavors: one node per (provider, UUID) pair.
func (p *Processor) CreateImage(ctx context.Context, in schemas.ImageCreateExtended, service *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.findLeafInProvider(ctx, models.LabelImage, models.RelHasImage, in.UUID, service)
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = p.store.CreateNode(ctx, models.LabelImage, models.PropsOf(in.Model()))
		if err != nil {
			return nil, err
		}
	}
	err = p.store.Connect(ctx, models.RelHasImage, service.UID, node.UID, nil)
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

// UpdateImage patches an image node with the same force semantics as
// UpdateFlavor. Returns nil if nothing changed.
func (p *Processor) UpdateImage(ctx context.Context, node *graph.Node, in schemas.ImageCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.DefaultImage()), force)
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

// RemoveImage deletes an image node, with the same caveat as
// RemoveFlavor.
func (p *Processor) RemoveImage(ctx context.Context, node *graph.Node) error {
	return p.store.DeleteNode(ctx, node.UID)
}
