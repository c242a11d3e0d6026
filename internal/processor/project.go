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

// CreateProject creates a project node under a provider.
func (p *Processor) CreateProject(ctx context.Context, in schemas.ProjectCreate, provider *graph.Node) (*graph.Node, error) {
	node, err := p.store.CreateNode(ctx, models.LabelProject, models.PropsOf(in.Model()))
	if err != nil {
		return nil, err
	}
	err = p.store.Connect(ctx, models.RelHasProject, provider.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateProject patches a project node's scalar props. Projects own no
// diffable children of their own; their quotas and SLAs are reconciled
// through the service and user-group subtrees. Returns nil if nothing
// changed.
func (p *Processor) UpdateProject(ctx context.Context, node *graph.Node, in schemas.ProjectCreate, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.Project{}), force)
	if err != nil {
		return nil, err
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

// RemoveProject deletes a project node: all quotas applying to it, the
// SLA binding it (only when this was the SLA's last project), then the
// node itself. Linked flavors, images and networks survive; only their
// relationship to this project vanishes with the node deletion.
func (p *Processor) RemoveProject(ctx context.Context, node *graph.Node) error {
	quotas, err := p.store.Related(ctx, models.RelAppliesTo, node.UID, graph.Incoming)
	if err != nil {
		return err
	}
	for _, quota := range quotas {
		err = p.RemoveQuota(ctx, quota)
		if err != nil {
			return err
		}
	}

	sla, err := p.slaOfProject(ctx, node)
	if err != nil {
		return err
	}
	if sla != nil {
		referenceCount, err := p.store.CountRelated(ctx, models.RelBindsProject, sla.UID, graph.Outgoing)
		if err != nil {
			return err
		}
		if referenceCount == 1 {
			err = p.RemoveSLA(ctx, sla)
			if err != nil {
				return err
			}
		}
	}

	return p.store.DeleteNode(ctx, node.UID)
}
