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

// CreateSLA binds an SLA to a project under a user group. An SLA with
// the same document UUID under the same group is reused, not recreated.
// If the project is currently bound to a different SLA, only the old
// link is removed here; deleting an orphaned SLA is the caller's
// responsibility.
func (p *Processor) CreateSLA(ctx context.Context, in schemas.SLACreateExtended, project, userGroup *graph.Node) (*graph.Node, error) {
	node, err := p.slaOfGroupByDocUUID(ctx, userGroup, in.DocUUID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = p.store.CreateNode(ctx, models.LabelSLA, models.PropsOf(in.Model()))
		if err != nil {
			return nil, err
		}
		err = p.store.Connect(ctx, models.RelHasSLA, userGroup.UID, node.UID, nil)
		if err != nil {
			return nil, err
		}
	}

	old, err := p.slaOfProject(ctx, project)
	if err != nil {
		return nil, err
	}
	if old != nil && old.UID != node.UID {
		err = p.store.Disconnect(ctx, models.RelBindsProject, old.UID, project.UID)
		if err != nil {
			return nil, err
		}
	}
	err = p.store.Connect(ctx, models.RelBindsProject, node.UID, project.UID, nil)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateSLA patches an SLA node. Under force, the one project that
// this SLA binds *within the given provider scope* is recomputed; the
// SLA's bindings to other providers' projects stay untouched. Returns
// nil if nothing changed.
func (p *Processor) UpdateSLA(ctx context.Context, node *graph.Node, in schemas.SLACreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.SLA{}), force)
	if err != nil {
		return nil, err
	}
	if force {
		current, err := p.boundProjectInScope(ctx, node, sc)
		if err != nil {
			return nil, err
		}
		if desired, exists := sc.byUUID[in.Project]; exists {
			switch {
			case current == nil:
				err = p.store.Connect(ctx, models.RelBindsProject, node.UID, desired.UID, nil)
				if err != nil {
					return nil, err
				}
				edited = true
			case current.UID != desired.UID:
				err = p.store.Reconnect(ctx, models.RelBindsProject, node.UID, current.UID, desired.UID)
				if err != nil {
					return nil, err
				}
				edited = true
			}
		}
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

// RemoveSLA deletes an SLA node unconditionally. Callers only invoke
// this once no project outside the current removal context references
// the SLA anymore.
func (p *Processor) RemoveSLA(ctx context.Context, node *graph.Node) error {
	return p.store.DeleteNode(ctx, node.UID)
}

func (p *Processor) slaOfGroupByDocUUID(ctx context.Context, userGroup *graph.Node, docUUID string) (*graph.Node, error) {
	slas, err := p.store.Related(ctx, models.RelHasSLA, userGroup.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	for _, sla := range slas {
		if stringProp(sla, "doc_uuid") == docUUID {
			return sla, nil
		}
	}
	return nil, nil
}

func (p *Processor) slaOfProject(ctx context.Context, project *graph.Node) (*graph.Node, error) {
	slas, err := p.store.Related(ctx, models.RelBindsProject, project.UID, graph.Incoming)
	if err != nil {
		return nil, err
	}
	return graph.ZeroOrOne(slas, "SLA bound to project "+project.UID)
}

// boundProjectInScope returns the project bound by this SLA that lies
// within the given provider scope. One provider contributes at most
// one project per SLA, so finding several is a consistency bug.
func (p *Processor) boundProjectInScope(ctx context.Context, sla *graph.Node, sc scope) (*graph.Node, error) {
	bound, err := p.store.Related(ctx, models.RelBindsProject, sla.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var inScope []*graph.Node
	for _, project := range bound {
		if _, exists := sc.byUUID[projectUUID(project)]; exists {
			inScope = append(inScope, project)
		}
	}
	return graph.ZeroOrOne(inScope, "in-scope project bound to SLA "+sla.UID)
}
