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

// CreateUserGroup attaches a user group to an identity provider. Since
// identity providers are shared across providers, a group with this
// name may already exist under the IdP; in that case it is reused and
// refreshed instead of duplicated. The group's SLA is then bound to
// the in-scope project it names, displacing (and possibly deleting)
// whatever SLA that project had before.
func (p *Processor) CreateUserGroup(ctx context.Context, in schemas.UserGroupCreateExtended, idp *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.groupOfIdPByName(ctx, idp, in.Name)
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = p.store.CreateNode(ctx, models.LabelUserGroup, models.PropsOf(in.Model()))
		if err != nil {
			return nil, err
		}
		err = p.store.Connect(ctx, models.RelOwnsGroup, idp.UID, node.UID, nil)
		if err != nil {
			return nil, err
		}
	} else {
		_, err = p.applyScalars(ctx, node, models.PropsOf(in.Model()), nil, true)
		if err != nil {
			return nil, err
		}
	}

	project, exists := sc.byUUID[in.SLA.Project]
	if !exists {
		return node, nil
	}
	err = p.displaceSLAOfProject(ctx, project)
	if err != nil {
		return nil, err
	}
	_, err = p.CreateSLA(ctx, in.SLA, project, node)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// displaceSLAOfProject detaches the project's current SLA, if any:
// deleted outright when this project was its only reference, merely
// disconnected when it still serves other projects.
func (p *Processor) displaceSLAOfProject(ctx context.Context, project *graph.Node) error {
	old, err := p.slaOfProject(ctx, project)
	if err != nil || old == nil {
		return err
	}
	referenceCount, err := p.store.CountRelated(ctx, models.RelBindsProject, old.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	if referenceCount == 1 {
		return p.RemoveSLA(ctx, old)
	}
	return p.store.Disconnect(ctx, models.RelBindsProject, old.UID, project.UID)
}

// UpdateUserGroup patches a user group. Under force, the incoming SLA
// is diffed against the group's existing SLA for *this provider's*
// slice of projects: a changed document UUID replaces the SLA (deleting
// the old one only when it bound no other project), a matching one is
// force-updated in place. Returns nil if nothing changed.
func (p *Processor) UpdateUserGroup(ctx context.Context, node *graph.Node, in schemas.UserGroupCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.UserGroup{}), force)
	if err != nil {
		return nil, err
	}
	if force {
		changed, err := p.updateGroupSLA(ctx, node, in.SLA, sc)
		if err != nil {
			return nil, err
		}
		edited = edited || changed
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

func (p *Processor) updateGroupSLA(ctx context.Context, group *graph.Node, in schemas.SLACreateExtended, sc scope) (bool, error) {
	current, err := p.targetProviderSLA(ctx, group, sc)
	if err != nil {
		return false, err
	}

	if current == nil {
		project, exists := sc.byUUID[in.Project]
		if !exists {
			return false, nil
		}
		err = p.displaceSLAOfProject(ctx, project)
		if err != nil {
			return true, err
		}
		_, err = p.CreateSLA(ctx, in, project, group)
		return true, err
	}

	if stringProp(current, "doc_uuid") != in.DocUUID {
		referenceCount, err := p.store.CountRelated(ctx, models.RelBindsProject, current.UID, graph.Outgoing)
		if err != nil {
			return false, err
		}
		if referenceCount == 1 {
			err = p.RemoveSLA(ctx, current)
			if err != nil {
				return true, err
			}
		}
		project, exists := sc.byUUID[in.Project]
		if !exists {
			return true, nil
		}
		_, err = p.CreateSLA(ctx, in, project, group)
		return true, err
	}

	updated, err := p.UpdateSLA(ctx, current, in, sc, true)
	return updated != nil, err
}

// targetProviderSLA finds the SLA of this group whose bound projects
// intersect the provider scope; there is at most one.
func (p *Processor) targetProviderSLA(ctx context.Context, group *graph.Node, sc scope) (*graph.Node, error) {
	slas, err := p.store.Related(ctx, models.RelHasSLA, group.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	for _, sla := range slas {
		inScope, err := p.boundProjectInScope(ctx, sla, sc)
		if err != nil {
			return nil, err
		}
		if inScope != nil {
			return sla, nil
		}
	}
	return nil, nil
}

// RemoveUserGroup deletes a user group and all SLAs it owns.
func (p *Processor) RemoveUserGroup(ctx context.Context, node *graph.Node) error {
	slas, err := p.store.Related(ctx, models.RelHasSLA, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, sla := range slas {
		err = p.RemoveSLA(ctx, sla)
		if err != nil {
			return err
		}
	}
	return p.store.DeleteNode(ctx, node.UID)
}

func (p *Processor) groupOfIdPByName(ctx context.Context, idp *graph.Node, name string) (*graph.Node, error) {
	groups, err := p.store.Related(ctx, models.RelOwnsGroup, idp.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if stringProp(group, "name") == name {
			return group, nil
		}
	}
	return nil, nil
}
