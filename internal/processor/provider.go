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

// CreateProvider is the top-level entry point for submitting a new
// provider tree. Projects are created first, then identity providers,
// then regions, because the latter two resolve project UUIDs from the
// first stage. The input must have passed schemas.Validate.
func (p *Processor) CreateProvider(ctx context.Context, in schemas.ProviderCreateExtended) (*graph.Node, error) {
	node, err := p.store.CreateNode(ctx, models.LabelProvider, models.PropsOf(in.Model()))
	if err != nil {
		return nil, err
	}

	projects := make([]*graph.Node, 0, len(in.Projects))
	for _, project := range in.Projects {
		projectNode, err := p.CreateProject(ctx, project, node)
		if err != nil {
			return nil, err
		}
		projects = append(projects, projectNode)
	}
	sc := newScope(projects)

	for _, idp := range in.IdentityProviders {
		_, err = p.CreateIdentityProvider(ctx, idp, node, sc)
		if err != nil {
			return nil, err
		}
	}
	for _, region := range in.Regions {
		_, err = p.CreateRegion(ctx, region, node, sc)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateProvider reconciles an existing provider tree against a
// resubmitted payload. Under force, three diffs run in fixed order:
// projects by UUID, then identity providers by endpoint, then regions
// by name. The project scope for the later diffs is re-derived after
// the project diff so that quotas, SLAs and leaf resources resolve
// against current project nodes. Returns nil if nothing changed
// anywhere in the tree.
func (p *Processor) UpdateProvider(ctx context.Context, node *graph.Node, in schemas.ProviderCreateExtended, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.DefaultProvider()), force)
	if err != nil {
		return nil, err
	}
	if !force {
		if !edited {
			return nil, nil
		}
		return node, nil
	}

	changed, err := p.updateProjects(ctx, node, in.Projects)
	if err != nil {
		return nil, err
	}
	edited = edited || changed

	projects, err := p.store.Related(ctx, models.RelHasProject, node.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	sc := newScope(projects)

	changed, err = p.updateIdentityProviders(ctx, node, in.IdentityProviders, sc)
	if err != nil {
		return nil, err
	}
	edited = edited || changed

	changed, err = p.updateRegions(ctx, node, in.Regions, sc)
	if err != nil {
		return nil, err
	}
	edited = edited || changed

	if !edited {
		return nil, nil
	}
	return node, nil
}

func (p *Processor) updateProjects(ctx context.Context, provider *graph.Node, incoming []schemas.ProjectCreate) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasProject, provider.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byUUID := nodesByProp(current, "uuid")

	changed := false
	for _, in := range incoming {
		if node, exists := byUUID[in.UUID]; exists {
			delete(byUUID, in.UUID)
			updated, err := p.UpdateProject(ctx, node, in, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateProject(ctx, in, provider)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byUUID {
		err = p.RemoveProject(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (p *Processor) updateIdentityProviders(ctx context.Context, provider *graph.Node, incoming []schemas.IdentityProviderCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelAuthorizedBy, provider.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byEndpoint := nodesByProp(current, "endpoint")

	changed := false
	for _, in := range incoming {
		if node, exists := byEndpoint[in.Endpoint]; exists {
			delete(byEndpoint, in.Endpoint)
			// refresh the auth-method annotation on the relationship
			err = p.store.Connect(ctx, models.RelAuthorizedBy, provider.UID, node.UID, models.PropsOf(in.Relationship))
			if err != nil {
				return changed, err
			}
			updated, err := p.UpdateIdentityProvider(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateIdentityProvider(ctx, in, provider, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byEndpoint {
		err = p.removeOrDisconnectIdP(ctx, provider, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// removeOrDisconnectIdP implements the weak-ownership rule for
// identity providers: deleted when this provider was its last
// reference, otherwise only detached from this provider.
func (p *Processor) removeOrDisconnectIdP(ctx context.Context, provider, idp *graph.Node) error {
	referenceCount, err := p.store.CountRelated(ctx, models.RelAuthorizedBy, idp.UID, graph.Incoming)
	if err != nil {
		return err
	}
	if referenceCount == 1 {
		return p.RemoveIdentityProvider(ctx, idp)
	}
	return p.store.Disconnect(ctx, models.RelAuthorizedBy, provider.UID, idp.UID)
}

func (p *Processor) updateRegions(ctx context.Context, provider *graph.Node, incoming []schemas.RegionCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasRegion, provider.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byName := nodesByProp(current, "name")

	changed := false
	for _, in := range incoming {
		if node, exists := byName[in.Name]; exists {
			delete(byName, in.Name)
			updated, err := p.UpdateRegion(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateRegion(ctx, in, provider, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byName {
		err = p.RemoveRegion(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// RemoveProvider deletes a whole provider tree: projects first (which
// cascades their quotas and single-reference SLAs), then regions
// (which cascades services and their owned resources), then identity
// providers that no other provider references.
func (p *Processor) RemoveProvider(ctx context.Context, node *graph.Node) error {
	projects, err := p.store.Related(ctx, models.RelHasProject, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, project := range projects {
		err = p.RemoveProject(ctx, project)
		if err != nil {
			return err
		}
	}

	regions, err := p.store.Related(ctx, models.RelHasRegion, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, region := range regions {
		err = p.RemoveRegion(ctx, region)
		if err != nil {
			return err
		}
	}

	idps, err := p.store.Related(ctx, models.RelAuthorizedBy, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, idp := range idps {
		referenceCount, err := p.store.CountRelated(ctx, models.RelAuthorizedBy, idp.UID, graph.Incoming)
		if err != nil {
			return err
		}
		if referenceCount == 1 {
			err = p.RemoveIdentityProvider(ctx, idp)
			if err != nil {
				return err
			}
		}
	}

	return p.store.DeleteNode(ctx, node.UID)
}
