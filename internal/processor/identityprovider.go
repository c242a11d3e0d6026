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

// CreateIdentityProvider attaches an identity provider to a provider.
// IdP endpoints are globally unique and IdPs are shared across
// providers, so create is an upsert by endpoint; the auth-method
// annotation lives on the relationship to this provider.
func (p *Processor) CreateIdentityProvider(ctx context.Context, in schemas.IdentityProviderCreateExtended, provider *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.store.GetNode(ctx, models.LabelIdentityProvider, graph.Filter{"endpoint": in.Endpoint})
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = p.store.CreateNode(ctx, models.LabelIdentityProvider, models.PropsOf(in.Model()))
		if err != nil {
			return nil, err
		}
	} else {
		_, err = p.applyScalars(ctx, node, models.PropsOf(in.Model()), nil, true)
		if err != nil {
			return nil, err
		}
	}
	err = p.store.Connect(ctx, models.RelAuthorizedBy, provider.UID, node.UID, models.PropsOf(in.Relationship))
	if err != nil {
		return nil, err
	}

	for _, group := range in.UserGroups {
		_, err = p.CreateUserGroup(ctx, group, node, sc)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateIdentityProvider patches an identity provider node. Under
// force, the owned user groups are diffed by name. Returns nil if
// nothing changed.
func (p *Processor) UpdateIdentityProvider(ctx context.Context, node *graph.Node, in schemas.IdentityProviderCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.IdentityProvider{}), force)
	if err != nil {
		return nil, err
	}
	if force {
		changed, err := p.updateUserGroups(ctx, node, in.UserGroups, sc)
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

func (p *Processor) updateUserGroups(ctx context.Context, idp *graph.Node, incoming []schemas.UserGroupCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelOwnsGroup, idp.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byName := nodesByProp(current, "name")

	changed := false
	for _, in := range incoming {
		if node, exists := byName[in.Name]; exists {
			delete(byName, in.Name)
			updated, err := p.UpdateUserGroup(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateUserGroup(ctx, in, idp, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byName {
		err = p.RemoveUserGroup(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// RemoveIdentityProvider deletes an identity provider node and all its
// user groups. The caller is responsible for only invoking this when
// no other provider references the IdP anymore.
func (p *Processor) RemoveIdentityProvider(ctx context.Context, node *graph.Node) error {
	groups, err := p.store.Related(ctx, models.RelOwnsGroup, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, group := range groups {
		err = p.RemoveUserGroup(ctx, group)
		if err != nil {
			return err
		}
	}
	return p.store.DeleteNode(ctx, node.UID)
}
