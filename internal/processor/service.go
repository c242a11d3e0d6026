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

// serviceIn is the type-erased view of one incoming service payload.
// The service subtype travels as the node label; the owned children
// travel in whichever lists apply to that subtype.
type serviceIn struct {
	label    string
	base     schemas.ServiceCreate
	quotas   []quotaIn
	flavors  []schemas.FlavorCreateExtended
	images   []schemas.ImageCreateExtended
	networks []schemas.NetworkCreateExtended
}

// serviceInsOf flattens the five typed service lists of a region
// payload into per-label serviceIn lists, ready for per-label diffing.
func serviceInsOf(region schemas.RegionCreateExtended) map[string][]serviceIn {
	result := make(map[string][]serviceIn)
	for _, svc := range region.BlockStorageServices {
		result[models.LabelBlockStorageService] = append(result[models.LabelBlockStorageService], serviceIn{
			label:  models.LabelBlockStorageService,
			base:   svc.ServiceCreate,
			quotas: quotaInsOfBlockStorage(svc.Quotas),
		})
	}
	for _, svc := range region.ComputeServices {
		result[models.LabelComputeService] = append(result[models.LabelComputeService], serviceIn{
			label:   models.LabelComputeService,
			base:    svc.ServiceCreate,
			quotas:  quotaInsOfCompute(svc.Quotas),
			flavors: svc.Flavors,
			images:  svc.Images,
		})
	}
	for _, svc := range region.IdentityServices {
		result[models.LabelIdentityService] = append(result[models.LabelIdentityService], serviceIn{
			label: models.LabelIdentityService,
			base:  svc.ServiceCreate,
		})
	}
	for _, svc := range region.NetworkServices {
		result[models.LabelNetworkService] = append(result[models.LabelNetworkService], serviceIn{
			label:    models.LabelNetworkService,
			base:     svc.ServiceCreate,
			quotas:   quotaInsOfNetwork(svc.Quotas),
			networks: svc.Networks,
		})
	}
	for _, svc := range region.ObjectStorageServices {
		result[models.LabelObjectStorageService] = append(result[models.LabelObjectStorageService], serviceIn{
			label:  models.LabelObjectStorageService,
			base:   svc.ServiceCreate,
			quotas: quotaInsOfObjectStorage(svc.Quotas),
		})
	}
	return result
}

// CreateService creates a service node under a region and recurses
// into its owned children. Identity services are special: their
// metadata endpoint is shared across regions and providers, so create
// is an upsert by endpoint that connects the existing node to the new
// region instead of creating a duplicate.
func (p *Processor) CreateService(ctx context.Context, in serviceIn, region *graph.Node, sc scope) (*graph.Node, error) {
	var node *graph.Node
	if in.label == models.LabelIdentityService {
		existing, err := p.store.GetNode(ctx, in.label, graph.Filter{"endpoint": in.base.Endpoint})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			_, err = p.applyScalars(ctx, existing, models.PropsOf(in.base.Model()), nil, true)
			if err != nil {
				return nil, err
			}
			node = existing
		}
	}
	if node == nil {
		var err error
		node, err = p.store.CreateNode(ctx, in.label, models.PropsOf(in.base.Model()))
		if err != nil {
			return nil, err
		}
	}
	err := p.store.Connect(ctx, models.RelSuppliesService, region.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}

	for _, flavor := range in.flavors {
		_, err = p.CreateFlavor(ctx, flavor, node, sc)
		if err != nil {
			return nil, err
		}
	}
	for _, image := range in.images {
		_, err = p.CreateImage(ctx, image, node, sc)
		if err != nil {
			return nil, err
		}
	}
	for _, network := range in.networks {
		_, err = p.CreateNetwork(ctx, network, node, sc)
		if err != nil {
			return nil, err
		}
	}
	quotaLabel := models.QuotaLabelForService[in.label]
	for _, quota := range in.quotas {
		project, exists := sc.byUUID[quota.projectUUID]
		if !exists {
			// out-of-scope project reference, rejected by schema validation
			continue
		}
		_, err = p.CreateQuota(ctx, quotaLabel, quota, node, project)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UpdateService patches a service node. Under force, the owned
// children are reconciled as well: flavors and images for compute
// services, networks for network services, and quotas for everything
// but identity services. Returns nil if nothing changed anywhere in
// the subtree.
func (p *Processor) UpdateService(ctx context.Context, node *graph.Node, in serviceIn, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.base.Model()), models.PropsOf(models.Service{}), force)
	if err != nil {
		return nil, err
	}
	if force {
		if in.label == models.LabelComputeService {
			changed, err := p.updateFlavors(ctx, node, in.flavors, sc)
			if err != nil {
				return nil, err
			}
			edited = edited || changed
			changed, err = p.updateImages(ctx, node, in.images, sc)
			if err != nil {
				return nil, err
			}
			edited = edited || changed
		}
		if in.label == models.LabelNetworkService {
			changed, err := p.updateNetworks(ctx, node, in.networks, sc)
			if err != nil {
				return nil, err
			}
			edited = edited || changed
		}
		if quotaLabel, hasQuotas := models.QuotaLabelForService[in.label]; hasQuotas {
			changed, err := p.updateQuotas(ctx, node, quotaLabel, in.quotas, sc)
			if err != nil {
				return nil, err
			}
			edited = edited || changed
		}
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

func (p *Processor) updateFlavors(ctx context.Context, service *graph.Node, incoming []schemas.FlavorCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasFlavor, service.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byUUID := nodesByProp(current, "uuid")

	changed := false
	for _, in := range incoming {
		if node, exists := byUUID[in.UUID]; exists {
			delete(byUUID, in.UUID)
			updated, err := p.UpdateFlavor(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateFlavor(ctx, in, service, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byUUID {
		err = p.removeOrDisconnectLeaf(ctx, models.RelHasFlavor, service, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (p *Processor) updateImages(ctx context.Context, service *graph.Node, incoming []schemas.ImageCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasImage, service.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byUUID := nodesByProp(current, "uuid")

	changed := false
	for _, in := range incoming {
		if node, exists := byUUID[in.UUID]; exists {
			delete(byUUID, in.UUID)
			updated, err := p.UpdateImage(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateImage(ctx, in, service, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range byUUID {
		err = p.removeOrDisconnectLeaf(ctx, models.RelHasImage, service, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (p *Processor) updateNetworks(ctx context.Context, service *graph.Node, incoming []schemas.NetworkCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasNetwork, service.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	byUUID := nodesByProp(current, "uuid")

	changed := false
	for _, in := range incoming {
		if node, exists := byUUID[in.UUID]; exists {
			delete(byUUID, in.UUID)
			updated, err := p.UpdateNetwork(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			_, err = p.CreateNetwork(ctx, in, service, sc)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	// networks are never shared across services, so unmatched
	// remainders are always removed outright
	for _, node := range byUUID {
		err = p.RemoveNetwork(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (p *Processor) updateQuotas(ctx context.Context, service *graph.Node, quotaLabel string, incoming []quotaIn, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelHasQuota, service.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	// split the current quotas by scope: one map per per-user flag,
	// each keyed by the UUID of the quota's project
	perUser := make(map[string]*graph.Node)
	total := make(map[string]*graph.Node)
	for _, quota := range current {
		project, err := p.projectOfQuota(ctx, quota)
		if err != nil {
			return false, err
		}
		if isPerUser, _ := quota.Props["per_user"].(bool); isPerUser {
			perUser[projectUUID(project)] = quota
		} else {
			total[projectUUID(project)] = quota
		}
	}

	changed := false
	for _, in := range incoming {
		scopeMap := total
		if in.perUser {
			scopeMap = perUser
		}
		if node, exists := scopeMap[in.projectUUID]; exists {
			delete(scopeMap, in.projectUUID)
			updated, err := p.UpdateQuota(ctx, node, in, sc, true)
			if err != nil {
				return changed, err
			}
			changed = changed || updated != nil
		} else {
			project, exists := sc.byUUID[in.projectUUID]
			if !exists {
				continue
			}
			_, err = p.CreateQuota(ctx, quotaLabel, in, service, project)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, node := range perUser {
		err = p.RemoveQuota(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	for _, node := range total {
		err = p.RemoveQuota(ctx, node)
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// RemoveService deletes a service node and its owned children. Quotas
// and networks go unconditionally; flavors and images only when this
// was their last referencing service (otherwise the shared node
// survives and only this service's relationship vanishes with the node
// deletion).
func (p *Processor) RemoveService(ctx context.Context, node *graph.Node) error {
	quotas, err := p.store.Related(ctx, models.RelHasQuota, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, quota := range quotas {
		err = p.RemoveQuota(ctx, quota)
		if err != nil {
			return err
		}
	}

	switch node.Label {
	case models.LabelComputeService:
		for _, rel := range []string{models.RelHasFlavor, models.RelHasImage} {
			leaves, err := p.store.Related(ctx, rel, node.UID, graph.Outgoing)
			if err != nil {
				return err
			}
			for _, leaf := range leaves {
				ownerCount, err := p.store.CountRelated(ctx, rel, leaf.UID, graph.Incoming)
				if err != nil {
					return err
				}
				if ownerCount == 1 {
					err = p.store.DeleteNode(ctx, leaf.UID)
					if err != nil {
						return err
					}
				}
			}
		}
	case models.LabelNetworkService:
		networks, err := p.store.Related(ctx, models.RelHasNetwork, node.UID, graph.Outgoing)
		if err != nil {
			return err
		}
		for _, network := range networks {
			err = p.RemoveNetwork(ctx, network)
			if err != nil {
				return err
			}
		}
	}

	return p.store.DeleteNode(ctx, node.UID)
}
