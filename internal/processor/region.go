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

// CreateRegion creates a region node under a provider and recurses
// into its location and services.
func (p *Processor) CreateRegion(ctx context.Context, in schemas.RegionCreateExtended, provider *graph.Node, sc scope) (*graph.Node, error) {
	node, err := p.store.CreateNode(ctx, models.LabelRegion, models.PropsOf(in.Model()))
	if err != nil {
		return nil, err
	}
	err = p.store.Connect(ctx, models.RelHasRegion, provider.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}

	if in.Location != nil {
		location, err := p.store.CreateNode(ctx, models.LabelLocation, models.PropsOf(in.Location.Model()))
		if err != nil {
			return nil, err
		}
		err = p.store.Connect(ctx, models.RelHasLocation, node.UID, location.UID, nil)
		if err != nil {
			return nil, err
		}
	}

	for _, services := range serviceInsOf(in) {
		for _, svc := range services {
			_, err = p.CreateService(ctx, svc, node, sc)
			if err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

// UpdateRegion patches a region node. Under force, the location and
// each service-type list are reconciled as well; services are diffed
// by endpoint within each subtype independently. Returns nil if
// nothing changed anywhere in the subtree.
func (p *Processor) UpdateRegion(ctx context.Context, node *graph.Node, in schemas.RegionCreateExtended, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node,
		models.PropsOf(in.Model()), models.PropsOf(models.Region{}), force)
	if err != nil {
		return nil, err
	}
	if force {
		changed, err := p.updateLocation(ctx, node, in.Location)
		if err != nil {
			return nil, err
		}
		edited = edited || changed

		changed, err = p.updateServices(ctx, node, in, sc)
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

// updateLocation reconciles the zero-or-one location of a region. A
// location with the same site is updated in place; a different site
// replaces the node. The replaced (or dropped) location is deleted only
// when this region was the last one referencing it, since regions of
// different providers reporting the same site share one location node.
func (p *Processor) updateLocation(ctx context.Context, region *graph.Node, in *schemas.LocationCreate) (bool, error) {
	linked, err := p.store.Related(ctx, models.RelHasLocation, region.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	current, err := graph.ZeroOrOne(linked, "location of region "+region.UID)
	if err != nil {
		return false, err
	}

	if in == nil {
		if current == nil {
			return false, nil
		}
		return true, p.removeOrDisconnectLocation(ctx, region, current)
	}

	if current != nil && stringProp(current, "site") == in.Site {
		return p.applyScalars(ctx, current, models.PropsOf(in.Model()), nil, true)
	}

	if current != nil {
		err = p.removeOrDisconnectLocation(ctx, region, current)
		if err != nil {
			return true, err
		}
	}
	location, err := p.store.CreateNode(ctx, models.LabelLocation, models.PropsOf(in.Model()))
	if err != nil {
		return true, err
	}
	return true, p.store.Connect(ctx, models.RelHasLocation, region.UID, location.UID, nil)
}

func (p *Processor) removeOrDisconnectLocation(ctx context.Context, region, location *graph.Node) error {
	referenceCount, err := p.store.CountRelated(ctx, models.RelHasLocation, location.UID, graph.Incoming)
	if err != nil {
		return err
	}
	if referenceCount == 1 {
		return p.store.DeleteNode(ctx, location.UID)
	}
	return p.store.Disconnect(ctx, models.RelHasLocation, region.UID, location.UID)
}

func (p *Processor) updateServices(ctx context.Context, region *graph.Node, in schemas.RegionCreateExtended, sc scope) (bool, error) {
	current, err := p.store.Related(ctx, models.RelSuppliesService, region.UID, graph.Outgoing)
	if err != nil {
		return false, err
	}
	currentByLabel := make(map[string][]*graph.Node)
	for _, svc := range current {
		currentByLabel[svc.Label] = append(currentByLabel[svc.Label], svc)
	}
	incomingByLabel := serviceInsOf(in)

	changed := false
	for _, label := range models.ServiceLabels {
		byEndpoint := nodesByProp(currentByLabel[label], "endpoint")
		for _, svc := range incomingByLabel[label] {
			if node, exists := byEndpoint[svc.base.Endpoint]; exists {
				delete(byEndpoint, svc.base.Endpoint)
				updated, err := p.UpdateService(ctx, node, svc, sc, true)
				if err != nil {
					return changed, err
				}
				changed = changed || updated != nil
			} else {
				_, err = p.CreateService(ctx, svc, region, sc)
				if err != nil {
					return changed, err
				}
				changed = true
			}
		}
		for _, node := range byEndpoint {
			err = p.RemoveService(ctx, node)
			if err != nil {
				return changed, err
			}
			changed = true
		}
	}
	return changed, nil
}

// RemoveRegion deletes a region node: all its services (with their
// cascade rules), then the location if no other region shares it, then
// the region itself.
func (p *Processor) RemoveRegion(ctx context.Context, node *graph.Node) error {
	services, err := p.store.Related(ctx, models.RelSuppliesService, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, svc := range services {
		err = p.RemoveService(ctx, svc)
		if err != nil {
			return err
		}
	}

	linked, err := p.store.Related(ctx, models.RelHasLocation, node.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	location, err := graph.ZeroOrOne(linked, "location of region "+node.UID)
	if err != nil {
		return err
	}
	if location != nil {
		err = p.removeOrDisconnectLocation(ctx, node, location)
		if err != nil {
			return err
		}
	}

	return p.store.DeleteNode(ctx, node.UID)
}
