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

// ExportProvider reads a provider tree back out of the graph into the
// same create-extended shape that submissions use. Feeding the result
// into UpdateProvider with force must be a no-op; this is also what
// the API serves as the provider detail view.
func (p *Processor) ExportProvider(ctx context.Context, node *graph.Node) (schemas.ProviderCreateExtended, error) {
	var result schemas.ProviderCreateExtended
	provider, err := models.Decode[models.Provider](node.Props)
	if err != nil {
		return result, err
	}
	result.ProviderCreate = schemas.ProviderCreate(provider)

	projects, err := p.store.Related(ctx, models.RelHasProject, node.UID, graph.Outgoing)
	if err != nil {
		return result, err
	}
	for _, projectNode := range projects {
		project, err := models.Decode[models.Project](projectNode.Props)
		if err != nil {
			return result, err
		}
		result.Projects = append(result.Projects, schemas.ProjectCreate(project))
	}
	sc := newScope(projects)

	result.IdentityProviders, err = p.exportIdentityProviders(ctx, node, sc)
	if err != nil {
		return result, err
	}
	result.Regions, err = p.exportRegions(ctx, node)
	return result, err
}

func (p *Processor) exportIdentityProviders(ctx context.Context, provider *graph.Node, sc scope) ([]schemas.IdentityProviderCreateExtended, error) {
	idps, err := p.store.Related(ctx, models.RelAuthorizedBy, provider.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []schemas.IdentityProviderCreateExtended
	for _, idpNode := range idps {
		idp, err := models.Decode[models.IdentityProvider](idpNode.Props)
		if err != nil {
			return nil, err
		}
		relProps, err := p.store.RelProps(ctx, models.RelAuthorizedBy, provider.UID, idpNode.UID)
		if err != nil {
			return nil, err
		}
		authMethod, err := models.Decode[models.AuthMethod](relProps)
		if err != nil {
			return nil, err
		}
		out := schemas.IdentityProviderCreateExtended{
			IdentityProviderCreate: schemas.IdentityProviderCreate(idp),
			Relationship:           authMethod,
		}

		groups, err := p.store.Related(ctx, models.RelOwnsGroup, idpNode.UID, graph.Outgoing)
		if err != nil {
			return nil, err
		}
		for _, groupNode := range groups {
			group, err := models.Decode[models.UserGroup](groupNode.Props)
			if err != nil {
				return nil, err
			}
			// only the SLA slice belonging to this provider's projects is
			// part of this provider's tree; a shared IdP's groups may bind
			// other providers' projects through other SLAs
			slaNode, err := p.targetProviderSLA(ctx, groupNode, sc)
			if err != nil {
				return nil, err
			}
			if slaNode == nil {
				continue
			}
			project, err := p.boundProjectInScope(ctx, slaNode, sc)
			if err != nil {
				return nil, err
			}
			sla, err := models.Decode[models.SLA](slaNode.Props)
			if err != nil {
				return nil, err
			}
			out.UserGroups = append(out.UserGroups, schemas.UserGroupCreateExtended{
				UserGroupCreate: schemas.UserGroupCreate(group),
				SLA: schemas.SLACreateExtended{
					SLACreate: schemas.SLACreate{
						Description: sla.Description,
						DocUUID:     sla.DocUUID,
						StartDate:   schemas.Date(sla.StartDate),
						EndDate:     schemas.Date(sla.EndDate),
					},
					Project: projectUUID(project),
				},
			})
		}
		result = append(result, out)
	}
	return result, nil
}

func (p *Processor) exportRegions(ctx context.Context, provider *graph.Node) ([]schemas.RegionCreateExtended, error) {
	regions, err := p.store.Related(ctx, models.RelHasRegion, provider.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []schemas.RegionCreateExtended
	for _, regionNode := range regions {
		region, err := models.Decode[models.Region](regionNode.Props)
		if err != nil {
			return nil, err
		}
		out := schemas.RegionCreateExtended{RegionCreate: schemas.RegionCreate(region)}

		linked, err := p.store.Related(ctx, models.RelHasLocation, regionNode.UID, graph.Outgoing)
		if err != nil {
			return nil, err
		}
		locationNode, err := graph.ZeroOrOne(linked, "location of region "+regionNode.UID)
		if err != nil {
			return nil, err
		}
		if locationNode != nil {
			location, err := models.Decode[models.Location](locationNode.Props)
			if err != nil {
				return nil, err
			}
			locationCreate := schemas.LocationCreate(location)
			out.Location = &locationCreate
		}

		err = p.exportServices(ctx, regionNode, &out)
		if err != nil {
			return nil, err
		}
		result = append(result, out)
	}
	return result, nil
}

func (p *Processor) exportServices(ctx context.Context, region *graph.Node, out *schemas.RegionCreateExtended) error {
	services, err := p.store.Related(ctx, models.RelSuppliesService, region.UID, graph.Outgoing)
	if err != nil {
		return err
	}
	for _, svcNode := range services {
		svc, err := models.Decode[models.Service](svcNode.Props)
		if err != nil {
			return err
		}
		base := schemas.ServiceCreate(svc)

		switch svcNode.Label {
		case models.LabelBlockStorageService:
			quotas, err := exportQuotas[schemas.BlockStorageQuotaCreateExtended](p, ctx, svcNode,
				func(quota models.BlockStorageQuota, project string) schemas.BlockStorageQuotaCreateExtended {
					return schemas.BlockStorageQuotaCreateExtended{
						BlockStorageQuotaCreate: schemas.BlockStorageQuotaCreate(quota),
						Project:                 project,
					}
				})
			if err != nil {
				return err
			}
			out.BlockStorageServices = append(out.BlockStorageServices,
				schemas.BlockStorageServiceCreateExtended{ServiceCreate: base, Quotas: quotas})

		case models.LabelComputeService:
			exported := schemas.ComputeServiceCreateExtended{ServiceCreate: base}
			exported.Flavors, err = p.exportFlavors(ctx, svcNode)
			if err != nil {
				return err
			}
			exported.Images, err = p.exportImages(ctx, svcNode)
			if err != nil {
				return err
			}
			exported.Quotas, err = exportQuotas[schemas.ComputeQuotaCreateExtended](p, ctx, svcNode,
				func(quota models.ComputeQuota, project string) schemas.ComputeQuotaCreateExtended {
					return schemas.ComputeQuotaCreateExtended{
						ComputeQuotaCreate: schemas.ComputeQuotaCreate(quota),
						Project:            project,
					}
				})
			if err != nil {
				return err
			}
			out.ComputeServices = append(out.ComputeServices, exported)

		case models.LabelIdentityService:
			out.IdentityServices = append(out.IdentityServices,
				schemas.IdentityServiceCreate{ServiceCreate: base})

		case models.LabelNetworkService:
			exported := schemas.NetworkServiceCreateExtended{ServiceCreate: base}
			exported.Networks, err = p.exportNetworks(ctx, svcNode)
			if err != nil {
				return err
			}
			exported.Quotas, err = exportQuotas[schemas.NetworkQuotaCreateExtended](p, ctx, svcNode,
				func(quota models.NetworkQuota, project string) schemas.NetworkQuotaCreateExtended {
					return schemas.NetworkQuotaCreateExtended{
						NetworkQuotaCreate: schemas.NetworkQuotaCreate(quota),
						Project:            project,
					}
				})
			if err != nil {
				return err
			}
			out.NetworkServices = append(out.NetworkServices, exported)

		case models.LabelObjectStorageService:
			quotas, err := exportQuotas[schemas.ObjectStorageQuotaCreateExtended](p, ctx, svcNode,
				func(quota models.ObjectStorageQuota, project string) schemas.ObjectStorageQuotaCreateExtended {
					return schemas.ObjectStorageQuotaCreateExtended{
						ObjectStorageQuotaCreate: schemas.ObjectStorageQuotaCreate(quota),
						Project:                  project,
					}
				})
			if err != nil {
				return err
			}
			out.ObjectStorageServices = append(out.ObjectStorageServices,
				schemas.ObjectStorageServiceCreateExtended{ServiceCreate: base, Quotas: quotas})
		}
	}
	return nil
}

func (p *Processor) exportFlavors(ctx context.Context, service *graph.Node) ([]schemas.FlavorCreateExtended, error) {
	flavors, err := p.store.Related(ctx, models.RelHasFlavor, service.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []schemas.FlavorCreateExtended
	for _, flavorNode := range flavors {
		flavor, err := models.Decode[models.Flavor](flavorNode.Props)
		if err != nil {
			return nil, err
		}
		projects, err := p.visibleProjectUUIDs(ctx, flavorNode)
		if err != nil {
			return nil, err
		}
		result = append(result, schemas.FlavorCreateExtended{
			FlavorCreate: schemas.FlavorCreate(flavor),
			Projects:     projects,
		})
	}
	return result, nil
}

func (p *Processor) exportImages(ctx context.Context, service *graph.Node) ([]schemas.ImageCreateExtended, error) {
	images, err := p.store.Related(ctx, models.RelHasImage, service.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []schemas.ImageCreateExtended
	for _, imageNode := range images {
		image, err := models.Decode[models.Image](imageNode.Props)
		if err != nil {
			return nil, err
		}
		projects, err := p.visibleProjectUUIDs(ctx, imageNode)
		if err != nil {
			return nil, err
		}
		result = append(result, schemas.ImageCreateExtended{
			ImageCreate: schemas.ImageCreate(image),
			Projects:    projects,
		})
	}
	return result, nil
}

func (p *Processor) exportNetworks(ctx context.Context, service *graph.Node) ([]schemas.NetworkCreateExtended, error) {
	networks, err := p.store.Related(ctx, models.RelHasNetwork, service.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []schemas.NetworkCreateExtended
	for _, networkNode := range networks {
		network, err := models.Decode[models.Network](networkNode.Props)
		if err != nil {
			return nil, err
		}
		linked, err := p.store.Related(ctx, models.RelVisibleTo, networkNode.UID, graph.Outgoing)
		if err != nil {
			return nil, err
		}
		project, err := graph.ZeroOrOne(linked, "project owning network "+networkNode.UID)
		if err != nil {
			return nil, err
		}
		out := schemas.NetworkCreateExtended{NetworkCreate: schemas.NetworkCreate(network)}
		if project != nil {
			out.Project = projectUUID(project)
		}
		result = append(result, out)
	}
	return result, nil
}

func exportQuotas[T any, M any](p *Processor, ctx context.Context, service *graph.Node, build func(M, string) T) ([]T, error) {
	quotas, err := p.store.Related(ctx, models.RelHasQuota, service.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []T
	for _, quotaNode := range quotas {
		quota, err := models.Decode[M](quotaNode.Props)
		if err != nil {
			return nil, err
		}
		project, err := p.projectOfQuota(ctx, quotaNode)
		if err != nil {
			return nil, err
		}
		result = append(result, build(quota, projectUUID(project)))
	}
	return result, nil
}

func (p *Processor) visibleProjectUUIDs(ctx context.Context, node *graph.Node) ([]string, error) {
	projects, err := p.store.Related(ctx, models.RelVisibleTo, node.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, project := range projects {
		result = append(result, projectUUID(project))
	}
	return result, nil
}
