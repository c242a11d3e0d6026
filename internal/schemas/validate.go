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

package schemas

import (
	"fmt"

	"github.com/sapcc/fedreg/internal/fedreg"
)

// Validate checks all cross-entity invariants of the create-extended
// tree. It must be called before the tree reaches the reconciliation
// engine; the engine assumes a valid tree and does not re-check. All
// errors carry the INVALID_INPUT code and name the violating nested
// path.
func (p ProviderCreateExtended) Validate() error {
	switch p.Type {
	case "openstack", "kubernetes":
	default:
		return invalid("type", "%q is not a valid provider type", p.Type)
	}

	err := noDuplicates("projects", p.Projects, func(in ProjectCreate) string { return in.UUID })
	if err != nil {
		return err
	}
	err = noDuplicates("identity_providers", p.IdentityProviders,
		func(in IdentityProviderCreateExtended) string { return in.Endpoint })
	if err != nil {
		return err
	}
	err = noDuplicates("regions", p.Regions, func(in RegionCreateExtended) string { return in.Name })
	if err != nil {
		return err
	}

	knownProjects := make(map[string]bool, len(p.Projects))
	for _, project := range p.Projects {
		knownProjects[project.UUID] = true
	}

	err = p.validateIdentityProviders(knownProjects)
	if err != nil {
		return err
	}
	for regionIdx, region := range p.Regions {
		err = region.validate(fmt.Sprintf("regions[%d]", regionIdx), knownProjects)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p ProviderCreateExtended) validateIdentityProviders(knownProjects map[string]bool) error {
	// SLA document UUIDs and SLA-bound project UUIDs are unique across
	// the *whole* identity-provider subtree, not just within one group:
	// two IdPs declaring the same doc_uuid, or two SLAs binding the same
	// project, are input errors.
	seenDocUUIDs := make(map[string]string)
	seenSLAProjects := make(map[string]string)

	for idpIdx, idp := range p.IdentityProviders {
		idpPath := fmt.Sprintf("identity_providers[%d]", idpIdx)
		err := noDuplicates(idpPath+".user_groups", idp.UserGroups,
			func(in UserGroupCreateExtended) string { return in.Name })
		if err != nil {
			return err
		}

		for groupIdx, group := range idp.UserGroups {
			slaPath := fmt.Sprintf("%s.user_groups[%d].sla", idpPath, groupIdx)
			sla := group.SLA

			if !sla.StartDate.Before(sla.EndDate) {
				return invalid(slaPath, "start_date %s is not before end_date %s", sla.StartDate, sla.EndDate)
			}
			if otherPath, exists := seenDocUUIDs[sla.DocUUID]; exists {
				return invalid(slaPath, "duplicate SLA document UUID %q (also declared at %s)", sla.DocUUID, otherPath)
			}
			seenDocUUIDs[sla.DocUUID] = slaPath
			if otherPath, exists := seenSLAProjects[sla.Project]; exists {
				return invalid(slaPath, "project %q is already bound by the SLA at %s", sla.Project, otherPath)
			}
			seenSLAProjects[sla.Project] = slaPath
			if !knownProjects[sla.Project] {
				return unknownProject(slaPath, sla.Project)
			}
		}
	}
	return nil
}

func (r RegionCreateExtended) validate(path string, knownProjects map[string]bool) error {
	serviceEndpoint := func(in ServiceCreate) string { return in.Endpoint }
	err := noDuplicates(path+".block_storage_services", r.BlockStorageServices,
		func(in BlockStorageServiceCreateExtended) string { return serviceEndpoint(in.ServiceCreate) })
	if err != nil {
		return err
	}
	err = noDuplicates(path+".compute_services", r.ComputeServices,
		func(in ComputeServiceCreateExtended) string { return serviceEndpoint(in.ServiceCreate) })
	if err != nil {
		return err
	}
	err = noDuplicates(path+".identity_services", r.IdentityServices,
		func(in IdentityServiceCreate) string { return serviceEndpoint(in.ServiceCreate) })
	if err != nil {
		return err
	}
	err = noDuplicates(path+".network_services", r.NetworkServices,
		func(in NetworkServiceCreateExtended) string { return serviceEndpoint(in.ServiceCreate) })
	if err != nil {
		return err
	}
	err = noDuplicates(path+".object_storage_services", r.ObjectStorageServices,
		func(in ObjectStorageServiceCreateExtended) string { return serviceEndpoint(in.ServiceCreate) })
	if err != nil {
		return err
	}

	for svcIdx, svc := range r.BlockStorageServices {
		svcPath := fmt.Sprintf("%s.block_storage_services[%d]", path, svcIdx)
		err = validateQuotas(svcPath, knownProjects, svc.Quotas,
			func(in BlockStorageQuotaCreateExtended) (string, bool) { return in.Project, in.PerUser })
		if err != nil {
			return err
		}
	}
	for svcIdx, svc := range r.ComputeServices {
		svcPath := fmt.Sprintf("%s.compute_services[%d]", path, svcIdx)
		err = svc.validate(svcPath, knownProjects)
		if err != nil {
			return err
		}
	}
	for svcIdx, svc := range r.NetworkServices {
		svcPath := fmt.Sprintf("%s.network_services[%d]", path, svcIdx)
		err = svc.validate(svcPath, knownProjects)
		if err != nil {
			return err
		}
	}
	for svcIdx, svc := range r.ObjectStorageServices {
		svcPath := fmt.Sprintf("%s.object_storage_services[%d]", path, svcIdx)
		err = validateQuotas(svcPath, knownProjects, svc.Quotas,
			func(in ObjectStorageQuotaCreateExtended) (string, bool) { return in.Project, in.PerUser })
		if err != nil {
			return err
		}
	}
	return nil
}

func (s ComputeServiceCreateExtended) validate(path string, knownProjects map[string]bool) error {
	err := noDuplicates(path+".flavors", s.Flavors,
		func(in FlavorCreateExtended) string { return in.UUID })
	if err != nil {
		return err
	}
	err = noDuplicates(path+".images", s.Images,
		func(in ImageCreateExtended) string { return in.UUID })
	if err != nil {
		return err
	}

	for flavorIdx, flavor := range s.Flavors {
		flavorPath := fmt.Sprintf("%s.flavors[%d]", path, flavorIdx)
		err = validateVisibility(flavorPath, flavor.IsPublic, flavor.Projects, knownProjects)
		if err != nil {
			return err
		}
		if flavor.GPUs == 0 && (flavor.GPUModel != "" || flavor.GPUVendor != "") {
			return invalid(flavorPath, "gpu_model and gpu_vendor require gpus > 0")
		}
	}
	for imageIdx, image := range s.Images {
		imagePath := fmt.Sprintf("%s.images[%d]", path, imageIdx)
		err = validateVisibility(imagePath, image.IsPublic, image.Projects, knownProjects)
		if err != nil {
			return err
		}
	}
	return validateQuotas(path, knownProjects, s.Quotas,
		func(in ComputeQuotaCreateExtended) (string, bool) { return in.Project, in.PerUser })
}

func (s NetworkServiceCreateExtended) validate(path string, knownProjects map[string]bool) error {
	err := noDuplicates(path+".networks", s.Networks,
		func(in NetworkCreateExtended) string { return in.UUID })
	if err != nil {
		return err
	}
	for netIdx, network := range s.Networks {
		netPath := fmt.Sprintf("%s.networks[%d]", path, netIdx)
		switch {
		case network.IsShared && network.Project != "":
			return invalid(netPath, "shared networks cannot name a project")
		case !network.IsShared && network.Project == "":
			return invalid(netPath, "non-shared networks must name exactly one project")
		case network.Project != "" && !knownProjects[network.Project]:
			return unknownProject(netPath, network.Project)
		}
	}
	return validateQuotas(path, knownProjects, s.Quotas,
		func(in NetworkQuotaCreateExtended) (string, bool) { return in.Project, in.PerUser })
}

// validateQuotas checks one service's quota list: every named project
// must be declared on the provider, and there is at most one quota per
// (project, per-user-scope) pair.
func validateQuotas[T any](path string, knownProjects map[string]bool, quotas []T, keyOf func(T) (projectUUID string, perUser bool)) error {
	type scopeKey struct {
		projectUUID string
		perUser     bool
	}
	seen := make(map[scopeKey]bool)
	for quotaIdx, quota := range quotas {
		quotaPath := fmt.Sprintf("%s.quotas[%d]", path, quotaIdx)
		projectUUID, perUser := keyOf(quota)
		if !knownProjects[projectUUID] {
			return unknownProject(quotaPath, projectUUID)
		}
		key := scopeKey{projectUUID, perUser}
		if seen[key] {
			return invalid(quotaPath, "multiple quotas with per_user=%t for project %q", perUser, projectUUID)
		}
		seen[key] = true
	}
	return nil
}

// validateVisibility checks the is_public flag of a flavor or image
// against its project reference list.
func validateVisibility(path string, isPublic bool, projectUUIDs []string, knownProjects map[string]bool) error {
	if isPublic {
		if len(projectUUIDs) > 0 {
			return invalid(path, "public resources cannot name projects")
		}
		return nil
	}
	if len(projectUUIDs) == 0 {
		return invalid(path, "private resources must name at least one project")
	}
	seen := make(map[string]bool)
	for _, projectUUID := range projectUUIDs {
		if seen[projectUUID] {
			return invalid(path, "duplicate project reference %q", projectUUID)
		}
		seen[projectUUID] = true
		if !knownProjects[projectUUID] {
			return unknownProject(path, projectUUID)
		}
	}
	return nil
}

func noDuplicates[T any](path string, items []T, keyOf func(T) string) error {
	seen := make(map[string]bool, len(items))
	for idx, item := range items {
		key := keyOf(item)
		if seen[key] {
			return invalid(fmt.Sprintf("%s[%d]", path, idx), "duplicate entry with key %q", key)
		}
		seen[key] = true
	}
	return nil
}

func invalid(path, msg string, args ...any) error {
	return fedreg.ErrInvalidInput.With("at %s: %s", path, fmt.Sprintf(msg, args...))
}

func unknownProject(path, projectUUID string) error {
	return invalid(path, "project %q is not among the provider's projects", projectUUID)
}
