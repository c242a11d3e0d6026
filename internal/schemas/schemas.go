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

// Package schemas contains the "create-extended" input tree: the nested
// description of a whole Provider, as submitted by population scripts.
// The Validate method of ProviderCreateExtended checks all cross-entity
// invariants before any of this reaches the reconciliation engine.
package schemas

import (
	"encoding/json"

	"github.com/sapcc/fedreg/internal/models"
)

// ProviderCreate contains the scalar attributes of a Provider.
type ProviderCreate struct {
	Description   string   `json:"description"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	IsPublic      bool     `json:"is_public"`
	SupportEmails []string `json:"support_emails"`
}

// Model converts this payload into its stored shape.
func (p ProviderCreate) Model() models.Provider {
	return models.Provider(p)
}

// ProviderCreateExtended is the root of the create-extended input tree.
type ProviderCreateExtended struct {
	ProviderCreate
	IdentityProviders []IdentityProviderCreateExtended `json:"identity_providers"`
	Projects          []ProjectCreate                  `json:"projects"`
	Regions           []RegionCreateExtended           `json:"regions"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It presets
// the documented default values before decoding, so that omitted fields
// end up with their defaults rather than Go zero values.
func (p *ProviderCreateExtended) UnmarshalJSON(buf []byte) error {
	type alias ProviderCreateExtended
	data := alias{}
	data.Status = "active"
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*p = ProviderCreateExtended(data)
	return nil
}

// ProjectCreate describes one Project of a Provider.
type ProjectCreate struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	UUID        string `json:"uuid"`
}

// Model converts this payload into its stored shape.
func (p ProjectCreate) Model() models.Project {
	return models.Project(p)
}

// IdentityProviderCreate contains the scalar attributes of an
// IdentityProvider.
type IdentityProviderCreate struct {
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	GroupClaim  string `json:"group_claim"`
}

// Model converts this payload into its stored shape.
func (i IdentityProviderCreate) Model() models.IdentityProvider {
	return models.IdentityProvider(i)
}

// IdentityProviderCreateExtended describes one IdentityProvider of a
// Provider, including how the Provider authenticates through it.
type IdentityProviderCreateExtended struct {
	IdentityProviderCreate
	Relationship models.AuthMethod         `json:"relationship"`
	UserGroups   []UserGroupCreateExtended `json:"user_groups"`
}

// UserGroupCreate contains the scalar attributes of a UserGroup.
type UserGroupCreate struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Model converts this payload into its stored shape.
func (u UserGroupCreate) Model() models.UserGroup {
	return models.UserGroup(u)
}

// UserGroupCreateExtended describes one UserGroup of an
// IdentityProvider, including the SLA that binds it to one of the
// submitting Provider's Projects.
type UserGroupCreateExtended struct {
	UserGroupCreate
	SLA SLACreateExtended `json:"sla"`
}

// SLACreate contains the scalar attributes of an SLA.
type SLACreate struct {
	Description string `json:"description"`
	DocUUID     string `json:"doc_uuid"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
}

// Model converts this payload into its stored shape.
func (s SLACreate) Model() models.SLA {
	return models.SLA{
		Description: s.Description,
		DocUUID:     s.DocUUID,
		StartDate:   string(s.StartDate),
		EndDate:     string(s.EndDate),
	}
}

// SLACreateExtended describes one SLA, naming the UUID of the Project
// that it binds within the submitting Provider.
type SLACreateExtended struct {
	SLACreate
	Project string `json:"project"`
}

// RegionCreate contains the scalar attributes of a Region.
type RegionCreate struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Model converts this payload into its stored shape.
func (r RegionCreate) Model() models.Region {
	return models.Region(r)
}

// RegionCreateExtended describes one Region of a Provider with all its
// services.
type RegionCreateExtended struct {
	RegionCreate
	Location              *LocationCreate                      `json:"location"`
	BlockStorageServices  []BlockStorageServiceCreateExtended  `json:"block_storage_services"`
	ComputeServices       []ComputeServiceCreateExtended       `json:"compute_services"`
	IdentityServices      []IdentityServiceCreate              `json:"identity_services"`
	NetworkServices       []NetworkServiceCreateExtended       `json:"network_services"`
	ObjectStorageServices []ObjectStorageServiceCreateExtended `json:"object_storage_services"`
}

// LocationCreate describes the Location of a Region.
type LocationCreate struct {
	Description string  `json:"description"`
	Site        string  `json:"site"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Model converts this payload into its stored shape.
func (l LocationCreate) Model() models.Location {
	return models.Location(l)
}

// ServiceCreate contains the scalar attributes shared by all service
// subtypes.
type ServiceCreate struct {
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Name        string `json:"name"`
}

// Model converts this payload into its stored shape.
func (s ServiceCreate) Model() models.Service {
	return models.Service(s)
}

// BlockStorageServiceCreateExtended describes one BlockStorageService
// with its quotas.
type BlockStorageServiceCreateExtended struct {
	ServiceCreate
	Quotas []BlockStorageQuotaCreateExtended `json:"quotas"`
}

// ComputeServiceCreateExtended describes one ComputeService with its
// flavors, images and quotas.
type ComputeServiceCreateExtended struct {
	ServiceCreate
	Flavors []FlavorCreateExtended       `json:"flavors"`
	Images  []ImageCreateExtended        `json:"images"`
	Quotas  []ComputeQuotaCreateExtended `json:"quotas"`
}

// IdentityServiceCreate describes one IdentityService. Identity
// services own no sub-resources.
type IdentityServiceCreate struct {
	ServiceCreate
}

// NetworkServiceCreateExtended describes one NetworkService with its
// networks and quotas.
type NetworkServiceCreateExtended struct {
	ServiceCreate
	Networks []NetworkCreateExtended      `json:"networks"`
	Quotas   []NetworkQuotaCreateExtended `json:"quotas"`
}

// ObjectStorageServiceCreateExtended describes one ObjectStorageService
// with its quotas.
type ObjectStorageServiceCreateExtended struct {
	ServiceCreate
	Quotas []ObjectStorageQuotaCreateExtended `json:"quotas"`
}

// FlavorCreate contains the scalar attributes of a Flavor.
type FlavorCreate struct {
	Description  string `json:"description"`
	Name         string `json:"name"`
	UUID         string `json:"uuid"`
	Disk         int    `json:"disk"`
	IsPublic     bool   `json:"is_public"`
	RAM          int    `json:"ram"`
	VCPUs        int    `json:"vcpus"`
	Swap         int    `json:"swap"`
	Ephemeral    int    `json:"ephemeral"`
	Infiniband   bool   `json:"infiniband"`
	GPUs         int    `json:"gpus"`
	GPUModel     string `json:"gpu_model"`
	GPUVendor    string `json:"gpu_vendor"`
	LocalStorage string `json:"local_storage"`
}

// Model converts this payload into its stored shape.
func (f FlavorCreate) Model() models.Flavor {
	return models.Flavor(f)
}

// FlavorCreateExtended describes one Flavor, naming the UUIDs of the
// Projects that may use it when it is private.
type FlavorCreateExtended struct {
	FlavorCreate
	Projects []string `json:"projects"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlavorCreateExtended) UnmarshalJSON(buf []byte) error {
	type alias FlavorCreateExtended
	data := alias{}
	data.IsPublic = true
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*f = FlavorCreateExtended(data)
	return nil
}

// ImageCreate contains the scalar attributes of an Image.
type ImageCreate struct {
	Description  string   `json:"description"`
	Name         string   `json:"name"`
	UUID         string   `json:"uuid"`
	OSType       string   `json:"os_type"`
	OSDistro     string   `json:"os_distro"`
	OSVersion    string   `json:"os_version"`
	Architecture string   `json:"architecture"`
	KernelID     string   `json:"kernel_id"`
	CUDASupport  bool     `json:"cuda_support"`
	GPUDriver    bool     `json:"gpu_driver"`
	IsPublic     bool     `json:"is_public"`
	Tags         []string `json:"tags"`
}

// Model converts this payload into its stored shape.
func (i ImageCreate) Model() models.Image {
	return models.Image(i)
}

// ImageCreateExtended describes one Image, naming the UUIDs of the
// Projects that may use it when it is private.
type ImageCreateExtended struct {
	ImageCreate
	Projects []string `json:"projects"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *ImageCreateExtended) UnmarshalJSON(buf []byte) error {
	type alias ImageCreateExtended
	data := alias{}
	data.IsPublic = true
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*i = ImageCreateExtended(data)
	return nil
}

// NetworkCreate contains the scalar attributes of a Network.
type NetworkCreate struct {
	Description      string   `json:"description"`
	Name             string   `json:"name"`
	UUID             string   `json:"uuid"`
	IsShared         bool     `json:"is_shared"`
	IsRouterExternal bool     `json:"is_router_external"`
	IsDefault        bool     `json:"is_default"`
	MTU              int      `json:"mtu"`
	ProxyHost        string   `json:"proxy_host"`
	ProxyUser        string   `json:"proxy_user"`
	Tags             []string `json:"tags"`
}

// Model converts this payload into its stored shape.
func (n NetworkCreate) Model() models.Network {
	return models.Network(n)
}

// NetworkCreateExtended describes one Network, naming the UUID of its
// owning Project when it is not shared.
type NetworkCreateExtended struct {
	NetworkCreate
	Project string `json:"project"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (n *NetworkCreateExtended) UnmarshalJSON(buf []byte) error {
	type alias NetworkCreateExtended
	data := alias{}
	data.IsShared = true
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*n = NetworkCreateExtended(data)
	return nil
}

// BlockStorageQuotaCreate contains the scalar attributes of a
// BlockStorageQuota.
type BlockStorageQuotaCreate struct {
	Description        string `json:"description"`
	PerUser            bool   `json:"per_user"`
	Gigabytes          int    `json:"gigabytes"`
	PerVolumeGigabytes int    `json:"per_volume_gigabytes"`
	Volumes            int    `json:"volumes"`
}

// Model converts this payload into its stored shape.
func (q BlockStorageQuotaCreate) Model() models.BlockStorageQuota {
	return models.BlockStorageQuota(q)
}

// BlockStorageQuotaCreateExtended describes one BlockStorageQuota,
// naming the UUID of the Project it applies to.
type BlockStorageQuotaCreateExtended struct {
	BlockStorageQuotaCreate
	Project string `json:"project"`
}

// ComputeQuotaCreate contains the scalar attributes of a ComputeQuota.
type ComputeQuotaCreate struct {
	Description string `json:"description"`
	PerUser     bool   `json:"per_user"`
	Cores       int    `json:"cores"`
	Instances   int    `json:"instances"`
	RAM         int    `json:"ram"`
}

// Model converts this payload into its stored shape.
func (q ComputeQuotaCreate) Model() models.ComputeQuota {
	return models.ComputeQuota(q)
}

// ComputeQuotaCreateExtended describes one ComputeQuota, naming the
// UUID of the Project it applies to.
type ComputeQuotaCreateExtended struct {
	ComputeQuotaCreate
	Project string `json:"project"`
}

// NetworkQuotaCreate contains the scalar attributes of a NetworkQuota.
type NetworkQuotaCreate struct {
	Description        string `json:"description"`
	PerUser            bool   `json:"per_user"`
	PublicIPs          int    `json:"public_ips"`
	Networks           int    `json:"networks"`
	Ports              int    `json:"ports"`
	SecurityGroups     int    `json:"security_groups"`
	SecurityGroupRules int    `json:"security_group_rules"`
}

// Model converts this payload into its stored shape.
func (q NetworkQuotaCreate) Model() models.NetworkQuota {
	return models.NetworkQuota(q)
}

// NetworkQuotaCreateExtended describes one NetworkQuota, naming the
// UUID of the Project it applies to.
type NetworkQuotaCreateExtended struct {
	NetworkQuotaCreate
	Project string `json:"project"`
}

// ObjectStorageQuotaCreate contains the scalar attributes of an
// ObjectStorageQuota.
type ObjectStorageQuotaCreate struct {
	Description string `json:"description"`
	PerUser     bool   `json:"per_user"`
	Bytes       int    `json:"bytes"`
	Containers  int    `json:"containers"`
	Objects     int    `json:"objects"`
}

// Model converts this payload into its stored shape.
func (q ObjectStorageQuotaCreate) Model() models.ObjectStorageQuota {
	return models.ObjectStorageQuota(q)
}

// ObjectStorageQuotaCreateExtended describes one ObjectStorageQuota,
// naming the UUID of the Project it applies to.
type ObjectStorageQuotaCreateExtended struct {
	ObjectStorageQuotaCreate
	Project string `json:"project"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (q *ObjectStorageQuotaCreateExtended) UnmarshalJSON(buf []byte) error {
	type alias ObjectStorageQuotaCreateExtended
	data := alias{}
	data.Bytes = -1
	data.Containers = 1000
	data.Objects = -1
	err := json.Unmarshal(buf, &data)
	if err != nil {
		return err
	}
	*q = ObjectStorageQuotaCreateExtended(data)
	return nil
}
