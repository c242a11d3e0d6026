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

// Package models contains the typed views of the nodes that fedreg stores
// in the graph. The graph itself only knows prop maps; these structs give
// names and types to the props of each node label.
package models

// Node labels.
const (
	LabelProvider             = "Provider"
	LabelProject              = "Project"
	LabelRegion               = "Region"
	LabelLocation             = "Location"
	LabelBlockStorageService  = "BlockStorageService"
	LabelComputeService       = "ComputeService"
	LabelIdentityService      = "IdentityService"
	LabelNetworkService       = "NetworkService"
	LabelObjectStorageService = "ObjectStorageService"
	LabelFlavor               = "Flavor"
	LabelImage                = "Image"
	LabelNetwork              = "Network"
	LabelBlockStorageQuota    = "BlockStorageQuota"
	LabelComputeQuota         = "ComputeQuota"
	LabelNetworkQuota         = "NetworkQuota"
	LabelObjectStorageQuota   = "ObjectStorageQuota"
	LabelIdentityProvider     = "IdentityProvider"
	LabelUserGroup            = "UserGroup"
	LabelSLA                  = "SLA"
)

// Relationship types.
const (
	RelHasProject      = "HAS_PROJECT"      // Provider -> Project
	RelHasRegion       = "HAS_REGION"       // Provider -> Region
	RelAuthorizedBy    = "AUTHORIZED_BY"    // Provider -> IdentityProvider (props: AuthMethod)
	RelHasLocation     = "HAS_LOCATION"     // Region -> Location
	RelSuppliesService = "SUPPLIES_SERVICE" // Region -> *Service
	RelHasFlavor       = "HAS_FLAVOR"       // ComputeService -> Flavor
	RelHasImage        = "HAS_IMAGE"        // ComputeService -> Image
	RelHasNetwork      = "HAS_NETWORK"      // NetworkService -> Network
	RelHasQuota        = "HAS_QUOTA"        // *Service -> *Quota
	RelAppliesTo       = "APPLIES_TO"       // *Quota -> Project
	RelVisibleTo       = "VISIBLE_TO"       // Flavor/Image/Network -> Project
	RelOwnsGroup       = "OWNS_GROUP"       // IdentityProvider -> UserGroup
	RelHasSLA          = "HAS_SLA"          // UserGroup -> SLA
	RelBindsProject    = "BINDS_PROJECT"    // SLA -> Project
)

// ServiceLabels lists the labels of all service subtypes, in the order in
// which region reconciliation processes them.
var ServiceLabels = []string{
	LabelBlockStorageService,
	LabelComputeService,
	LabelIdentityService,
	LabelNetworkService,
	LabelObjectStorageService,
}

// QuotaLabels lists the labels of all quota subtypes.
var QuotaLabels = []string{
	LabelBlockStorageQuota,
	LabelComputeQuota,
	LabelNetworkQuota,
	LabelObjectStorageQuota,
}

// AllLabels lists every node label that reconciliation can produce.
var AllLabels = []string{
	LabelProvider,
	LabelProject,
	LabelRegion,
	LabelLocation,
	LabelBlockStorageService,
	LabelComputeService,
	LabelIdentityService,
	LabelNetworkService,
	LabelObjectStorageService,
	LabelFlavor,
	LabelImage,
	LabelNetwork,
	LabelBlockStorageQuota,
	LabelComputeQuota,
	LabelNetworkQuota,
	LabelObjectStorageQuota,
	LabelIdentityProvider,
	LabelUserGroup,
	LabelSLA,
}

// QuotaLabelForService maps a service label to the label of the quota
// subtype it owns. Identity services own no quotas.
var QuotaLabelForService = map[string]string{
	LabelBlockStorageService:  LabelBlockStorageQuota,
	LabelComputeService:       LabelComputeQuota,
	LabelNetworkService:       LabelNetworkQuota,
	LabelObjectStorageService: LabelObjectStorageQuota,
}

// Provider is the typed view of a LabelProvider node.
type Provider struct {
	Description   string   `json:"description"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	IsPublic      bool     `json:"is_public"`
	SupportEmails []string `json:"support_emails"`
}

// DefaultProvider returns a Provider with all defaults applied.
func DefaultProvider() Provider {
	return Provider{Status: "active"}
}

// Project is the typed view of a LabelProject node.
type Project struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	UUID        string `json:"uuid"`
}

// Region is the typed view of a LabelRegion node.
type Region struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Location is the typed view of a LabelLocation node.
type Location struct {
	Description string  `json:"description"`
	Site        string  `json:"site"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Service is the typed view of the props shared by all service subtype
// nodes. The subtype is encoded in the node label.
type Service struct {
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Name        string `json:"name"`
}

// Flavor is the typed view of a LabelFlavor node.
type Flavor struct {
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

// DefaultFlavor returns a Flavor with all defaults applied.
func DefaultFlavor() Flavor {
	return Flavor{IsPublic: true}
}

// Image is the typed view of a LabelImage node.
type Image struct {
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

// DefaultImage returns an Image with all defaults applied.
func DefaultImage() Image {
	return Image{IsPublic: true}
}

// Network is the typed view of a LabelNetwork node.
type Network struct {
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

// DefaultNetwork returns a Network with all defaults applied.
func DefaultNetwork() Network {
	return Network{IsShared: true}
}

// BlockStorageQuota is the typed view of a LabelBlockStorageQuota node.
type BlockStorageQuota struct {
	Description        string `json:"description"`
	PerUser            bool   `json:"per_user"`
	Gigabytes          int    `json:"gigabytes"`
	PerVolumeGigabytes int    `json:"per_volume_gigabytes"`
	Volumes            int    `json:"volumes"`
}

// ComputeQuota is the typed view of a LabelComputeQuota node.
type ComputeQuota struct {
	Description string `json:"description"`
	PerUser     bool   `json:"per_user"`
	Cores       int    `json:"cores"`
	Instances   int    `json:"instances"`
	RAM         int    `json:"ram"`
}

// NetworkQuota is the typed view of a LabelNetworkQuota node.
type NetworkQuota struct {
	Description        string `json:"description"`
	PerUser            bool   `json:"per_user"`
	PublicIPs          int    `json:"public_ips"`
	Networks           int    `json:"networks"`
	Ports              int    `json:"ports"`
	SecurityGroups     int    `json:"security_groups"`
	SecurityGroupRules int    `json:"security_group_rules"`
}

// ObjectStorageQuota is the typed view of a LabelObjectStorageQuota node.
type ObjectStorageQuota struct {
	Description string `json:"description"`
	PerUser     bool   `json:"per_user"`
	Bytes       int    `json:"bytes"`
	Containers  int    `json:"containers"`
	Objects     int    `json:"objects"`
}

// DefaultObjectStorageQuota returns an ObjectStorageQuota with all
// defaults applied.
func DefaultObjectStorageQuota() ObjectStorageQuota {
	return ObjectStorageQuota{Bytes: -1, Containers: 1000, Objects: -1}
}

// IdentityProvider is the typed view of a LabelIdentityProvider node.
type IdentityProvider struct {
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	GroupClaim  string `json:"group_claim"`
}

// AuthMethod annotates the RelAuthorizedBy relationship between a
// Provider and an IdentityProvider.
type AuthMethod struct {
	IdPName  string `json:"idp_name"`
	Protocol string `json:"protocol"`
}

// UserGroup is the typed view of a LabelUserGroup node.
type UserGroup struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// SLA is the typed view of a LabelSLA node. Dates are stored in the
// "2006-01-02" format.
type SLA struct {
	Description string `json:"description"`
	DocUUID     string `json:"doc_uuid"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}
