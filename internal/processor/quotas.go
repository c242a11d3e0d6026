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

// quotaIn is the type-erased view of one incoming quota payload. The
// four quota subtypes share all reconciliation logic; only their scalar
// prop sets differ, and those travel here as prepared prop maps.
type quotaIn struct {
	props       map[string]any
	defaults    map[string]any
	perUser     bool
	projectUUID string
}

func quotaInsOfBlockStorage(quotas []schemas.BlockStorageQuotaCreateExtended) []quotaIn {
	result := make([]quotaIn, len(quotas))
	for idx, quota := range quotas {
		result[idx] = quotaIn{
			props:       models.PropsOf(quota.Model()),
			defaults:    models.PropsOf(models.BlockStorageQuota{}),
			perUser:     quota.PerUser,
			projectUUID: quota.Project,
		}
	}
	return result
}

func quotaInsOfCompute(quotas []schemas.ComputeQuotaCreateExtended) []quotaIn {
	result := make([]quotaIn, len(quotas))
	for idx, quota := range quotas {
		result[idx] = quotaIn{
			props:       models.PropsOf(quota.Model()),
			defaults:    models.PropsOf(models.ComputeQuota{}),
			perUser:     quota.PerUser,
			projectUUID: quota.Project,
		}
	}
	return result
}

func quotaInsOfNetwork(quotas []schemas.NetworkQuotaCreateExtended) []quotaIn {
	result := make([]quotaIn, len(quotas))
	for idx, quota := range quotas {
		result[idx] = quotaIn{
			props:       models.PropsOf(quota.Model()),
			defaults:    models.PropsOf(models.NetworkQuota{}),
			perUser:     quota.PerUser,
			projectUUID: quota.Project,
		}
	}
	return result
}

func quotaInsOfObjectStorage(quotas []schemas.ObjectStorageQuotaCreateExtended) []quotaIn {
	result := make([]quotaIn, len(quotas))
	for idx, quota := range quotas {
		result[idx] = quotaIn{
			props:       models.PropsOf(quota.Model()),
			defaults:    models.PropsOf(models.DefaultObjectStorageQuota()),
			perUser:     quota.PerUser,
			projectUUID: quota.Project,
		}
	}
	return result
}

// CreateQuota creates a quota node of the given subtype label and
// connects it to exactly one service and exactly one project. The
// caller guarantees at most one quota per (project, per-user-scope)
// pair before calling; there is no collision check here.
func (p *Processor) CreateQuota(ctx context.Context, label string, in quotaIn, service, project *graph.Node) (*graph.Node, error) {
	node, err := p.store.CreateNode(ctx, label, in.props)
	if err != nil {
		return nil, err
	}
	err = p.store.Connect(ctx, models.RelHasQuota, service.UID, node.UID, nil)
	if err != nil {
		return nil, err
	}
	err = p.store.Connect(ctx, models.RelAppliesTo, node.UID, project.UID, nil)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateQuota patches a quota node. Under force, a changed target
// project is swapped atomically via reconnect rather than
// disconnect-plus-connect. Returns nil if nothing changed.
func (p *Processor) UpdateQuota(ctx context.Context, node *graph.Node, in quotaIn, sc scope, force bool) (*graph.Node, error) {
	edited, err := p.applyScalars(ctx, node, in.props, in.defaults, force)
	if err != nil {
		return nil, err
	}
	if force {
		current, err := p.projectOfQuota(ctx, node)
		if err != nil {
			return nil, err
		}
		if desired, exists := sc.byUUID[in.projectUUID]; exists && desired.UID != current.UID {
			err = p.store.Reconnect(ctx, models.RelAppliesTo, node.UID, current.UID, desired.UID)
			if err != nil {
				return nil, err
			}
			edited = true
		}
	}
	if !edited {
		return nil, nil
	}
	return node, nil
}

// RemoveQuota deletes a quota node unconditionally; quotas are never
// shared.
func (p *Processor) RemoveQuota(ctx context.Context, node *graph.Node) error {
	return p.store.DeleteNode(ctx, node.UID)
}

func (p *Processor) projectOfQuota(ctx context.Context, quota *graph.Node) (*graph.Node, error) {
	projects, err := p.store.Related(ctx, models.RelAppliesTo, quota.UID, graph.Outgoing)
	if err != nil {
		return nil, err
	}
	return graph.Single(projects, "project of quota "+quota.UID)
}
