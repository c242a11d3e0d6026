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

// Package processor contains the reconciliation engine. Given a
// create-extended tree describing a whole Provider, it computes adds,
// updates and removals at every nesting level against the graph store,
// preserving node identity for unchanged children and honoring the
// sharing rules of flavors, images, locations, identity providers and
// SLAs.
//
// There is no transaction spanning a whole Provider submission; each
// node and relationship write commits independently, so a failure
// partway through leaves the graph partially reconciled. Callers must
// serialize concurrent submissions touching the same shared entities.
package processor

import (
	"github.com/sapcc/fedreg/internal/graph"
)

// Processor is a higher-level interface wrapping a graph.Store. It
// abstracts graph accesses into whole-subtree reconciliation steps.
type Processor struct {
	store graph.Store
}

// New creates a new Processor.
func New(store graph.Store) *Processor {
	return &Processor{store}
}

// Store lets the caller access the low-level graph store wrapped by
// this Processor instance, e.g. for read-only catalog queries that do
// not need reconciliation logic.
func (p *Processor) Store() graph.Store {
	return p.store
}
