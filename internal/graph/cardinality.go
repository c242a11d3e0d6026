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

package graph

import (
	"github.com/sapcc/fedreg/internal/fedreg"
)

// Single asserts a to-one relationship: it returns the only node in the
// list, or a CARDINALITY_VIOLATION error. Finding anything other than
// exactly one node indicates a prior reconciliation bug and is never
// recovered locally.
func Single(nodes []*Node, what string) (*Node, error) {
	if len(nodes) != 1 {
		return nil, fedreg.ErrCardinalityViolation.With("expected exactly one %s, found %d", what, len(nodes))
	}
	return nodes[0], nil
}

// ZeroOrOne asserts a to-zero-or-one relationship: it returns the only
// node in the list, nil if the list is empty, or a CARDINALITY_VIOLATION
// error if there are several.
func ZeroOrOne(nodes []*Node, what string) (*Node, error) {
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return nil, fedreg.ErrCardinalityViolation.With("expected at most one %s, found %d", what, len(nodes))
	}
}
