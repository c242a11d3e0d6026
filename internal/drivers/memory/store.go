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

// Package memory contains a graph.Store implementation backed by plain
// maps. It has the same observable semantics as the postgres driver and
// exists for tests and local experimentation.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
)

func init() {
	graph.RegisterStoreDriver("in-memory-for-testing", func(*sql.DB) (graph.Store, error) {
		return NewStore(), nil
	})
}

type node struct {
	graph.Node
	seq uint64 // insertion order, for deterministic unsorted listings
}

type edgeKey struct {
	rel  string
	from string
	to   string
}

// Store implements graph.Store on in-process maps. It is safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	nextSeq uint64
	nodes   map[string]*node        // key = UID
	edges   map[edgeKey]map[string]any
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*node),
		edges: make(map[edgeKey]map[string]any),
	}
}

// CreateNode implements the graph.Store interface.
func (s *Store) CreateNode(_ context.Context, label string, props map[string]any) (*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	n := &node{
		Node: graph.Node{
			UID:   uuid.NewString(),
			Label: label,
			Props: cloneProps(props),
		},
		seq: s.nextSeq,
	}
	s.nodes[n.UID] = n
	return cloneNode(n), nil
}

// GetNode implements the graph.Store interface.
func (s *Store) GetNode(ctx context.Context, label string, filter graph.Filter) (*graph.Node, error) {
	nodes, err := s.ListNodes(ctx, label, filter, graph.ListOpts{Limit: 1})
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

// GetNodeByUID implements the graph.Store interface.
func (s *Store) GetNodeByUID(_ context.Context, uid string) (*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.nodes[uid]
	if !exists {
		return nil, nil
	}
	return cloneNode(n), nil
}

// ListNodes implements the graph.Store interface.
func (s *Store) ListNodes(_ context.Context, label string, filter graph.Filter, opts graph.ListOpts) ([]*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*node
	for _, n := range s.nodes {
		if n.Label == label && matchesFilter(n.Props, filter) {
			matches = append(matches, n)
		}
	}

	sortKey, descending := opts.Sort, false
	if len(sortKey) > 0 && sortKey[0] == '-' {
		sortKey, descending = sortKey[1:], true
	}
	sort.Slice(matches, func(i, j int) bool {
		if sortKey != "" {
			left, right := matches[i].Props[sortKey], matches[j].Props[sortKey]
			if cmp := compareProps(left, right); cmp != 0 {
				return (cmp < 0) != descending
			}
		}
		return matches[i].seq < matches[j].seq
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(matches) {
			matches = nil
		} else {
			matches = matches[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(matches) {
		matches = matches[:opts.Limit]
	}

	result := make([]*graph.Node, len(matches))
	for idx, n := range matches {
		result[idx] = cloneNode(n)
	}
	return result, nil
}

// UpdateNode implements the graph.Store interface.
func (s *Store) UpdateNode(_ context.Context, updated *graph.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.nodes[updated.UID]
	if !exists {
		return fedreg.ErrNotFound.With("no node with UID %s", updated.UID)
	}
	n.Props = cloneProps(updated.Props)
	return nil
}

// DeleteNode implements the graph.Store interface.
func (s *Store) DeleteNode(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[uid]; !exists {
		return fedreg.ErrAlreadyDeleted.With("no node with UID %s", uid)
	}
	delete(s.nodes, uid)
	for key := range s.edges {
		if key.from == uid || key.to == uid {
			delete(s.edges, key)
		}
	}
	return nil
}

// Connect implements the graph.Store interface.
func (s *Store) Connect(_ context.Context, rel, fromUID, toUID string, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[fromUID]; !exists {
		return fedreg.ErrNotFound.With("no node with UID %s", fromUID)
	}
	if _, exists := s.nodes[toUID]; !exists {
		return fedreg.ErrNotFound.With("no node with UID %s", toUID)
	}
	s.edges[edgeKey{rel, fromUID, toUID}] = cloneProps(props)
	return nil
}

// Disconnect implements the graph.Store interface.
func (s *Store) Disconnect(_ context.Context, rel, fromUID, toUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, edgeKey{rel, fromUID, toUID})
	return nil
}

// Reconnect implements the graph.Store interface.
func (s *Store) Reconnect(_ context.Context, rel, fromUID, oldToUID, newToUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[newToUID]; !exists {
		return fedreg.ErrNotFound.With("no node with UID %s", newToUID)
	}
	oldKey := edgeKey{rel, fromUID, oldToUID}
	props := s.edges[oldKey]
	delete(s.edges, oldKey)
	s.edges[edgeKey{rel, fromUID, newToUID}] = props
	return nil
}

// Related implements the graph.Store interface.
func (s *Store) Related(_ context.Context, rel, uid string, dir graph.Direction) ([]*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*node
	for key := range s.edges {
		if key.rel != rel {
			continue
		}
		var farUID string
		switch {
		case dir == graph.Outgoing && key.from == uid:
			farUID = key.to
		case dir == graph.Incoming && key.to == uid:
			farUID = key.from
		default:
			continue
		}
		if n, exists := s.nodes[farUID]; exists {
			matches = append(matches, n)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].seq < matches[j].seq
	})
	result := make([]*graph.Node, len(matches))
	for idx, n := range matches {
		result[idx] = cloneNode(n)
	}
	return result, nil
}

// CountRelated implements the graph.Store interface.
func (s *Store) CountRelated(ctx context.Context, rel, uid string, dir graph.Direction) (int, error) {
	nodes, err := s.Related(ctx, rel, uid, dir)
	return len(nodes), err
}

// RelProps implements the graph.Store interface.
func (s *Store) RelProps(_ context.Context, rel, fromUID, toUID string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, exists := s.edges[edgeKey{rel, fromUID, toUID}]
	if !exists {
		return nil, nil
	}
	if props == nil {
		return map[string]any{}, nil
	}
	return cloneProps(props), nil
}

func matchesFilter(props map[string]any, filter graph.Filter) bool {
	for key, want := range filter {
		if compareProps(props[key], want) != 0 {
			return false
		}
	}
	return true
}

// compareProps orders two JSON-typed prop values. Values of different
// types never compare equal; numbers compare numerically, everything
// else by string representation.
func compareProps(left, right any) int {
	leftNum, leftIsNum := asFloat(left)
	rightNum, rightIsNum := asFloat(right)
	switch {
	case leftIsNum && rightIsNum:
		switch {
		case leftNum < rightNum:
			return -1
		case leftNum > rightNum:
			return +1
		default:
			return 0
		}
	case leftIsNum:
		return -1
	case rightIsNum:
		return +1
	}

	leftStr, leftOK := asString(left)
	rightStr, rightOK := asString(right)
	switch {
	case leftOK && rightOK:
		switch {
		case leftStr < rightStr:
			return -1
		case leftStr > rightStr:
			return +1
		default:
			return 0
		}
	case leftOK:
		return -1
	case rightOK:
		return +1
	default:
		return 0
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

func cloneNode(n *node) *graph.Node {
	return &graph.Node{
		UID:   n.UID,
		Label: n.Label,
		Props: cloneProps(n.Props),
	}
}

func cloneProps(props map[string]any) map[string]any {
	result := make(map[string]any, len(props))
	for key, value := range props {
		if slice, ok := value.([]any); ok {
			value = append([]any(nil), slice...)
		}
		result[key] = value
	}
	return result
}
