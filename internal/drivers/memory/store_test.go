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

package memory

import (
	"context"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
)

func TestNodeLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateNode(ctx, "Thing", map[string]any{"name": "first", "size": 10})
	mustSucceed(t, err)
	if created.UID == "" {
		t.Fatal("expected a generated UID")
	}

	found, err := s.GetNode(ctx, "Thing", graph.Filter{"name": "first"})
	mustSucceed(t, err)
	assert.DeepEqual(t, "UID", found.UID, created.UID)

	byUID, err := s.GetNodeByUID(ctx, created.UID)
	mustSucceed(t, err)
	assert.DeepEqual(t, "UID", byUID.UID, created.UID)

	missing, err := s.GetNode(ctx, "Thing", graph.Filter{"name": "no-such"})
	mustSucceed(t, err)
	if missing != nil {
		t.Errorf("expected no match, got %#v", missing)
	}

	found.Props["size"] = 20
	mustSucceed(t, s.UpdateNode(ctx, found))
	reread, err := s.GetNodeByUID(ctx, created.UID)
	mustSucceed(t, err)
	assert.DeepEqual(t, "size", reread.Props["size"], any(20))

	mustSucceed(t, s.DeleteNode(ctx, created.UID))
	err = s.DeleteNode(ctx, created.UID)
	if !fedreg.IsErrorCode(err, fedreg.ErrAlreadyDeleted) {
		t.Errorf("expected ALREADY_DELETED on double delete, got %#v", err)
	}
}

func TestListNodesSortAndWindow(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		_, err := s.CreateNode(ctx, "Thing", map[string]any{"name": name})
		mustSucceed(t, err)
	}
	_, err := s.CreateNode(ctx, "OtherThing", map[string]any{"name": "aardvark"})
	mustSucceed(t, err)

	names := func(opts graph.ListOpts) []string {
		t.Helper()
		nodes, err := s.ListNodes(ctx, "Thing", nil, opts)
		mustSucceed(t, err)
		result := make([]string, len(nodes))
		for idx, node := range nodes {
			result[idx] = node.Props["name"].(string)
		}
		return result
	}

	// without a sort key, insertion order wins
	assert.DeepEqual(t, "names", names(graph.ListOpts{}), []string{"charlie", "alpha", "bravo"})
	assert.DeepEqual(t, "names", names(graph.ListOpts{Sort: "name"}), []string{"alpha", "bravo", "charlie"})
	assert.DeepEqual(t, "names", names(graph.ListOpts{Sort: "-name"}), []string{"charlie", "bravo", "alpha"})
	assert.DeepEqual(t, "names", names(graph.ListOpts{Sort: "name", Skip: 1, Limit: 1}), []string{"bravo"})
	assert.DeepEqual(t, "names", names(graph.ListOpts{Skip: 5}), []string{})
}

func TestEdges(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	parent, err := s.CreateNode(ctx, "Parent", nil)
	mustSucceed(t, err)
	childA, err := s.CreateNode(ctx, "Child", map[string]any{"name": "a"})
	mustSucceed(t, err)
	childB, err := s.CreateNode(ctx, "Child", map[string]any{"name": "b"})
	mustSucceed(t, err)

	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, childA.UID, nil))
	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, childB.UID, map[string]any{"role": "spare"}))

	// connecting twice is idempotent and replaces the annotation
	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, childB.UID, map[string]any{"role": "main"}))
	props, err := s.RelProps(ctx, "HAS_CHILD", parent.UID, childB.UID)
	mustSucceed(t, err)
	assert.DeepEqual(t, "role", props["role"], any("main"))

	related, err := s.Related(ctx, "HAS_CHILD", parent.UID, graph.Outgoing)
	mustSucceed(t, err)
	if len(related) != 2 {
		t.Fatalf("expected 2 related nodes, got %d", len(related))
	}
	parents, err := s.Related(ctx, "HAS_CHILD", childA.UID, graph.Incoming)
	mustSucceed(t, err)
	if len(parents) != 1 || parents[0].UID != parent.UID {
		t.Fatalf("expected only the parent on the incoming side, got %#v", parents)
	}

	count, err := s.CountRelated(ctx, "HAS_CHILD", parent.UID, graph.Outgoing)
	mustSucceed(t, err)
	assert.DeepEqual(t, "count", count, 2)

	// disconnecting an absent edge is not an error
	mustSucceed(t, s.Disconnect(ctx, "HAS_CHILD", childA.UID, childB.UID))
	mustSucceed(t, s.Disconnect(ctx, "HAS_CHILD", parent.UID, childA.UID))
	count, err = s.CountRelated(ctx, "HAS_CHILD", parent.UID, graph.Outgoing)
	mustSucceed(t, err)
	assert.DeepEqual(t, "count", count, 1)

	// deleting a node cascades to its edges
	mustSucceed(t, s.DeleteNode(ctx, childB.UID))
	count, err = s.CountRelated(ctx, "HAS_CHILD", parent.UID, graph.Outgoing)
	mustSucceed(t, err)
	assert.DeepEqual(t, "count", count, 0)
}

func TestReconnectKeepsAnnotation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	parent, err := s.CreateNode(ctx, "Parent", nil)
	mustSucceed(t, err)
	oldChild, err := s.CreateNode(ctx, "Child", nil)
	mustSucceed(t, err)
	newChild, err := s.CreateNode(ctx, "Child", nil)
	mustSucceed(t, err)

	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, oldChild.UID, map[string]any{"role": "main"}))
	mustSucceed(t, s.Reconnect(ctx, "HAS_CHILD", parent.UID, oldChild.UID, newChild.UID))

	oldProps, err := s.RelProps(ctx, "HAS_CHILD", parent.UID, oldChild.UID)
	mustSucceed(t, err)
	if oldProps != nil {
		t.Errorf("expected the old edge to be gone, got %#v", oldProps)
	}
	newProps, err := s.RelProps(ctx, "HAS_CHILD", parent.UID, newChild.UID)
	mustSucceed(t, err)
	assert.DeepEqual(t, "role", newProps["role"], any("main"))
}

func TestCardinalityHelpers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	parent, err := s.CreateNode(ctx, "Parent", nil)
	mustSucceed(t, err)

	children := func() []*graph.Node {
		t.Helper()
		nodes, err := s.Related(ctx, "HAS_CHILD", parent.UID, graph.Outgoing)
		mustSucceed(t, err)
		return nodes
	}

	_, err = graph.Single(children(), "child")
	if !fedreg.IsErrorCode(err, fedreg.ErrCardinalityViolation) {
		t.Errorf("expected CARDINALITY_VIOLATION for zero nodes, got %#v", err)
	}
	node, err := graph.ZeroOrOne(children(), "child")
	mustSucceed(t, err)
	if node != nil {
		t.Errorf("expected nil for zero nodes, got %#v", node)
	}

	child, err := s.CreateNode(ctx, "Child", nil)
	mustSucceed(t, err)
	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, child.UID, nil))
	node, err = graph.Single(children(), "child")
	mustSucceed(t, err)
	assert.DeepEqual(t, "UID", node.UID, child.UID)

	otherChild, err := s.CreateNode(ctx, "Child", nil)
	mustSucceed(t, err)
	mustSucceed(t, s.Connect(ctx, "HAS_CHILD", parent.UID, otherChild.UID, nil))
	_, err = graph.ZeroOrOne(children(), "child")
	if !fedreg.IsErrorCode(err, fedreg.ErrCardinalityViolation) {
		t.Errorf("expected CARDINALITY_VIOLATION for two nodes, got %#v", err)
	}
}

func mustSucceed(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err.Error())
	}
}
