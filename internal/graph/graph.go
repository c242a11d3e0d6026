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
	"context"
	"database/sql"
	"errors"
)

// Node is a single node in the property graph. Props holds the node's
// scalar attributes in JSON types (string, bool, float64, []any); use
// models.Decode to obtain a typed view.
type Node struct {
	UID   string
	Label string
	Props map[string]any
}

// Filter selects nodes whose props contain all given key/value pairs.
type Filter map[string]any

// ListOpts controls sorting and windowing of ListNodes results.
//
// Sort is a prop key, optionally prefixed with "-" for descending order.
// A zero Limit means "no limit".
type ListOpts struct {
	Sort  string
	Skip  int
	Limit int
}

// Direction selects which end of a relationship a node sits on.
type Direction int

const (
	// Outgoing follows relationships that start at the given node.
	Outgoing Direction = iota
	// Incoming follows relationships that end at the given node.
	Incoming
)

// Store is the graph-database collaborator of the reconciliation engine.
//
// Node deletion cascades removal of all relationships touching the node.
// All mutating operations commit independently; there is no transaction
// spanning multiple calls.
type Store interface {
	// CreateNode creates a node with a fresh UID and returns it.
	CreateNode(ctx context.Context, label string, props map[string]any) (*Node, error)
	// GetNode returns the first node with this label matching the filter,
	// or nil if there is none.
	GetNode(ctx context.Context, label string, filter Filter) (*Node, error)
	// GetNodeByUID returns the node with this UID, or nil if there is none.
	GetNodeByUID(ctx context.Context, uid string) (*Node, error)
	// ListNodes returns all nodes with this label matching the filter.
	ListNodes(ctx context.Context, label string, filter Filter, opts ListOpts) ([]*Node, error)
	// UpdateNode persists the current Props of the given node.
	UpdateNode(ctx context.Context, node *Node) error
	// DeleteNode deletes the node and all its relationships. Deleting a
	// node that does not exist (anymore) fails with ErrAlreadyDeleted.
	DeleteNode(ctx context.Context, uid string) error

	// Connect creates (or, if it exists, re-annotates) a relationship.
	Connect(ctx context.Context, rel, fromUID, toUID string, props map[string]any) error
	// Disconnect removes a relationship. Removing a relationship that does
	// not exist is not an error.
	Disconnect(ctx context.Context, rel, fromUID, toUID string) error
	// Reconnect atomically swaps the target of a to-one relationship.
	Reconnect(ctx context.Context, rel, fromUID, oldToUID, newToUID string) error

	// Related returns the nodes on the far end of all `rel` relationships
	// touching the given node in the given direction.
	Related(ctx context.Context, rel, uid string, dir Direction) ([]*Node, error)
	// CountRelated is like Related, but only counts.
	CountRelated(ctx context.Context, rel, uid string, dir Direction) (int, error)
	// RelProps returns the annotation props of a relationship, or nil if
	// the relationship does not exist.
	RelProps(ctx context.Context, rel, fromUID, toUID string) (map[string]any, error)
}

var storeFactories = make(map[string]func(*sql.DB) (Store, error))

// NewStore creates a new Store using one of the factory functions
// registered with RegisterStoreDriver. Drivers that do not need a SQL
// connection ignore the dbConn argument.
func NewStore(name string, dbConn *sql.DB) (Store, error) {
	factory := storeFactories[name]
	if factory != nil {
		return factory(dbConn)
	}
	return nil, errors.New("no such store driver: " + name)
}

// RegisterStoreDriver registers a Store implementation. Call this from
// func init() of the package defining the implementation.
func RegisterStoreDriver(name string, factory func(*sql.DB) (Store, error)) {
	if _, exists := storeFactories[name]; exists {
		panic("attempted to register multiple store drivers with name = " + name)
	}
	storeFactories[name] = factory
}
