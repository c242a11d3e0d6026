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

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gorp/gorp/v3"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sapcc/go-bits/sqlext"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
)

func init() {
	graph.RegisterStoreDriver("postgres", func(dbConn *sql.DB) (graph.Store, error) {
		if dbConn == nil {
			return nil, errors.New(`store driver "postgres" requires a DB connection`)
		}
		return &Store{db: makeDbMap(dbConn)}, nil
	})
}

// Store implements graph.Store on a Postgres database.
type Store struct {
	db *gorp.DbMap
}

var nodeInsertQuery = sqlext.SimplifyWhitespace(`
	INSERT INTO nodes (uid, label, props) VALUES ($1, $2, $3)
`)

// CreateNode implements the graph.Store interface.
func (s *Store) CreateNode(ctx context.Context, label string, props map[string]any) (*graph.Node, error) {
	n := &graph.Node{
		UID:   uuid.NewString(),
		Label: label,
		Props: props,
	}
	_, err := s.db.WithContext(ctx).Exec(nodeInsertQuery, n.UID, label, propsJSON(props))
	if err != nil {
		return nil, fmt.Errorf("cannot create %s node: %w", label, err)
	}
	return n, nil
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
func (s *Store) GetNodeByUID(ctx context.Context, uid string) (*graph.Node, error) {
	var (
		n        graph.Node
		propsBuf []byte
	)
	err := s.db.WithContext(ctx).QueryRow(
		`SELECT uid, label, props FROM nodes WHERE uid = $1`, uid).
		Scan(&n.UID, &n.Label, &propsBuf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot get node %s: %w", uid, err)
	}
	err = json.Unmarshal(propsBuf, &n.Props)
	return &n, err
}

// ListNodes implements the graph.Store interface.
func (s *Store) ListNodes(ctx context.Context, label string, filter graph.Filter, opts graph.ListOpts) ([]*graph.Node, error) {
	query := `SELECT uid, label, props FROM nodes WHERE label = $1 AND props @> $2::jsonb`
	query += orderClause(opts.Sort)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Skip)
	}

	var nodes []*graph.Node
	err := sqlext.ForeachRow(s.db.WithContext(ctx).(sqlext.Executor), query, []any{label, propsJSON(filter)}, func(rows *sql.Rows) error {
		n, err := scanNode(rows)
		if err == nil {
			nodes = append(nodes, n)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list %s nodes: %w", label, err)
	}
	return nodes, nil
}

// orderClause renders the ORDER BY clause for a graph.ListOpts sort key.
// The key ends up inside the SQL text, so it gets quoted as a literal.
// The secondary sort on seq keeps unsorted listings in insertion order.
func orderClause(sortKey string) string {
	direction := "ASC"
	if strings.HasPrefix(sortKey, "-") {
		sortKey, direction = sortKey[1:], "DESC"
	}
	if sortKey == "" {
		return " ORDER BY seq ASC"
	}
	return fmt.Sprintf(" ORDER BY props->%s %s, seq ASC", pq.QuoteLiteral(sortKey), direction)
}

var nodeUpdateQuery = sqlext.SimplifyWhitespace(`
	UPDATE nodes SET props = $2 WHERE uid = $1
`)

// UpdateNode implements the graph.Store interface.
func (s *Store) UpdateNode(ctx context.Context, node *graph.Node) error {
	result, err := s.db.WithContext(ctx).Exec(nodeUpdateQuery, node.UID, propsJSON(node.Props))
	if err != nil {
		return fmt.Errorf("cannot update node %s: %w", node.UID, err)
	}
	rowCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowCount == 0 {
		return fedreg.ErrNotFound.With("no node with UID %s", node.UID)
	}
	return nil
}

// DeleteNode implements the graph.Store interface. The ON DELETE
// CASCADE on the edges table removes all relationships along with the
// node.
func (s *Store) DeleteNode(ctx context.Context, uid string) error {
	result, err := s.db.WithContext(ctx).Exec(`DELETE FROM nodes WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("cannot delete node %s: %w", uid, err)
	}
	rowCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowCount == 0 {
		return fedreg.ErrAlreadyDeleted.With("no node with UID %s", uid)
	}
	return nil
}

var edgeUpsertQuery = sqlext.SimplifyWhitespace(`
	INSERT INTO edges (rel_type, from_uid, to_uid, props) VALUES ($1, $2, $3, $4)
	ON CONFLICT (rel_type, from_uid, to_uid) DO UPDATE SET props = EXCLUDED.props
`)

// Connect implements the graph.Store interface.
func (s *Store) Connect(ctx context.Context, rel, fromUID, toUID string, props map[string]any) error {
	_, err := s.db.WithContext(ctx).Exec(edgeUpsertQuery, rel, fromUID, toUID, propsJSON(props))
	if err != nil {
		return fmt.Errorf("cannot connect %s -[%s]-> %s: %w", fromUID, rel, toUID, err)
	}
	return nil
}

// Disconnect implements the graph.Store interface.
func (s *Store) Disconnect(ctx context.Context, rel, fromUID, toUID string) error {
	_, err := s.db.WithContext(ctx).Exec(
		`DELETE FROM edges WHERE rel_type = $1 AND from_uid = $2 AND to_uid = $3`,
		rel, fromUID, toUID)
	if err != nil {
		return fmt.Errorf("cannot disconnect %s -[%s]-> %s: %w", fromUID, rel, toUID, err)
	}
	return nil
}

var edgeDeleteReturningQuery = sqlext.SimplifyWhitespace(`
	DELETE FROM edges WHERE rel_type = $1 AND from_uid = $2 AND to_uid = $3 RETURNING props
`)

// Reconnect implements the graph.Store interface. The relationship
// annotation carries over to the new target.
func (s *Store) Reconnect(ctx context.Context, rel, fromUID, oldToUID, newToUID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer sqlext.RollbackUnlessCommitted(tx)
	txe := tx.WithContext(ctx)

	propsBuf := json.RawMessage("{}")
	err = txe.QueryRow(edgeDeleteReturningQuery, rel, fromUID, oldToUID).Scan(&propsBuf)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("cannot reconnect %s -[%s]-> %s: %w", fromUID, rel, newToUID, err)
	}
	_, err = txe.Exec(edgeUpsertQuery, rel, fromUID, newToUID, string(propsBuf))
	if err != nil {
		return fmt.Errorf("cannot reconnect %s -[%s]-> %s: %w", fromUID, rel, newToUID, err)
	}
	return tx.Commit()
}

var relatedQueries = map[graph.Direction]string{
	graph.Outgoing: sqlext.SimplifyWhitespace(`
		SELECT n.uid, n.label, n.props
		  FROM nodes n
		  JOIN edges e ON e.to_uid = n.uid
		 WHERE e.rel_type = $1 AND e.from_uid = $2
		 ORDER BY n.seq ASC
	`),
	graph.Incoming: sqlext.SimplifyWhitespace(`
		SELECT n.uid, n.label, n.props
		  FROM nodes n
		  JOIN edges e ON e.from_uid = n.uid
		 WHERE e.rel_type = $1 AND e.to_uid = $2
		 ORDER BY n.seq ASC
	`),
}

// Related implements the graph.Store interface.
func (s *Store) Related(ctx context.Context, rel, uid string, dir graph.Direction) ([]*graph.Node, error) {
	var nodes []*graph.Node
	err := sqlext.ForeachRow(s.db.WithContext(ctx).(sqlext.Executor), relatedQueries[dir], []any{rel, uid}, func(rows *sql.Rows) error {
		n, err := scanNode(rows)
		if err == nil {
			nodes = append(nodes, n)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list nodes related to %s via %s: %w", uid, rel, err)
	}
	return nodes, nil
}

var countQueries = map[graph.Direction]string{
	graph.Outgoing: `SELECT COUNT(*) FROM edges WHERE rel_type = $1 AND from_uid = $2`,
	graph.Incoming: `SELECT COUNT(*) FROM edges WHERE rel_type = $1 AND to_uid = $2`,
}

// CountRelated implements the graph.Store interface.
func (s *Store) CountRelated(ctx context.Context, rel, uid string, dir graph.Direction) (int, error) {
	count, err := s.db.WithContext(ctx).SelectInt(countQueries[dir], rel, uid)
	if err != nil {
		return 0, fmt.Errorf("cannot count nodes related to %s via %s: %w", uid, rel, err)
	}
	return int(count), nil
}

// RelProps implements the graph.Store interface.
func (s *Store) RelProps(ctx context.Context, rel, fromUID, toUID string) (map[string]any, error) {
	var propsBuf []byte
	err := s.db.WithContext(ctx).QueryRow(
		`SELECT props FROM edges WHERE rel_type = $1 AND from_uid = $2 AND to_uid = $3`,
		rel, fromUID, toUID).Scan(&propsBuf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read props of %s -[%s]-> %s: %w", fromUID, rel, toUID, err)
	}
	props := map[string]any{}
	err = json.Unmarshal(propsBuf, &props)
	return props, err
}

func scanNode(rows *sql.Rows) (*graph.Node, error) {
	var (
		n        graph.Node
		propsBuf []byte
	)
	err := rows.Scan(&n.UID, &n.Label, &propsBuf)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(propsBuf, &n.Props)
	return &n, err
}

func propsJSON(props map[string]any) string {
	if props == nil {
		return "{}"
	}
	buf, err := json.Marshal(props)
	if err != nil {
		// props always come from models.PropsOf or JSON request bodies
		panic(fmt.Sprintf("cannot marshal node props: %s", err.Error()))
	}
	return string(buf)
}
