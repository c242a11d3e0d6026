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

// Package postgres contains the production graph.Store implementation.
// Nodes and relationships live in two JSONB-bearing tables; the node
// label and the relationship type are plain columns so that the hot
// lookups stay on btree indexes.
package postgres

import (
	"database/sql"
	"net/url"

	"github.com/go-gorp/gorp/v3"
	"github.com/sapcc/go-bits/easypg"
)

var sqlMigrations = map[string]string{
	"001_initial.up.sql": `
		CREATE TABLE nodes (
			uid   TEXT      NOT NULL PRIMARY KEY,
			label TEXT      NOT NULL,
			seq   BIGSERIAL NOT NULL,
			props JSONB     NOT NULL DEFAULT '{}'
		);
		CREATE INDEX nodes_label_idx ON nodes (label);
		CREATE INDEX nodes_props_idx ON nodes USING gin (props);

		CREATE TABLE edges (
			rel_type TEXT  NOT NULL,
			from_uid TEXT  NOT NULL REFERENCES nodes ON DELETE CASCADE,
			to_uid   TEXT  NOT NULL REFERENCES nodes ON DELETE CASCADE,
			props    JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (rel_type, from_uid, to_uid)
		);
		CREATE INDEX edges_to_uid_idx ON edges (rel_type, to_uid);
	`,
	"001_initial.down.sql": `
		DROP TABLE edges;
		DROP TABLE nodes;
	`,
}

// InitDB connects to the Postgres database and runs all pending schema
// migrations.
func InitDB(dbURL url.URL) (*sql.DB, error) {
	return easypg.Connect(dbURL, easypg.Configuration{
		Migrations: sqlMigrations,
	})
}

func makeDbMap(dbConn *sql.DB) *gorp.DbMap {
	return &gorp.DbMap{Db: dbConn, Dialect: gorp.PostgresDialect{}}
}
