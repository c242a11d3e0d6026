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

package apicmd

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/dlmiddlecote/sqlstats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/httpapi/pprofapi"
	"github.com/sapcc/go-bits/httpext"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/must"
	"github.com/spf13/cobra"

	"github.com/sapcc/fedreg/internal/api"
	"github.com/sapcc/fedreg/internal/drivers/postgres"
	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/processor"
)

// AddCommandTo mounts this command into the command hierarchy.
func AddCommandTo(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the fedreg-api server component.",
		Long:  "Run the fedreg-api server component. Configuration is read from environment variables as described in README.md.",
		Args:  cobra.NoArgs,
		Run:   run,
	}
	parent.AddCommand(cmd)
}

func run(cmd *cobra.Command, args []string) {
	_, _ = cmd, args

	cfg := fedreg.ParseConfiguration()
	ctx := httpext.ContextWithSIGINT(cmd.Context(), 10*time.Second)

	// the in-memory driver does not need a database connection
	var dbConn *sql.DB
	if cfg.StoreDriver == "postgres" {
		dbURL, dbName := fedreg.GetDatabaseURLFromEnvironment()
		dbConn = must.Return(postgres.InitDB(dbURL))
		prometheus.MustRegister(sqlstats.NewStatsCollector(dbName, dbConn))
	}

	store := must.Return(graph.NewStore(cfg.StoreDriver, dbConn))
	proc := processor.New(store)

	// wire up HTTP handlers
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"HEAD", "GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "User-Agent", "X-Auth-Token"},
	})
	handler := httpapi.Compose(
		api.NewAPI(proc, fedreg.LogAuditor{}),
		// the header reflection endpoint is only enabled where debugging is enabled (i.e. usually in dev/QA only)
		&headerReflector{logg.ShowDebug},
		httpapi.HealthCheckAPI{
			SkipRequestLog: true,
			Check: func() error {
				if dbConn == nil {
					return nil
				}
				return dbConn.PingContext(ctx)
			},
		},
		httpapi.WithGlobalMiddleware(corsMiddleware.Handler),
		pprofapi.API{IsAuthorized: pprofapi.IsRequestFromLocalhost},
	)
	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	// start HTTP server
	must.Succeed(httpext.ListenAndServeContext(ctx, cfg.ListenAddress, mux))
}
