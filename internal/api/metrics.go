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

package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// submissionsCounter counts provider tree submissions by verb and outcome.
	submissionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedreg_provider_submissions",
			Help: "Counts provider create/update/delete submissions.",
		},
		[]string{"verb", "outcome"},
	)
	// catalogRequestsCounter counts read requests on the catalog endpoints by label.
	catalogRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedreg_catalog_requests",
			Help: "Counts read requests on the catalog endpoints.",
		},
		[]string{"label"},
	)
)

func init() {
	prometheus.MustRegister(submissionsCounter)
	prometheus.MustRegister(catalogRequestsCounter)
}
