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

// Package test contains helpers for unit tests in the other packages.
package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"

	"github.com/sapcc/fedreg/internal/api"
	"github.com/sapcc/fedreg/internal/graph"
	"github.com/sapcc/fedreg/internal/processor"

	_ "github.com/sapcc/fedreg/internal/drivers/memory"
)

// Setup contains all the pieces that a unit test needs to exercise the
// reconciliation engine and its HTTP API.
type Setup struct {
	Ctx       context.Context
	Store     graph.Store
	Processor *processor.Processor
	Handler   http.Handler
	Clock     *Clock
	Auditor   *Auditor
}

// NewSetup prepares a test setup backed by the in-memory store driver.
func NewSetup(t *testing.T) Setup {
	t.Helper()
	logg.ShowDebug = osext.GetenvBool("FEDREG_DEBUG")

	store, err := graph.NewStore("in-memory-for-testing", nil)
	if err != nil {
		t.Fatal(err.Error())
	}

	s := Setup{
		Ctx:       context.Background(),
		Store:     store,
		Processor: processor.New(store),
		Clock:     &Clock{},
		Auditor:   &Auditor{},
	}
	s.Handler = httpapi.Compose(
		api.NewAPI(s.Processor, s.Auditor).OverrideTimeNow(s.Clock.Now),
		httpapi.WithoutLogging(),
	)
	return s
}
