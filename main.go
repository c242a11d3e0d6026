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

package main

import (
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"
	"github.com/spf13/cobra"

	apicmd "github.com/sapcc/fedreg/cmd/api"
	validatecmd "github.com/sapcc/fedreg/cmd/validate"
	"github.com/sapcc/fedreg/internal/fedreg"

	//include all known store driver implementations
	_ "github.com/sapcc/fedreg/internal/drivers/memory"
	_ "github.com/sapcc/fedreg/internal/drivers/postgres"
)

func main() {
	logg.ShowDebug = osext.GetenvBool("FEDREG_DEBUG")

	rootCmd := &cobra.Command{
		Use:     "fedreg",
		Short:   "Federated cloud resource registry",
		Long:    "Fedreg is a registry for the resources of federated cloud providers. This binary contains both the server and the payload validation tooling.",
		Version: fedreg.Version,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	validatecmd.AddCommandTo(rootCmd)

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Server commands.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	apicmd.AddCommandTo(serverCmd)
	rootCmd.AddCommand(serverCmd)

	if err := rootCmd.Execute(); err != nil {
		logg.Fatal(err.Error())
	}
}
