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

package validatecmd

import (
	"os"

	"github.com/sapcc/go-bits/logg"
	"github.com/spf13/cobra"

	"github.com/sapcc/fedreg/internal/fedreg"
	"github.com/sapcc/fedreg/internal/schemas"
)

// AddCommandTo mounts this command into the command hierarchy.
func AddCommandTo(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "validate <file>...",
		Example: "  fedreg validate provider.json",
		Short:   "Validates provider payload files.",
		Long: `Validates provider payload files without submitting them.
Each file must contain one provider tree in the same JSON format that POST /v1/providers accepts.`,
		Args: cobra.MinimumNArgs(1),
		Run:  run,
	}
	parent.AddCommand(cmd)
}

func run(cmd *cobra.Command, args []string) {
	_ = cmd

	exitCode := 0
	for _, path := range args {
		buf, err := os.ReadFile(path)
		if err != nil {
			logg.Error(err.Error())
			exitCode = 1
			continue
		}

		var in schemas.ProviderCreateExtended
		err = fedreg.UnmarshalJSONStrict(buf, &in)
		if err == nil {
			err = in.Validate()
		}
		if err == nil {
			logg.Info("%s looks good", path)
		} else {
			logg.Error("%s is invalid: %s", path, err.Error())
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
