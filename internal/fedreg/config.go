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

package fedreg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/sapcc/go-bits/easypg"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/must"
	"github.com/sapcc/go-bits/osext"
)

// Configuration contains all configuration values that the fedreg-api
// server needs.
type Configuration struct {
	ListenAddress string
	StoreDriver   string
}

// ParseConfiguration obtains a fedreg.Configuration instance from the
// corresponding environment variables. Aborts on error.
func ParseConfiguration() Configuration {
	logg.Debug("parsing configuration...")
	return Configuration{
		ListenAddress: osext.GetenvOrDefault("FEDREG_API_LISTEN_ADDRESS", ":8080"),
		StoreDriver:   osext.GetenvOrDefault("FEDREG_DRIVER_STORE", "postgres"),
	}
}

// GetDatabaseURLFromEnvironment reads the FEDREG_DB_* environment variables.
func GetDatabaseURLFromEnvironment() (dbURL url.URL, dbName string) {
	dbName = osext.GetenvOrDefault("FEDREG_DB_NAME", "fedreg")
	return must.Return(easypg.URLFrom(easypg.URLParts{
		HostName:          osext.GetenvOrDefault("FEDREG_DB_HOSTNAME", "localhost"),
		Port:              osext.GetenvOrDefault("FEDREG_DB_PORT", "5432"),
		UserName:          osext.GetenvOrDefault("FEDREG_DB_USERNAME", "postgres"),
		Password:          os.Getenv("FEDREG_DB_PASSWORD"),
		ConnectionOptions: os.Getenv("FEDREG_DB_CONNECTION_OPTIONS"),
		DatabaseName:      dbName,
	})), dbName
}

// UnmarshalJSONStrict is like json.Unmarshal, but explicitly rejects
// unknown fields. We use it for payloads supplied by operators, where
// a misspelled field deserves a loud error instead of silence.
func UnmarshalJSONStrict(buf []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("cannot parse JSON payload: %w", err)
	}
	return nil
}
