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

package schemas

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day in ISO 8601 format ("2006-01-02"). The string
// representation sorts chronologically, so comparisons work without
// parsing.
type Date string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(buf []byte) error {
	var in string
	err := json.Unmarshal(buf, &in)
	if err != nil {
		return err
	}
	_, err = time.Parse(time.DateOnly, in)
	if err != nil {
		return fmt.Errorf("%q is not a valid date: %w", in, err)
	}
	*d = Date(in)
	return nil
}

// Before reports whether this date lies strictly before the other one.
func (d Date) Before(other Date) bool {
	return string(d) < string(other)
}
