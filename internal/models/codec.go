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

package models

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PropsOf renders a typed model into the prop map stored on a graph
// node. The round trip through JSON normalizes all values into JSON
// types (string, bool, float64, []any, nil), so props read back from a
// store always compare cleanly against freshly rendered ones.
func PropsOf(model any) map[string]any {
	buf, err := json.Marshal(model)
	if err != nil {
		// all models marshal cleanly; failing here means a programming error
		panic(fmt.Sprintf("cannot marshal %T: %s", model, err.Error()))
	}
	var props map[string]any
	err = json.Unmarshal(buf, &props)
	if err != nil {
		panic(fmt.Sprintf("cannot unmarshal props of %T: %s", model, err.Error()))
	}
	return props
}

// Decode is the inverse of PropsOf: it recovers a typed view from a
// node's prop map. Unknown props are ignored, so nodes written by a
// newer schema still decode.
func Decode[T any](props map[string]any) (T, error) {
	var result T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &result,
	})
	if err != nil {
		return result, err
	}
	err = decoder.Decode(props)
	if err != nil {
		return result, fmt.Errorf("cannot decode %T from props: %w", result, err)
	}
	return result, nil
}
