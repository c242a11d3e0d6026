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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RegErrorCode is the closed set of error codes that can appear in type
// RegError.
type RegErrorCode string

// Possible values for RegErrorCode.
const (
	ErrNotFound             RegErrorCode = "NOT_FOUND"
	ErrCardinalityViolation RegErrorCode = "CARDINALITY_VIOLATION"
	ErrInvalidInput         RegErrorCode = "INVALID_INPUT"
	ErrConflict             RegErrorCode = "CONFLICT"
	ErrAlreadyDeleted       RegErrorCode = "ALREADY_DELETED"
	ErrUnknown              RegErrorCode = "UNKNOWN"
)

var apiErrorMessages = map[RegErrorCode]string{
	ErrNotFound:             "entity not known to registry",
	ErrCardinalityViolation: "stored relationship cardinality violates the declared one",
	ErrInvalidInput:         "submitted payload violates a registry invariant",
	ErrConflict:             "entity conflicts with an existing one",
	ErrAlreadyDeleted:       "entity was already deleted",
	ErrUnknown:              "unknown error",
}

var apiErrorStatusCodes = map[RegErrorCode]int{
	ErrNotFound:             http.StatusNotFound,
	ErrCardinalityViolation: http.StatusInternalServerError,
	ErrInvalidInput:         http.StatusUnprocessableEntity,
	ErrConflict:             http.StatusConflict,
	ErrAlreadyDeleted:       http.StatusNotFound,
	ErrUnknown:              http.StatusInternalServerError,
}

// With is a convenience function for constructing type RegError.
func (c RegErrorCode) With(msg string, args ...any) *RegError {
	var err error
	if msg != "" {
		if len(args) > 0 {
			err = fmt.Errorf(msg, args...)
		} else {
			err = errors.New(msg)
		}
	}
	return &RegError{Code: c, Inner: err}
}

// RegError is the error type returned by the reconciliation engine and
// rendered by the API layer.
type RegError struct {
	Code  RegErrorCode
	Inner error // optional
}

// AsRegError casts err into a RegError if possible, or wraps it in one with
// code ErrUnknown otherwise.
func AsRegError(err error) *RegError {
	var rerr *RegError
	if errors.As(err, &rerr) {
		return rerr
	}
	return &RegError{Code: ErrUnknown, Inner: err}
}

// IsErrorCode reports whether err is a RegError with the given code.
func IsErrorCode(err error, code RegErrorCode) bool {
	var rerr *RegError
	return errors.As(err, &rerr) && rerr.Code == code
}

// Error implements the builtin/error interface.
func (e *RegError) Error() string {
	msg := apiErrorMessages[e.Code]
	if e.Inner != nil {
		msg += ": " + e.Inner.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *RegError) Unwrap() error {
	return e.Inner
}

// HTTPStatus returns the HTTP status code that the API layer reports for
// this error.
func (e *RegError) HTTPStatus() int {
	status, ok := apiErrorStatusCodes[e.Code]
	if !ok {
		return http.StatusInternalServerError
	}
	return status
}

// MarshalJSON implements the json.Marshaler interface.
func (e *RegError) MarshalJSON() ([]byte, error) {
	data := struct {
		Code    string  `json:"code"`
		Message string  `json:"message"`
		Detail  *string `json:"detail,omitempty"`
	}{
		Code:    string(e.Code),
		Message: apiErrorMessages[e.Code],
	}
	if e.Inner != nil {
		detail := e.Inner.Error()
		data.Detail = &detail
	}
	return json.Marshal(data)
}

// WriteAsTextTo reports this error in a plaintext format into the given
// ResponseWriter.
func (e *RegError) WriteAsTextTo(w http.ResponseWriter) {
	http.Error(w, e.Error(), e.HTTPStatus())
}
