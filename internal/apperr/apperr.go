/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package apperr defines the error codes returned to callers of club operations.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error code
type Code string

const (
	Unauthenticated    Code = "unauthenticated"
	InvalidArgument    Code = "invalid-argument"
	NotFound           Code = "not-found"
	FailedPrecondition Code = "failed-precondition"
	PermissionDenied   Code = "permission-denied"
	Aborted            Code = "aborted"
	Internal           Code = "internal"
)

// Error carries a code, a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to cause. The message is what callers see.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	case PermissionDenied:
		return http.StatusForbidden
	case Aborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return CodeOf(err) == Aborted
}
