// Copyright 2026 The fabgitops Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ierrors defines the device-protocol error taxonomy named in the
// reconciliation spec: Unreachable, Timeout, ProtocolError, and
// EmptyResponse. Each is a distinct sentinel-backed Kind so callers can
// branch with errors.Is instead of string matching.
package ierrors

import "fmt"

// Kind is one of the device-client failure categories.
type Kind string

const (
	// Unreachable means a TCP connect to the device failed.
	Unreachable Kind = "Unreachable"
	// Timeout means a deadline elapsed before the operation completed.
	Timeout Kind = "Timeout"
	// ProtocolError means the device responded with a malformed frame or an
	// exception response.
	ProtocolError Kind = "ProtocolError"
	// EmptyResponse means the device closed the connection without sending
	// a complete response.
	EmptyResponse Kind = "EmptyResponse"
)

// DeviceError wraps a device-client failure with its Kind and the operation
// it occurred in, so callers can both branch on Kind and log a precise cause.
type DeviceError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Is reports whether target is a *DeviceError with the same Kind, so
// errors.Is(err, &DeviceError{Kind: Timeout}) works without comparing Op/Err.
// A target with an empty Kind matches a DeviceError of any Kind.
func (e *DeviceError) Is(target error) bool {
	t, ok := target.(*DeviceError)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return true
	}
	return t.Kind == e.Kind
}

// New constructs a DeviceError for the given operation and kind.
func New(op string, kind Kind, cause error) *DeviceError {
	return &DeviceError{Kind: kind, Op: op, Err: cause}
}

// ConfigError marks a resource Spec value that cannot be acted on (e.g. an
// unparseable device address). Per the reconciliation spec, configuration
// errors set phase=Failed but are never retried faster than the normal poll
// cadence, since only a spec edit by the user can resolve them.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid field %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
