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

// Package events publishes user-visible events correlated to an
// IndustrialPLC resource into the cluster's event stream, via the same
// client-go event-recording path every controller-runtime operator uses
// (manager.GetEventRecorderFor).
package events

import (
	"fmt"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
)

// Kind identifies which of the event kinds named by the reconciliation spec
// is being emitted.
type Kind string

const (
	// DriftDetected is emitted on every pass that observes actual != target.
	DriftDetected Kind = "DriftDetected"
	// DriftCorrected is emitted on every successful correction write.
	DriftCorrected Kind = "DriftCorrected"
	// ConnectionFailed is an operationally-useful, non-required event kind.
	ConnectionFailed Kind = "ConnectionFailed"
	// ReadFailed is an operationally-useful, non-required event kind.
	ReadFailed Kind = "ReadFailed"
	// WriteFailed is an operationally-useful, non-required event kind.
	WriteFailed Kind = "WriteFailed"
)

func (k Kind) severity() string {
	switch k {
	case DriftCorrected:
		return corev1.EventTypeNormal
	default:
		return corev1.EventTypeWarning
	}
}

// Emitter is the read-only handle the Reconciler holds; it never references
// back to the Reconciler or Controller Runtime (see the reconciliation
// spec's note on cyclic structures).
type Emitter interface {
	Emit(obj runtime.Object, kind Kind, reason, messageFmt string, args ...interface{})
}

// Recorder adapts a client-go record.EventRecorder to Emitter. Event
// emission failures are logged at warn level by the underlying recorder and
// are otherwise non-fatal to reconciliation, per the reconciliation spec.
type Recorder struct {
	recorder record.EventRecorder
	instance string
}

// NewRecorder wraps an existing client-go EventRecorder, typically obtained
// from a controller-runtime manager via GetEventRecorderFor. instance
// identifies which operator process emitted the event (spec.md §6's
// HOSTNAME-derived instance id); an empty instance is reported as
// "unknown".
func NewRecorder(recorder record.EventRecorder, instance string) *Recorder {
	if instance == "" {
		instance = "unknown"
	}
	return &Recorder{recorder: recorder, instance: instance}
}

// Emit records one event against obj. The correlation id embedded in the
// message lets log aggregation tie an emitted event back to the specific
// observation that produced it, without the Emitter holding any state of
// its own.
func (r *Recorder) Emit(obj runtime.Object, kind Kind, reason, messageFmt string, args ...interface{}) {
	corrID := uuid.NewString()
	msg := fmt.Sprintf(messageFmt, args...)
	r.recorder.Eventf(obj, kind.severity(), reason, "%s (instance=%s, correlation=%s)", msg, r.instance, corrID)
}
