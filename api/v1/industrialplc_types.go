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

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Phase is the coarse lifecycle state of an IndustrialPLC, tracked in
// Status.Phase. It is modelled as a string-backed enum because the Go type
// system has no native sum type; the cluster's schema layer is responsible
// for validating the enum values listed below.
type Phase string

const (
	// PhasePending is the initial phase, before the device has been probed.
	PhasePending Phase = "Pending"
	// PhaseConnecting means a reachability probe is about to run or just ran.
	PhaseConnecting Phase = "Connecting"
	// PhaseConnected means the last observation was successful and in sync.
	PhaseConnected Phase = "Connected"
	// PhaseDriftDetected means the last observation found actual != desired.
	PhaseDriftDetected Phase = "DriftDetected"
	// PhaseCorrecting means a write to close detected drift is in flight.
	PhaseCorrecting Phase = "Correcting"
	// PhaseFailed means the last reachability probe, read, or write failed.
	PhaseFailed Phase = "Failed"
)

// DefaultPort is the default Modbus-style TCP port used when Spec.Port is
// unset.
const DefaultPort = 502

// DefaultPollInterval is the cadence used when Spec.PollIntervalSecs is unset.
const DefaultPollInterval = 5

// MinPollIntervalSeconds is the floor every requeue interval is clamped to.
const MinPollIntervalSeconds = 1

// IndustrialPLCSpec declares the desired state of a single PLC register.
type IndustrialPLCSpec struct {
	// DeviceAddress is the host or IP address of the PLC.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	DeviceAddress string `json:"deviceAddress"`

	// Port is the TCP port the device protocol listens on.
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Maximum=65535
	// +kubebuilder:default=502
	Port int32 `json:"port,omitempty"`

	// TargetRegister is the zero-based holding register index to observe
	// and, if AutoCorrect is true, to write.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=65535
	TargetRegister int32 `json:"targetRegister"`

	// TargetValue is the desired 16-bit unsigned register contents.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=65535
	TargetValue int32 `json:"targetValue"`

	// PollIntervalSecs is the cadence between reconcile passes, in seconds.
	// Values below 1 are clamped to 1 by the Reconciler.
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:default=5
	PollIntervalSecs int32 `json:"pollIntervalSecs,omitempty"`

	// AutoCorrect controls whether detected drift is written back to the
	// device. When false, drift is reported in Status but never corrected.
	// +kubebuilder:default=true
	AutoCorrect *bool `json:"autoCorrect,omitempty"`

	// Tags are opaque labels carried through to events and logs.
	// +optional
	Tags []string `json:"tags,omitempty"`
}

// IndustrialPLCStatus is the operator-owned sub-document. Users must never
// write to it; only the controller patches it.
type IndustrialPLCStatus struct {
	// Phase is the coarse lifecycle state.
	// +optional
	Phase Phase `json:"phase,omitempty"`

	// CurrentValue is the most recent successfully read register value.
	// +optional
	CurrentValue *int32 `json:"currentValue,omitempty"`

	// InSync is true when CurrentValue equalled TargetValue at the last
	// successful observation.
	// +optional
	InSync bool `json:"inSync"`

	// DriftEvents is the cumulative count of observations where the read
	// value differed from TargetValue. Monotonically non-decreasing.
	// +optional
	DriftEvents int64 `json:"driftEvents"`

	// CorrectionsApplied is the cumulative count of successful writes that
	// closed a detected drift. Monotonically non-decreasing, and never
	// greater than DriftEvents.
	// +optional
	CorrectionsApplied int64 `json:"correctionsApplied"`

	// LastError is a human-readable cause of the most recent failure.
	// Cleared on any successful read.
	// +optional
	LastError string `json:"lastError,omitempty"`

	// Message is a human-readable summary of the current status.
	// +optional
	Message string `json:"message,omitempty"`

	// LastUpdate is set on every status write.
	// +optional
	LastUpdate metav1.Time `json:"lastUpdate,omitempty"`

	// Reconciler is a slot for the name of the worker instance that produced
	// this status. The reconcile pass does not set it, so it stays empty.
	// +optional
	Reconciler string `json:"reconciler,omitempty"`

	// ObservedGeneration is a slot for the Spec generation this status
	// reflects. The reconcile pass does not set it, so it stays zero.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// AutoCorrectEnabled reports Spec.AutoCorrect, defaulting to true when unset,
// matching the CRD's kubebuilder default.
func (s *IndustrialPLCSpec) AutoCorrectEnabled() bool {
	return s.AutoCorrect == nil || *s.AutoCorrect
}

// EffectivePort returns Spec.Port or DefaultPort when unset.
func (s *IndustrialPLCSpec) EffectivePort() int32 {
	if s.Port == 0 {
		return DefaultPort
	}
	return s.Port
}

// EffectivePollIntervalSeconds returns Spec.PollIntervalSecs, defaulted and
// clamped to MinPollIntervalSeconds.
func (s *IndustrialPLCSpec) EffectivePollIntervalSeconds() int32 {
	v := s.PollIntervalSecs
	if v == 0 {
		v = DefaultPollInterval
	}
	if v < MinPollIntervalSeconds {
		v = MinPollIntervalSeconds
	}
	return v
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=industrialplcs,scope=Namespaced,shortName=plc
// +kubebuilder:printcolumn:name="Device",type=string,JSONPath=`.spec.deviceAddress`
// +kubebuilder:printcolumn:name="Register",type=integer,JSONPath=`.spec.targetRegister`
// +kubebuilder:printcolumn:name="Desired",type=integer,JSONPath=`.spec.targetValue`
// +kubebuilder:printcolumn:name="Actual",type=integer,JSONPath=`.status.currentValue`
// +kubebuilder:printcolumn:name="Status",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// IndustrialPLC is the schema for the industrialplcs API: the desired state
// of one register on one PLC, and the operator's observed status for it.
type IndustrialPLC struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   IndustrialPLCSpec   `json:"spec,omitempty"`
	Status IndustrialPLCStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// IndustrialPLCList contains a list of IndustrialPLC.
type IndustrialPLCList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []IndustrialPLC `json:"items"`
}

func init() {
	SchemeBuilder.Register(&IndustrialPLC{}, &IndustrialPLCList{})
}
