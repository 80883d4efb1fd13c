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

// Package reconciler implements one reconcile pass over a single
// IndustrialPLC snapshot: probe, read, compare, optionally correct, and
// publish status/events/metrics. It holds no per-resource state across
// calls — all cross-pass state (consecutive failure counts, next-requeue
// time) belongs to the Controller Runtime, never here.
package reconciler

import (
	"context"
	"fmt"
	"time"

	fabgitopsv1 "github.com/fabgitops/industrialplc-operator/api/v1"
	"github.com/fabgitops/industrialplc-operator/internal/events"
	"github.com/fabgitops/industrialplc-operator/internal/ierrors"
	statuswriter "github.com/fabgitops/industrialplc-operator/internal/status"
)

// Outcome classifies the result of one pass, for the Controller Runtime to
// turn into an actual requeue duration (it alone owns the backoff state).
type Outcome int

const (
	// OutcomeSuccess resets any consecutive-failure count; requeue at the
	// resource's normal poll interval.
	OutcomeSuccess Outcome = iota
	// OutcomeTransientFailure advances the consecutive-failure count;
	// requeue after the Controller Runtime's computed backoff.
	OutcomeTransientFailure
	// OutcomeConfigError means the Spec itself is invalid; requeue at the
	// normal poll interval without advancing backoff, since only a user
	// edit to the Spec can fix it.
	OutcomeConfigError
	// OutcomeGone means the resource was deleted between dispatch and
	// execution; the pass is a no-op and must not requeue.
	OutcomeGone
)

// Decision is what the Controller Runtime needs to schedule the next pass.
type Decision struct {
	Outcome      Outcome
	PollInterval time.Duration
}

// Reconciler runs one pass at a time; it is stateless and safe to share
// across goroutines, since every durable value it needs lives in the
// resource's Status or is passed in via Context.
type Reconciler struct{}

// New returns a ready-to-use Reconciler.
func New() *Reconciler { return &Reconciler{} }

// ReconcileOnce performs exactly one observe/compare/(optional correct)
// pass, per spec.md §4.5, mutating plc.Status through rc.Status and
// returning the Decision the Controller Runtime should act on.
func (r *Reconciler) ReconcileOnce(ctx context.Context, rc *Context, plc *fabgitopsv1.IndustrialPLC) (Decision, error) {
	start := time.Now()
	name, namespace := plc.Name, plc.Namespace
	pollInterval := clampPollInterval(plc.Spec.EffectivePollIntervalSeconds())
	logger := rc.Logger.WithValues("industrialplc", name, "namespace", namespace)

	reg, target, cfgErr := validateSpec(&plc.Spec)
	if cfgErr != nil {
		if err := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			s.Phase = fabgitopsv1.PhaseFailed
			s.LastError = cfgErr.Error()
			s.Message = "invalid spec"
		}); err != nil {
			return handleStatusErr(err)
		}
		return Decision{Outcome: OutcomeConfigError, PollInterval: pollInterval}, nil
	}

	addr := plc.Spec.DeviceAddress
	port := plc.Spec.EffectivePort()

	// Step 2: probe reachability.
	reachable := rc.Device.Reachable(addr, port)
	rc.Metrics.SetConnectionStatus(name, namespace, reachable)
	if !reachable {
		logger.Info("device unreachable", "address", addr, "port", port)
		rc.Events.Emit(plc, events.ConnectionFailed, "ConnectionFailed", "device %s:%d unreachable", addr, port)
		if err := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			s.Phase = fabgitopsv1.PhaseFailed
			s.LastError = "unreachable"
			s.Message = fmt.Sprintf("device %s:%d is unreachable", addr, port)
		}); err != nil {
			return handleStatusErr(err)
		}
		return Decision{Outcome: OutcomeTransientFailure}, nil
	}

	// Step 3: read the target register.
	value, err := rc.Device.ReadRegister(addr, port, reg)
	if err != nil {
		logger.Error(err, "reading register failed", "register", reg)
		rc.Events.Emit(plc, events.ReadFailed, "ReadFailed", "reading register %d from %s:%d: %v", reg, addr, port, err)
		if statusErr := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			s.Phase = fabgitopsv1.PhaseFailed
			s.LastError = errKind(err)
			s.Message = fmt.Sprintf("read failed: %v", err)
		}); statusErr != nil {
			return handleStatusErr(statusErr)
		}
		return Decision{Outcome: OutcomeTransientFailure}, nil
	}

	// Step 4: publish the observed value.
	rc.Metrics.SetRegisterValue(name, namespace, value)

	if value == target {
		// Step 5: in sync.
		if err := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			v := int32(value)
			s.Phase = fabgitopsv1.PhaseConnected
			s.CurrentValue = &v
			s.InSync = true
			s.LastError = ""
			s.Message = "register value matches target"
		}); err != nil {
			return handleStatusErr(err)
		}
		rc.Metrics.SetReconcileDuration(name, namespace, time.Since(start).Seconds())
		return Decision{Outcome: OutcomeSuccess, PollInterval: pollInterval}, nil
	}

	// Step 6: drift detected.
	rc.Metrics.IncDriftEvents(name, namespace)
	logger.Info("drift detected", "register", reg, "target", target, "actual", value)
	rc.Events.Emit(plc, events.DriftDetected, "DriftDetected", "register %d: target=%d actual=%d", reg, target, value)

	if !plc.Spec.AutoCorrectEnabled() {
		// Step 7: report only.
		if err := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			v := int32(value)
			s.Phase = fabgitopsv1.PhaseDriftDetected
			s.CurrentValue = &v
			s.InSync = false
			s.LastError = ""
			s.DriftEvents++
			s.Message = fmt.Sprintf("drift detected: target=%d actual=%d, auto-correct disabled", target, value)
		}); err != nil {
			return handleStatusErr(err)
		}
		rc.Metrics.SetReconcileDuration(name, namespace, time.Since(start).Seconds())
		return Decision{Outcome: OutcomeSuccess, PollInterval: pollInterval}, nil
	}

	// Step 8: best-effort intermediate status; a failure here is not fatal,
	// since the write itself is safe and idempotent.
	_ = rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
		v := int32(value)
		s.Phase = fabgitopsv1.PhaseCorrecting
		s.CurrentValue = &v
		s.InSync = false
		s.DriftEvents++
	})

	// Step 9: write the target value.
	if err := rc.Device.WriteRegister(addr, port, reg, target); err != nil {
		logger.Error(err, "correction write failed", "register", reg, "target", target)
		rc.Events.Emit(plc, events.WriteFailed, "WriteFailed", "writing register %d on %s:%d: %v", reg, addr, port, err)
		if statusErr := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
			s.Phase = fabgitopsv1.PhaseFailed
			s.LastError = errKind(err)
			s.Message = fmt.Sprintf("correction write failed: %v", err)
		}); statusErr != nil {
			return handleStatusErr(statusErr)
		}
		return Decision{Outcome: OutcomeTransientFailure}, nil
	}

	// Step 10: correction applied successfully.
	rc.Metrics.IncCorrections(name, namespace)
	logger.Info("drift corrected", "register", reg, "target", target)
	rc.Events.Emit(plc, events.DriftCorrected, "DriftCorrected", "register %d corrected to %d", reg, target)
	if err := rc.Status.Patch(ctx, plc, func(s *fabgitopsv1.IndustrialPLCStatus) {
		v := int32(target)
		s.Phase = fabgitopsv1.PhaseConnected
		s.CurrentValue = &v
		s.InSync = true
		s.LastError = ""
		s.CorrectionsApplied++
		s.Message = "drift corrected"
	}); err != nil {
		return handleStatusErr(err)
	}

	rc.Metrics.SetReconcileDuration(name, namespace, time.Since(start).Seconds())
	return Decision{Outcome: OutcomeSuccess, PollInterval: pollInterval}, nil
}

func handleStatusErr(err error) (Decision, error) {
	if err == statuswriter.ErrNotFound {
		return Decision{Outcome: OutcomeGone}, nil
	}
	return Decision{Outcome: OutcomeTransientFailure}, nil
}

func validateSpec(spec *fabgitopsv1.IndustrialPLCSpec) (reg, target uint16, err error) {
	if spec.DeviceAddress == "" {
		return 0, 0, &ierrors.ConfigError{Field: "deviceAddress", Err: fmt.Errorf("must not be empty")}
	}
	if spec.TargetRegister < 0 || spec.TargetRegister > 65535 {
		return 0, 0, &ierrors.ConfigError{Field: "targetRegister", Err: fmt.Errorf("out of range 0-65535")}
	}
	if spec.TargetValue < 0 || spec.TargetValue > 65535 {
		return 0, 0, &ierrors.ConfigError{Field: "targetValue", Err: fmt.Errorf("out of range 0-65535")}
	}
	return uint16(spec.TargetRegister), uint16(spec.TargetValue), nil
}

// clampPollInterval enforces the spec's "poll_interval < 1s is clamped to
// 1s" tie-break.
func clampPollInterval(secs int32) time.Duration {
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

func errKind(err error) string {
	if de, ok := err.(*ierrors.DeviceError); ok {
		return string(de.Kind)
	}
	return err.Error()
}
