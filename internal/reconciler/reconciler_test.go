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

package reconciler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	fabgitopsv1 "github.com/fabgitops/industrialplc-operator/api/v1"
	"github.com/fabgitops/industrialplc-operator/internal/deviceclient"
	"github.com/fabgitops/industrialplc-operator/internal/events"
	"github.com/fabgitops/industrialplc-operator/internal/ierrors"
	"github.com/fabgitops/industrialplc-operator/internal/metrics"
	statuswriter "github.com/fabgitops/industrialplc-operator/internal/status"
)

func newTestHarness(t *testing.T, plc *fabgitopsv1.IndustrialPLC) (*Reconciler, *Context, *deviceclient.Fake, client.Client, *record.FakeRecorder) {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, fabgitopsv1.AddToScheme(scheme))
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(plc).WithStatusSubresource(plc).Build()

	fakeDevice := deviceclient.NewFake()
	fakeRecorder := record.NewFakeRecorder(100)
	rc := &Context{
		Device:  fakeDevice,
		Metrics: metrics.New(),
		Events:  events.NewRecorder(fakeRecorder, "test"),
		Status:  statuswriter.NewWriter(c),
		Logger:  logr.Discard(),
	}
	return New(), rc, fakeDevice, c, fakeRecorder
}

// requireEventContains drains fakeRecorder.Events and fails the test unless
// one buffered event contains substr.
func requireEventContains(t *testing.T, fakeRecorder *record.FakeRecorder, substr string) {
	t.Helper()
	for {
		select {
		case e := <-fakeRecorder.Events:
			if strings.Contains(e, substr) {
				return
			}
		default:
			t.Fatalf("no recorded event contains %q", substr)
			return
		}
	}
}

// requireNoEventContains drains fakeRecorder.Events and fails the test if any
// buffered event contains substr.
func requireNoEventContains(t *testing.T, fakeRecorder *record.FakeRecorder, substr string) {
	t.Helper()
	for {
		select {
		case e := <-fakeRecorder.Events:
			if strings.Contains(e, substr) {
				t.Fatalf("unexpected event contains %q: %s", substr, e)
			}
		default:
			return
		}
	}
}

func newPLC(name string, target int32, autoCorrect bool) *fabgitopsv1.IndustrialPLC {
	ac := autoCorrect
	return &fabgitopsv1.IndustrialPLC{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec: fabgitopsv1.IndustrialPLCSpec{
			DeviceAddress:    "10.0.0.5",
			Port:             502,
			TargetRegister:   4001,
			TargetValue:      target,
			PollIntervalSecs: 1,
			AutoCorrect:      &ac,
		},
	}
}

func TestScenarioASteadyState(t *testing.T) {
	plc := newPLC("plc-a", 2500, true)
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2500)

	for i := 0; i < 3; i++ {
		decision, err := r.ReconcileOnce(context.Background(), rc, plc)
		require.NoError(t, err)
		require.Equal(t, OutcomeSuccess, decision.Outcome)
	}

	require.Equal(t, int64(0), plc.Status.DriftEvents)
	require.Equal(t, int64(0), plc.Status.CorrectionsApplied)
	require.True(t, plc.Status.InSync)
	require.Equal(t, fabgitopsv1.PhaseConnected, plc.Status.Phase)
}

func TestScenarioBDriftAutoCorrected(t *testing.T) {
	plc := newPLC("plc-b", 2500, true)
	r, rc, dev, _, fakeRecorder := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2500)

	_, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)

	dev.Set("10.0.0.5", 502, 4001, 2400)
	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, decision.Outcome)

	require.EqualValues(t, 2500, dev.Value("10.0.0.5", 502, 4001))
	require.Equal(t, int64(1), plc.Status.DriftEvents)
	require.Equal(t, int64(1), plc.Status.CorrectionsApplied)
	require.True(t, plc.Status.InSync)
	require.Equal(t, fabgitopsv1.PhaseConnected, plc.Status.Phase)

	requireEventContains(t, fakeRecorder, string(events.DriftDetected))
}

func TestScenarioCDriftWithoutAutoCorrect(t *testing.T) {
	plc := newPLC("plc-c", 2500, false)
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2500)

	_, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)

	dev.Set("10.0.0.5", 502, 4001, 2400)
	_, err = r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)

	require.EqualValues(t, 2400, dev.Value("10.0.0.5", 502, 4001))
	require.Equal(t, int64(1), plc.Status.DriftEvents)
	require.Equal(t, int64(0), plc.Status.CorrectionsApplied)
	require.False(t, plc.Status.InSync)
	require.Equal(t, fabgitopsv1.PhaseDriftDetected, plc.Status.Phase)

	_, err = r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, int64(2), plc.Status.DriftEvents)
	require.Equal(t, int64(0), plc.Status.CorrectionsApplied)
	require.Empty(t, dev.Writes)
}

func TestScenarioDUnreachableThenRecovers(t *testing.T) {
	plc := newPLC("plc-d", 2500, true)
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Down = true

	for i := 0; i < 3; i++ {
		decision, err := r.ReconcileOnce(context.Background(), rc, plc)
		require.NoError(t, err)
		require.Equal(t, OutcomeTransientFailure, decision.Outcome)
		require.Equal(t, fabgitopsv1.PhaseFailed, plc.Status.Phase)
		require.NotEmpty(t, plc.Status.LastError)
	}

	dev.Down = false
	dev.Set("10.0.0.5", 502, 4001, 2500)
	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, decision.Outcome)
	require.Equal(t, fabgitopsv1.PhaseConnected, plc.Status.Phase)
	require.Empty(t, plc.Status.LastError)
	require.True(t, plc.Status.InSync)
}

func TestScenarioEWriteFails(t *testing.T) {
	plc := newPLC("plc-e", 2500, true)
	r, rc, dev, _, fakeRecorder := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2400)
	dev.NextWriteErr = ierrors.New("write", ierrors.ProtocolError, nil)

	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, OutcomeTransientFailure, decision.Outcome)

	require.Equal(t, int64(1), plc.Status.DriftEvents)
	require.Equal(t, int64(0), plc.Status.CorrectionsApplied)
	require.Equal(t, fabgitopsv1.PhaseFailed, plc.Status.Phase)

	requireNoEventContains(t, fakeRecorder, string(events.DriftCorrected))
}

func TestScenarioFTargetChangesMidFlight(t *testing.T) {
	plc := newPLC("plc-f", 2500, true)
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2500)

	_, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.True(t, plc.Status.InSync)

	plc.Spec.TargetValue = 3000
	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, decision.Outcome)

	require.Equal(t, int64(1), plc.Status.DriftEvents)
	require.Equal(t, int64(1), plc.Status.CorrectionsApplied)
	require.EqualValues(t, 3000, dev.Value("10.0.0.5", 502, 4001))
}

func TestAutoCorrectFalseNeverWrites(t *testing.T) {
	plc := newPLC("plc-g", 2500, false)
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 1111)

	for i := 0; i < 5; i++ {
		_, err := r.ReconcileOnce(context.Background(), rc, plc)
		require.NoError(t, err)
	}
	require.Empty(t, dev.Writes)
}

func TestPollIntervalDefaultsWhenUnset(t *testing.T) {
	plc := newPLC("plc-h", 2500, true)
	plc.Spec.PollIntervalSecs = 0
	r, rc, dev, _, _ := newTestHarness(t, plc)
	dev.Set("10.0.0.5", 502, 4001, 2500)

	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, time.Duration(fabgitopsv1.DefaultPollInterval)*time.Second, decision.PollInterval)
}

func TestConfigErrorOnEmptyAddress(t *testing.T) {
	plc := newPLC("plc-i", 2500, true)
	plc.Spec.DeviceAddress = ""
	r, rc, _, _, _ := newTestHarness(t, plc)

	decision, err := r.ReconcileOnce(context.Background(), rc, plc)
	require.NoError(t, err)
	require.Equal(t, OutcomeConfigError, decision.Outcome)
	require.Equal(t, fabgitopsv1.PhaseFailed, plc.Status.Phase)
	require.NotEmpty(t, plc.Status.LastError)
}
