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

package controller

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	fabgitopsv1 "github.com/fabgitops/industrialplc-operator/api/v1"
	"github.com/fabgitops/industrialplc-operator/internal/deviceclient"
	"github.com/fabgitops/industrialplc-operator/internal/events"
	"github.com/fabgitops/industrialplc-operator/internal/metrics"
	"github.com/fabgitops/industrialplc-operator/internal/reconciler"
	statuswriter "github.com/fabgitops/industrialplc-operator/internal/status"
)

func newTestReconciler(t *testing.T, objs ...*fabgitopsv1.IndustrialPLC) (*IndustrialPLCReconciler, *deviceclient.Fake) {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, fabgitopsv1.AddToScheme(scheme))

	builder := fake.NewClientBuilder().WithScheme(scheme)
	for _, o := range objs {
		builder = builder.WithObjects(o).WithStatusSubresource(o)
	}
	c := builder.Build()

	dev := deviceclient.NewFake()
	rc := &reconciler.Context{
		Device:  dev,
		Metrics: metrics.New(),
		Events:  events.NewRecorder(record.NewFakeRecorder(100), "test"),
		Status:  statuswriter.NewWriter(c),
		Logger:  logr.Discard(),
	}
	return NewIndustrialPLCReconciler(c, rc, rc.Metrics), dev
}

func TestReconcileNotFoundIsQuiet(t *testing.T) {
	r, _ := newTestReconciler(t)
	res, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Name: "missing", Namespace: "default"}})
	require.NoError(t, err)
	require.Equal(t, ctrl.Result{}, res)
}

func TestReconcileSuccessRequeuesAtPollInterval(t *testing.T) {
	ac := true
	plc := &fabgitopsv1.IndustrialPLC{
		ObjectMeta: metav1.ObjectMeta{Name: "plc-1", Namespace: "default"},
		Spec: fabgitopsv1.IndustrialPLCSpec{
			DeviceAddress:    "10.0.0.9",
			Port:             502,
			TargetRegister:   10,
			TargetValue:      7,
			PollIntervalSecs: 5,
			AutoCorrect:      &ac,
		},
	}
	r, dev := newTestReconciler(t, plc)
	dev.Set("10.0.0.9", 502, 10, 7)

	res, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Name: "plc-1", Namespace: "default"}})
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, res.RequeueAfter)
}

func TestReconcileTransientFailureBacksOff(t *testing.T) {
	ac := true
	plc := &fabgitopsv1.IndustrialPLC{
		ObjectMeta: metav1.ObjectMeta{Name: "plc-2", Namespace: "default"},
		Spec: fabgitopsv1.IndustrialPLCSpec{
			DeviceAddress:    "10.0.0.10",
			Port:             502,
			TargetRegister:   10,
			TargetValue:      7,
			PollIntervalSecs: 5,
			AutoCorrect:      &ac,
		},
	}
	r, dev := newTestReconciler(t, plc)
	dev.Down = true
	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "plc-2", Namespace: "default"}}

	res, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, res.RequeueAfter)

	res, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 4*time.Second, res.RequeueAfter)

	res, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 8*time.Second, res.RequeueAfter)
}

func TestReconcileRecoveryResetsBackoff(t *testing.T) {
	ac := true
	plc := &fabgitopsv1.IndustrialPLC{
		ObjectMeta: metav1.ObjectMeta{Name: "plc-3", Namespace: "default"},
		Spec: fabgitopsv1.IndustrialPLCSpec{
			DeviceAddress:    "10.0.0.11",
			Port:             502,
			TargetRegister:   10,
			TargetValue:      7,
			PollIntervalSecs: 5,
			AutoCorrect:      &ac,
		},
	}
	r, dev := newTestReconciler(t, plc)
	dev.Down = true
	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "plc-3", Namespace: "default"}}

	_, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)

	dev.Down = false
	dev.Set("10.0.0.11", 502, 10, 7)
	res, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, res.RequeueAfter)

	dev.Down = true
	res, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, res.RequeueAfter)
}

func TestReconcileConfigErrorDoesNotBackoff(t *testing.T) {
	ac := true
	plc := &fabgitopsv1.IndustrialPLC{
		ObjectMeta: metav1.ObjectMeta{Name: "plc-4", Namespace: "default"},
		Spec: fabgitopsv1.IndustrialPLCSpec{
			DeviceAddress:    "",
			Port:             502,
			TargetRegister:   10,
			TargetValue:      7,
			PollIntervalSecs: 5,
			AutoCorrect:      &ac,
		},
	}
	r, _ := newTestReconciler(t, plc)
	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "plc-4", Namespace: "default"}}

	res, err := r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, res.RequeueAfter)

	res, err = r.Reconcile(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, res.RequeueAfter)
}

func TestBackoffForTable(t *testing.T) {
	cases := map[int]time.Duration{
		1: 2 * time.Second,
		2: 4 * time.Second,
		3: 8 * time.Second,
		4: 16 * time.Second,
		5: 32 * time.Second,
		6: 60 * time.Second,
		7: 60 * time.Second,
	}
	for f, want := range cases {
		require.Equal(t, want, backoffFor(f), "f=%d", f)
	}
}
