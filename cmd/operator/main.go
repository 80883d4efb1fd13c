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

package main

import (
	"flag"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
	ctrl "sigs.k8s.io/controller-runtime"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	fabgitopsv1 "github.com/fabgitops/industrialplc-operator/api/v1"
	"github.com/fabgitops/industrialplc-operator/internal/controller"
	"github.com/fabgitops/industrialplc-operator/internal/deviceclient"
	"github.com/fabgitops/industrialplc-operator/internal/events"
	"github.com/fabgitops/industrialplc-operator/internal/metrics"
	"github.com/fabgitops/industrialplc-operator/internal/reconciler"
	statuswriter "github.com/fabgitops/industrialplc-operator/internal/status"
)

var (
	metricsAddr = flag.String("metrics-bind-address", envOr("METRICS_BIND_ADDRESS", ":8080"),
		"The address the /metrics and /health endpoints bind to.")
	deviceConnectTimeout = flag.Duration("device-connect-timeout", 3*time.Second,
		"Timeout for establishing a TCP connection to a device.")
	deviceOperationTimeout = flag.Duration("device-operation-timeout", 3*time.Second,
		"Timeout for a single read or write round trip to a device.")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// logVerbosity maps the named log-filter levels spec.md §6 documents for
// LOG_LEVEL/RUST_LOG onto klog's numeric -v scale. Unrecognized values fall
// back to the "info" default.
func logVerbosity(level string) int {
	switch level {
	case "error", "warn", "warning":
		return 0
	case "debug":
		return 4
	case "trace":
		return 6
	default:
		return 2
	}
}

// resolveLogLevel honors RUST_LOG first, then LOG_LEVEL, per spec.md §6;
// both name the same log-filter knob.
func resolveLogLevel() string {
	if v := os.Getenv("RUST_LOG"); v != "" {
		return v
	}
	return envOr("LOG_LEVEL", "info")
}

var scheme = runtime.NewScheme()

func init() {
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		klog.Fatalf("registering client-go scheme: %v", err)
	}
	if err := fabgitopsv1.AddToScheme(scheme); err != nil {
		klog.Fatalf("registering IndustrialPLC scheme: %v", err)
	}
}

func main() {
	flag.Parse()
	ctrl.SetLogger(textlogger.NewLogger(textlogger.NewConfig(
		textlogger.Verbosity(logVerbosity(resolveLogLevel())),
	)))

	instance := envOr("HOSTNAME", "unknown")

	// The operator serves its own /metrics and /health via internal/metrics,
	// so the manager's built-in servers are disabled.
	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: "0"},
		HealthProbeBindAddress: "0",
	})
	if err != nil {
		klog.Fatalf("instantiating controller manager: %v", err)
	}

	deviceClient := deviceclient.NewTCPClient()
	deviceClient.ConnectTimeout = *deviceConnectTimeout
	deviceClient.OperationTimeout = *deviceOperationTimeout

	reg := metrics.New()

	rc := &reconciler.Context{
		Device:  deviceClient,
		Metrics: reg,
		Events:  events.NewRecorder(mgr.GetEventRecorderFor("industrialplc-controller"), instance),
		Status:  statuswriter.NewWriter(mgr.GetClient()),
		Logger:  ctrl.Log.WithName("reconciler"),
	}

	plcReconciler := controller.NewIndustrialPLCReconciler(mgr.GetClient(), rc, reg)
	if err := plcReconciler.SetupWithManager(mgr); err != nil {
		klog.Fatalf("registering IndustrialPLC controller: %v", err)
	}

	metricsSrv := metrics.NewServer(*metricsAddr, reg)
	if err := mgr.Add(metricsSrv); err != nil {
		klog.Fatalf("registering metrics server: %v", err)
	}

	watchSize := &controller.WatchSizeReporter{Client: mgr.GetClient(), Metrics: reg}
	if err := mgr.Add(watchSize); err != nil {
		klog.Fatalf("registering watch-size reporter: %v", err)
	}

	klog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		klog.Fatalf("manager exited: %v", err)
	}
}
