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
	"github.com/go-logr/logr"

	"github.com/fabgitops/industrialplc-operator/internal/deviceclient"
	"github.com/fabgitops/industrialplc-operator/internal/events"
	"github.com/fabgitops/industrialplc-operator/internal/metrics"
	"github.com/fabgitops/industrialplc-operator/internal/status"
)

// Context bundles the read-only handles a reconcile pass needs: the Device
// Client, Metrics Registry, Event Emitter, Status Writer, and base Logger.
// None of these hold a reference back to the Reconciler or the Controller
// Runtime — the dependency arrow points one way, avoiding the cyclic
// structure the reconciliation spec calls out explicitly.
type Context struct {
	Device  deviceclient.Client
	Metrics *metrics.Registry
	Events  events.Emitter
	Status  *status.Writer
	Logger  logr.Logger
}
