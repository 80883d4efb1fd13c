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
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/types"
)

// maxBackoff caps the exponential backoff computed from consecutive
// failures, per the reconciliation spec's backoff policy.
const maxBackoff = 60 * time.Second

// failureTracker holds the per-resource consecutive-failure count. It is
// owned exclusively by the Controller Runtime: the Reconciler never reads
// or writes it, per the reconciliation spec's ownership rule for
// per-resource worker state.
type failureTracker struct {
	mu     sync.Mutex
	counts map[types.NamespacedName]int
}

func newFailureTracker() *failureTracker {
	return &failureTracker{counts: make(map[types.NamespacedName]int)}
}

// RecordFailure increments the consecutive-failure count for key and
// returns the backoff duration for the new count: min(2^f, 60s).
func (t *failureTracker) RecordFailure(key types.NamespacedName) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[key]++
	return backoffFor(t.counts[key])
}

// RecordSuccess resets key's consecutive-failure count to zero.
func (t *failureTracker) RecordSuccess(key types.NamespacedName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counts, key)
}

// Forget drops any state held for key, used when the resource is deleted.
func (t *failureTracker) Forget(key types.NamespacedName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counts, key)
}

// backoffFor returns min(2^f, 60s) for consecutive-failure count f >= 1, as
// named in the reconciliation spec's backoff policy (f=1 -> 2s, f=2 -> 4s,
// f=3 -> 8s, ...).
func backoffFor(f int) time.Duration {
	if f < 1 {
		f = 1
	}
	seconds := int64(1)
	for i := 0; i < f; i++ {
		seconds *= 2
		if time.Duration(seconds)*time.Second >= maxBackoff {
			return maxBackoff
		}
	}
	return time.Duration(seconds) * time.Second
}
