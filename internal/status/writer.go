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

// Package status is the Status Writer: it merge-patches the status
// sub-resource of an IndustrialPLC, retrying on version conflicts, and never
// touches spec or metadata.
package status

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	fabgitopsv1 "github.com/fabgitops/industrialplc-operator/api/v1"
)

// maxAttempts bounds the conflict-retry loop per the reconciliation spec's
// Status Writer contract.
const maxAttempts = 3

// maxJitter bounds the sleep between conflict retries.
const maxJitter = 50 * time.Millisecond

// MutateFunc mutates the resource's Status in place. It must not touch Spec
// or ObjectMeta (aside from what patching the status sub-resource requires).
type MutateFunc func(*fabgitopsv1.IndustrialPLCStatus)

// Writer applies status-only merge patches with bounded conflict retry.
type Writer struct {
	Client client.Client

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewWriter returns a Writer backed by c.
func NewWriter(c client.Client) *Writer {
	return &Writer{Client: c, now: time.Now}
}

// ErrNotFound is returned as-is (not wrapping the underlying
// apierrors.IsNotFound error) when the resource no longer exists; the
// reconciliation spec treats this as a quiet, non-retried exit.
var ErrNotFound = fmt.Errorf("resource not found")

// Patch applies mutate to obj's Status and merge-patches only the status
// sub-resource, retrying on conflict with small jitter between attempts,
// for at most maxAttempts attempts in all. It always sets LastUpdate immediately before
// sending the patch.
func (w *Writer) Patch(ctx context.Context, obj *fabgitopsv1.IndustrialPLC, mutate MutateFunc) error {
	nowFn := w.now
	if nowFn == nil {
		nowFn = time.Now
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(maxJitter))))
			fresh := &fabgitopsv1.IndustrialPLC{}
			if err := w.Client.Get(ctx, client.ObjectKeyFromObject(obj), fresh); err != nil {
				if apierrors.IsNotFound(err) {
					return ErrNotFound
				}
				lastErr = err
				continue
			}
			// Refresh obj's contents in place (not just the local variable)
			// so the caller's copy reflects the latest remote state even
			// after a conflict retry.
			*obj = *fresh
		}

		patch := client.MergeFrom(obj.DeepCopy())

		mutate(&obj.Status)
		obj.Status.LastUpdate = metav1.NewTime(nowFn().UTC())

		err := w.Client.Status().Patch(ctx, obj, patch)
		if err == nil {
			return nil
		}
		if apierrors.IsNotFound(err) {
			return ErrNotFound
		}
		if !apierrors.IsConflict(err) {
			return fmt.Errorf("patching status: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("patching status: exhausted %d attempts: %w", maxAttempts, lastErr)
}
