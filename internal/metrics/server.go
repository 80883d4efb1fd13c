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

package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

// Server serves the scrape endpoint (/metrics) and liveness probe (/health)
// named in the reconciliation spec's external interfaces.
type Server struct {
	httpServer *http.Server
}

// NewServer binds a Server to addr (e.g. "0.0.0.0:8080"). It does not start
// listening until Start is called.
func NewServer(addr string, reg *Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down.
// It satisfies controller-runtime's manager.Runnable signature so it can be
// registered with mgr.Add.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownErr := s.httpServer.Shutdown(context.Background())
		return multierr.Combine(shutdownErr, <-errCh)
	case err := <-errCh:
		return err
	}
}
