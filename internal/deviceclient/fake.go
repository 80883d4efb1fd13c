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

package deviceclient

import (
	"fmt"
	"sync"

	"github.com/fabgitops/industrialplc-operator/internal/ierrors"
)

// Fake is an in-memory Client double for unit and scenario tests. It is not
// the chaos-testing fake device named out of scope by the reconciliation
// spec (that one would run as a real TCP listener with fault injection);
// this one is an in-process stand-in for exercising the Reconciler.
type Fake struct {
	mu sync.Mutex

	// registers maps "addr:port:reg" to its current value.
	registers map[string]uint16

	// Down, when true, makes Reachable/ReadRegister/WriteRegister all fail.
	Down bool

	// NextWriteErr, if set, is returned (once) by the next WriteRegister
	// call instead of performing the write.
	NextWriteErr error

	// Reads and Writes record calls for assertions like "no write was ever
	// issued", per testable property 4 in the reconciliation spec.
	Reads  []ReadCall
	Writes []WriteCall
}

// ReadCall records one ReadRegister invocation.
type ReadCall struct {
	Addr string
	Port int32
	Reg  uint16
}

// WriteCall records one WriteRegister invocation.
type WriteCall struct {
	Addr  string
	Port  int32
	Reg   uint16
	Value uint16
}

// NewFake returns an empty Fake with no registers set.
func NewFake() *Fake {
	return &Fake{registers: make(map[string]uint16)}
}

func key(addr string, port int32, reg uint16) string {
	return fmt.Sprintf("%s:%d:%d", addr, port, reg)
}

// Set seeds a register's value, simulating an external change to the
// device between reconcile passes.
func (f *Fake) Set(addr string, port int32, reg uint16, value uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers[key(addr, port, reg)] = value
}

// Value returns a register's current value.
func (f *Fake) Value(addr string, port int32, reg uint16) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers[key(addr, port, reg)]
}

// Reachable implements Client.
func (f *Fake) Reachable(_ string, _ int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Down
}

// ReadRegister implements Client.
func (f *Fake) ReadRegister(addr string, port int32, reg uint16) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads = append(f.Reads, ReadCall{Addr: addr, Port: port, Reg: reg})
	if f.Down {
		return 0, ierrors.New("read", ierrors.Unreachable, fmt.Errorf("fake device offline"))
	}
	return f.registers[key(addr, port, reg)], nil
}

// WriteRegister implements Client.
func (f *Fake) WriteRegister(addr string, port int32, reg, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = append(f.Writes, WriteCall{Addr: addr, Port: port, Reg: reg, Value: value})
	if f.NextWriteErr != nil {
		err := f.NextWriteErr
		f.NextWriteErr = nil
		return err
	}
	if f.Down {
		return ierrors.New("write", ierrors.Unreachable, fmt.Errorf("fake device offline"))
	}
	f.registers[key(addr, port, reg)] = value
	return nil
}
