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

import "encoding/binary"

// Function codes used by this client. Only these two are in scope; anything
// else the device returns is surfaced as a ProtocolError.
const (
	funcReadHoldingRegisters byte = 0x03
	funcWriteSingleRegister  byte = 0x06

	// exceptionBit, set in the function-code byte of an exception response.
	exceptionBit byte = 0x80
)

// encodeReadRequest builds a "read holding registers" request for a single
// register at reg, using transaction id txn for framing correlation.
func encodeReadRequest(txn uint16, reg uint16) []byte {
	pdu := []byte{funcReadHoldingRegisters, 0, 0, 0, 1}
	binary.BigEndian.PutUint16(pdu[1:3], reg)
	return frame(txn, pdu)
}

// encodeWriteRequest builds a "write single register" request.
func encodeWriteRequest(txn uint16, reg, value uint16) []byte {
	pdu := []byte{funcWriteSingleRegister, 0, 0, 0, 0}
	binary.BigEndian.PutUint16(pdu[1:3], reg)
	binary.BigEndian.PutUint16(pdu[3:5], value)
	return frame(txn, pdu)
}

// frame wraps a PDU in the wire envelope: a 2-byte transaction id, a 2-byte
// protocol id (always zero), a 2-byte length, and the PDU itself.
func frame(txn uint16, pdu []byte) []byte {
	out := make([]byte, 6+len(pdu))
	binary.BigEndian.PutUint16(out[0:2], txn)
	binary.BigEndian.PutUint16(out[2:4], 0)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(pdu)))
	copy(out[6:], pdu)
	return out
}

// headerLen is the size of the framing envelope before the PDU.
const headerLen = 6

// decodeHeader validates the envelope and returns the expected PDU length.
func decodeHeader(hdr []byte, wantTxn uint16) (pduLen int, ok bool) {
	if len(hdr) != headerLen {
		return 0, false
	}
	txn := binary.BigEndian.Uint16(hdr[0:2])
	proto := binary.BigEndian.Uint16(hdr[2:4])
	length := binary.BigEndian.Uint16(hdr[4:6])
	if txn != wantTxn || proto != 0 || length == 0 {
		return 0, false
	}
	return int(length), true
}

// decodeReadResponse parses a successful read-holding-registers PDU and
// returns the single 16-bit register value it carries.
func decodeReadResponse(pdu []byte) (uint16, bool) {
	if len(pdu) != 4 || pdu[0] != funcReadHoldingRegisters || pdu[1] != 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(pdu[2:4]), true
}

// decodeWriteResponse validates a write-single-register echo against the
// register/value that was sent.
func decodeWriteResponse(pdu []byte, reg, value uint16) bool {
	if len(pdu) != 5 || pdu[0] != funcWriteSingleRegister {
		return false
	}
	gotReg := binary.BigEndian.Uint16(pdu[1:3])
	gotVal := binary.BigEndian.Uint16(pdu[3:5])
	return gotReg == reg && gotVal == value
}

// isException reports whether the PDU's function-code byte carries the
// exception bit, per the wire protocol's error-response convention.
func isException(pdu []byte) bool {
	return len(pdu) > 0 && pdu[0]&exceptionBit != 0
}
